package models

import "time"

const (
	StatusDone   = "DONE"
	StatusFailed = "FAILED"
)

type Extraction struct {
	Id         string
	Name       string
	Status     string
	UploadDate time.Time
	PageCount  int
	TableCount int
	OutputPath string
	Error      string
}

type ExtractionView struct {
	Extraction
	Banner string
	Failed bool
	Pages  []PageView
}
