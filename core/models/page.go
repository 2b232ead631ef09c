package models

import "html/template"

// Rect is an axis-aligned region in page image coordinates (origin top-left, 72 DPI).
type Rect struct {
	X0 float32 `json:"x0"`
	X1 float32 `json:"x1"`
	Y0 float32 `json:"y0"`
	Y1 float32 `json:"y1"`
}

func (r Rect) Width() float32 {
	return r.X1 - r.X0
}

func (r Rect) Height() float32 {
	return r.Y1 - r.Y0
}

// Table is an ordered list of rows, each an ordered list of cell strings.
type Table [][]string

// PageRecord is the serialized unit for one PDF page.
type PageRecord struct {
	PageNumber int     `json:"page_number"`
	Content    string  `json:"content"`
	Tables     []Table `json:"tables"`
}

type Page struct {
	Id           int64
	ExtractionId string
	PageRecord
	Regions []Rect
}

type PageView struct {
	PageNumber int
	Content    string
	TablesHtml []template.HTML
	HasImage   bool
}
