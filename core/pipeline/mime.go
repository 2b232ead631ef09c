package pipeline

import (
	"errors"
	"io"
	"net/http"
	"os"
)

var ErrNotPDF = errors.New("not a PDF document")

// EnsurePDF sniffs the file header so that non-PDF uploads fail before either decoder runs.
func EnsurePDF(filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return &DecodeError{Path: filePath, Err: err}
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return &DecodeError{Path: filePath, Err: err}
	}
	if http.DetectContentType(head[:n]) != "application/pdf" {
		return &DecodeError{Path: filePath, Err: ErrNotPDF}
	}
	return nil
}
