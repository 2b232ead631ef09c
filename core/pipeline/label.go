package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"pdfclean/core/models"
)

// PageLabel keys per-page extractor output, e.g. "Page 3".
type PageLabel string

// LabelFor returns the label of the page at the zero-based decoding index.
func LabelFor(index int) PageLabel {
	return PageLabel(fmt.Sprintf("Page %d", index+1))
}

// Number returns the numeric suffix of the label.
func (l PageLabel) Number() (int, error) {
	fields := strings.Fields(string(l))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty page label")
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, fmt.Errorf("page label %q: %w", l, err)
	}
	return n, nil
}

type PageText struct {
	Label PageLabel
	Text  string
}

// TextPages holds cleaned text in page order.
type TextPages []PageText

type DetectedTable struct {
	Cells  models.Table
	Region models.Rect
}

// TablePages holds detected tables; pages without tables are absent.
type TablePages map[PageLabel][]DetectedTable
