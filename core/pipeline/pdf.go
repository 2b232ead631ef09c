package pipeline

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// TextSource yields cleaned per-page text for a PDF.
type TextSource interface {
	ExtractText(pdfPath string) (TextPages, error)
}

// FitzTextExtractor reads page text through MuPDF, one line per visual text line.
type FitzTextExtractor struct{}

func (FitzTextExtractor) ExtractText(pdfPath string) (TextPages, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, &DecodeError{Path: pdfPath, Err: err}
	}
	defer doc.Close()

	pages := make(TextPages, 0, doc.NumPage())
	for p := 0; p < doc.NumPage(); p++ {
		text, err := doc.Text(p)
		if err != nil {
			return nil, &DecodeError{Path: pdfPath, Err: fmt.Errorf("page %d: %w", p+1, err)}
		}
		pages = append(pages, PageText{
			Label: LabelFor(p),
			Text:  CleanPageText(visualLines(text)),
		})
	}
	return pages, nil
}

// visualLines drops the blank separator lines MuPDF writes after every text block,
// leaving one line per visual line with no trailing newline.
func visualLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
