package pipeline

import (
	"bytes"
	"encoding/json"
	"os"

	"pdfclean/core/models"
)

// Assemble merges cleaned text and detected tables into page records.
// The text pages decide which pages exist; a page without tables gets an empty list.
func Assemble(text TextPages, tables TablePages) ([]models.PageRecord, error) {
	records := make([]models.PageRecord, 0, len(text))
	for _, page := range text {
		number, err := page.Label.Number()
		if err != nil {
			return nil, err
		}
		pageTables := make([]models.Table, 0, len(tables[page.Label]))
		for _, t := range tables[page.Label] {
			pageTables = append(pageTables, t.Cells)
		}
		records = append(records, models.PageRecord{
			PageNumber: number,
			Content:    page.Text,
			Tables:     pageTables,
		})
	}
	return records, nil
}

// WriteJSON overwrites outputPath with the records as an indented UTF-8 JSON array.
// Non-ASCII text, including U+2028 and U+2029, is written literally.
func WriteJSON(records []models.PageRecord, outputPath string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return "", &IOError{Op: "encode", Path: outputPath, Err: err}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return "", &IOError{Op: "create", Path: outputPath, Err: err}
	}
	defer f.Close()

	if _, err := f.Write(unescapeLineSeparators(buf.Bytes())); err != nil {
		return "", &IOError{Op: "write", Path: outputPath, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &IOError{Op: "close", Path: outputPath, Err: err}
	}
	return outputPath, nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes encoding/json always emits
// back into the literal characters. Escaped backslashes are skipped pairwise so that
// text containing a literal backslash-u sequence is left alone.
func unescapeLineSeparators(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' {
			out = append(out, data[i])
			continue
		}
		if i+1 < len(data) && data[i+1] == '\\' {
			out = append(out, '\\', '\\')
			i++
			continue
		}
		if i+6 <= len(data) {
			switch string(data[i : i+6]) {
			case `\u2028`:
				out = append(out, "\u2028"...)
				i += 5
				continue
			case `\u2029`:
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}
