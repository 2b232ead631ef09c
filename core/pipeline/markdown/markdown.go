package markdown

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	md "github.com/nao1215/markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"pdfclean/core/models"
)

var converter = goldmark.New(goldmark.WithExtensions(extension.Table))

// ConvertMarkdownToHTML converts a markdown string to HTML. Raw HTML in the input is omitted.
func ConvertMarkdownToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TableToMarkdown renders a table as a GFM table using its first row as the header.
func TableToMarkdown(table models.Table) (string, error) {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	writeTable(doc, table)
	if err := doc.Build(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TableToHTML renders a table for the preview page.
func TableToHTML(table models.Table) (string, error) {
	text, err := TableToMarkdown(table)
	if err != nil {
		return "", err
	}
	return ConvertMarkdownToHTML(text)
}

// Export writes the whole document as markdown, one section per page.
func Export(w io.Writer, title string, records []models.PageRecord) error {
	doc := md.NewMarkdown(w)
	doc.H1(title)
	doc.PlainText("")

	for _, record := range records {
		doc.H2(fmt.Sprintf("Page %d", record.PageNumber))
		doc.PlainText("")
		if record.Content != "" {
			doc.PlainText(codeBlock(record.Content))
			doc.PlainText("")
		}
		for i, table := range record.Tables {
			doc.PlainTextf("**Table %d**", i+1)
			doc.PlainText("")
			writeTable(doc, table)
			doc.PlainText("")
		}
	}
	return doc.Build()
}

func writeTable(doc *md.Markdown, table models.Table) {
	if len(table) == 0 {
		return
	}
	width := 0
	for _, row := range table {
		width = max(width, len(row))
	}
	if width == 0 {
		return
	}

	rows := make([][]string, len(table))
	for i, row := range table {
		rows[i] = make([]string, width)
		for j, cell := range row {
			rows[i][j] = escapeCell(cell)
		}
	}
	doc.Table(md.TableSet{
		Header: rows[0],
		Rows:   rows[1:],
	})
}

// codeBlock fences text with one more backtick than its longest backtick run.
func codeBlock(text string) string {
	longest, run := 0, 0
	for _, r := range text {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", max(3, longest+1))
	return fence + string(md.SyntaxHighlightText) + "\n" + text + "\n" + fence
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

func escapeCell(cell string) string {
	return cellReplacer.Replace(cell)
}
