package pipeline

import (
	"log/slog"
	"time"

	"pdfclean/core/logger"
	"pdfclean/core/models"
)

// OutputName is the file name of the JSON document offered for download.
const OutputName = "clean_extracted_data.json"

type Result struct {
	OutputPath string
	Records    []models.PageRecord
	Tables     TablePages
}

func (r *Result) TableCount() int {
	count := 0
	for _, found := range r.Tables {
		count += len(found)
	}
	return count
}

// Regions returns the image-space table regions detected on a 1-based page.
func (r *Result) Regions(pageNumber int) []models.Rect {
	found := r.Tables[LabelFor(pageNumber-1)]
	regions := make([]models.Rect, len(found))
	for i, t := range found {
		regions[i] = t.Region
	}
	return regions
}

// Pipeline runs text extraction, table extraction and assembly one after another.
type Pipeline struct {
	text   TextSource
	tables TableSource
	log    *slog.Logger
}

func New(text TextSource, tables TableSource) *Pipeline {
	return &Pipeline{
		text:   text,
		tables: tables,
		log:    logger.GetLogger("pipeline"),
	}
}

// Process extracts pdfPath and writes the JSON document to outputPath.
// Nothing is written unless both extractors succeed.
func (p *Pipeline) Process(pdfPath string, outputPath string) (*Result, error) {
	start := time.Now()

	if err := EnsurePDF(pdfPath); err != nil {
		p.log.Warn("rejected upload", "path", pdfPath, "error", err)
		return nil, err
	}

	text, err := p.text.ExtractText(pdfPath)
	if err != nil {
		p.log.Error("text extraction failed", "path", pdfPath, "error", err)
		return nil, err
	}
	p.log.Debug("text extracted", "pages", len(text))

	tables, err := p.tables.ExtractTables(pdfPath)
	if err != nil {
		p.log.Error("table extraction failed", "path", pdfPath, "error", err)
		return nil, err
	}
	p.log.Debug("tables extracted", "pages_with_tables", len(tables))

	records, err := Assemble(text, tables)
	if err != nil {
		return nil, err
	}

	written, err := WriteJSON(records, outputPath)
	if err != nil {
		p.log.Error("writing output failed", "path", outputPath, "error", err)
		return nil, err
	}

	result := &Result{
		OutputPath: written,
		Records:    records,
		Tables:     tables,
	}
	p.log.Info("extraction completed",
		"pages", len(records),
		"tables", result.TableCount(),
		"output", written,
		"elapsed", time.Since(start))
	return result, nil
}
