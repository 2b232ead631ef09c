package db

import (
	"encoding/json"
	"fmt"

	"pdfclean/core/models"
)

func (s *service) StorePages(pages []models.Page) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO pages (
			extraction_id,
			page_number,
			content,
			tables,
			regions
		) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, page := range pages {
		tables := page.Tables
		if tables == nil {
			tables = []models.Table{}
		}
		serialisedTables, err := json.Marshal(tables)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("cannot serialise tables of page %d: %w", page.PageNumber, err)
		}
		regions := page.Regions
		if regions == nil {
			regions = []models.Rect{}
		}
		serialisedRegions, err := json.Marshal(regions)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("cannot serialise regions of page %d: %w", page.PageNumber, err)
		}

		_, err = stmt.Exec(page.ExtractionId, page.PageNumber, page.Content, string(serialisedTables), string(serialisedRegions))
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *service) LoadPages(extractionId string) ([]models.Page, error) {
	rows, err := s.db.Query(`
		select
		    p.id,
		    p.extraction_id,
		    p.page_number,
		    p.content,
		    p.tables,
		    p.regions
		from pages p
		where p.extraction_id = ?
		order by p.page_number
	`, extractionId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

func (s *service) LoadPage(extractionId string, pageNumber int) (models.Page, error) {
	row := s.db.QueryRow(`
		select
		    p.id,
		    p.extraction_id,
		    p.page_number,
		    p.content,
		    p.tables,
		    p.regions
		from pages p
		where p.extraction_id = ? and p.page_number = ?
	`, extractionId, pageNumber)
	return scanPage(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (models.Page, error) {
	var page models.Page
	var serialisedTables, serialisedRegions string
	err := row.Scan(
		&page.Id,
		&page.ExtractionId,
		&page.PageNumber,
		&page.Content,
		&serialisedTables,
		&serialisedRegions,
	)
	if err != nil {
		return models.Page{}, err
	}
	if err := json.Unmarshal([]byte(serialisedTables), &page.Tables); err != nil {
		return models.Page{}, err
	}
	if err := json.Unmarshal([]byte(serialisedRegions), &page.Regions); err != nil {
		return models.Page{}, err
	}
	return page, nil
}
