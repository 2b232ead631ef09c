package db

import (
	"pdfclean/core/models"
)

func (s *service) StoreExtraction(ext *models.Extraction) error {
	_, err := s.db.Exec(`
		INSERT INTO extractions (
			id,
			name,
			status,
			upload_date,
			page_count,
			table_count,
			output_path,
			error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ext.Id, ext.Name, ext.Status, ext.UploadDate, ext.PageCount, ext.TableCount, ext.OutputPath, ext.Error)
	return err
}

func (s *service) LoadExtraction(id string) (models.Extraction, error) {
	var ext models.Extraction
	err := s.db.QueryRow(`
		select
		    e.id,
		    e.name,
		    e.status,
		    e.upload_date,
		    e.page_count,
		    e.table_count,
		    e.output_path,
		    e.error
		from extractions e where e.id = ?
	`, id).Scan(
		&ext.Id,
		&ext.Name,
		&ext.Status,
		&ext.UploadDate,
		&ext.PageCount,
		&ext.TableCount,
		&ext.OutputPath,
		&ext.Error,
	)
	if err != nil {
		return models.Extraction{}, err
	}
	return ext, nil
}

func (s *service) ListExtractions(limit, offset int, search string) ([]models.Extraction, error) {
	rows, err := s.db.Query(`
		select
		    e.id,
		    e.name,
		    e.status,
		    e.upload_date,
		    e.page_count,
		    e.table_count,
		    e.output_path,
		    e.error
		from extractions e
		where ? = '' or e.name like '%' || ? || '%'
		order by e.upload_date desc
		limit ? offset ?`, search, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var extractions []models.Extraction
	for rows.Next() {
		var ext models.Extraction
		err := rows.Scan(
			&ext.Id,
			&ext.Name,
			&ext.Status,
			&ext.UploadDate,
			&ext.PageCount,
			&ext.TableCount,
			&ext.OutputPath,
			&ext.Error,
		)
		if err != nil {
			return nil, err
		}
		extractions = append(extractions, ext)
	}
	return extractions, rows.Err()
}

func (s *service) DeleteExtraction(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`delete from pages where extraction_id = ?`, id); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`delete from extractions where id = ?`, id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
