package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"pdfclean/cmd/web"
	"pdfclean/core/models"
	"pdfclean/core/pipeline"
	"pdfclean/core/pipeline/markdown"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const pageSize = 10

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/assets/*", http.FileServer(http.FS(web.Files)))

	r.Get("/health", s.healthHandler)
	r.Get("/", s.ListExtractions)
	r.Post("/upload", s.UploadDocument)
	r.Get("/extractions/{extractionId}", s.LoadExtraction)
	r.Delete("/extractions/{extractionId}", s.DeleteExtraction)
	r.Get("/extractions/{extractionId}/download", s.DownloadJSON)
	r.Get("/extractions/{extractionId}/markdown", s.DownloadMarkdown)
	r.Get("/extractions/{extractionId}/pages/{pageNum}/image", s.PageImage)

	return s.guard.Middleware(s.tmpl, r)
}

type indexData struct {
	Extractions []models.Extraction
	Offset      int
	Limit       int
	Search      string
	HasMore     bool
	Banner      string
	Failed      bool
}

func (s *Server) ListExtractions(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, http.StatusOK, "", false)
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, banner string, failed bool) {
	offset := 0
	if r.URL.Query().Has("offset") {
		parsedOffset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		if err == nil && parsedOffset > 0 {
			offset = parsedOffset
		}
	}
	search := r.URL.Query().Get("search")

	extractions, err := s.db.ListExtractions(pageSize, offset, search)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := indexData{
		Extractions: extractions,
		Offset:      offset,
		Limit:       pageSize,
		Search:      search,
		HasMore:     len(extractions) == pageSize,
		Banner:      banner,
		Failed:      failed,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "index.go.html", data); err != nil {
		s.log.Error("rendering index failed", "error", err)
	}
}

func (s *Server) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())
	err := r.ParseMultipartForm(10 << 20)
	if err != nil {
		s.log.Warn("failed to parse upload form", "error", err)
		s.renderIndex(w, r, http.StatusBadRequest, fmt.Sprintf("Upload failed: %v", err), true)
		return
	}
	file, handler, err := r.FormFile("file")
	if err != nil {
		s.renderIndex(w, r, http.StatusBadRequest, fmt.Sprintf("Upload failed: %v", err), true)
		return
	}
	defer file.Close()

	ext := models.Extraction{
		Id:         s.newId(),
		Name:       handler.Filename,
		UploadDate: time.Now(),
	}
	log := s.log.With("extraction", ext.Id, "file", ext.Name)

	pdfPath := s.uploadPath(ext.Id)
	if err := saveUpload(file, pdfPath); err != nil {
		log.Error("storing upload failed", "error", err)
		s.fail(w, r, &ext, err)
		return
	}

	outputDir := filepath.Join(s.cfg.OutputDir(), ext.Id)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		s.fail(w, r, &ext, &pipeline.IOError{Op: "mkdir", Path: outputDir, Err: err})
		return
	}

	result, err := s.processor.Process(pdfPath, filepath.Join(outputDir, pipeline.OutputName))
	if err != nil {
		_ = os.Remove(outputDir)
		s.fail(w, r, &ext, err)
		return
	}

	ext.Status = models.StatusDone
	ext.PageCount = len(result.Records)
	ext.TableCount = result.TableCount()
	ext.OutputPath = result.OutputPath
	if err := s.db.StoreExtraction(&ext); err != nil {
		log.Error("storing extraction failed", "error", err)
		s.discardOutput(&ext, outputDir)
		s.fail(w, r, &ext, fmt.Errorf("storing extraction: %w", err))
		return
	}

	pages := make([]models.Page, len(result.Records))
	for i, record := range result.Records {
		pages[i] = models.Page{
			ExtractionId: ext.Id,
			PageRecord:   record,
			Regions:      result.Regions(record.PageNumber),
		}
	}
	if err := s.db.StorePages(pages); err != nil {
		log.Error("storing pages failed", "error", err)
		if err := s.db.DeleteExtraction(ext.Id); err != nil {
			log.Error("removing partially stored extraction failed", "error", err)
		}
		s.discardOutput(&ext, outputDir)
		s.fail(w, r, &ext, fmt.Errorf("storing pages: %w", err))
		return
	}

	log.Info("upload processed", "pages", ext.PageCount, "tables", ext.TableCount)
	http.Redirect(w, r, fmt.Sprintf("/extractions/%s?done=1", ext.Id), http.StatusSeeOther)
}

// fail records a failed run and shows the failure banner.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, ext *models.Extraction, cause error) {
	ext.Status = models.StatusFailed
	ext.Error = cause.Error()
	if err := s.db.StoreExtraction(ext); err != nil {
		s.log.Error("recording failed extraction", "extraction", ext.Id, "error", err)
	}

	status := http.StatusInternalServerError
	banner := fmt.Sprintf("Extraction failed: %v", cause)
	var decodeErr *pipeline.DecodeError
	if errors.As(cause, &decodeErr) {
		status = http.StatusUnprocessableEntity
		banner = fmt.Sprintf("Extraction failed: %s is not a readable PDF (%v)", ext.Name, decodeErr.Err)
	}
	s.renderIndex(w, r, status, banner, true)
}

// discardOutput removes the JSON of a run that could not be recorded.
func (s *Server) discardOutput(ext *models.Extraction, outputDir string) {
	if err := os.RemoveAll(outputDir); err != nil {
		s.log.Warn("removing output failed", "extraction", ext.Id, "error", err)
	}
	ext.OutputPath = ""
	ext.PageCount = 0
	ext.TableCount = 0
}

func saveUpload(src io.Reader, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &pipeline.IOError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	dest, err := os.Create(path)
	if err != nil {
		return &pipeline.IOError{Op: "create", Path: path, Err: err}
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		return &pipeline.IOError{Op: "write", Path: path, Err: err}
	}
	if err := dest.Close(); err != nil {
		return &pipeline.IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}

func (s *Server) uploadPath(extractionId string) string {
	return filepath.Join(s.cfg.UploadDir(), extractionId+".pdf")
}

// loadDone fetches a completed extraction, answering 404 for unknown or failed runs.
func (s *Server) loadDone(w http.ResponseWriter, r *http.Request) (models.Extraction, bool) {
	ext, err := s.db.LoadExtraction(chi.URLParam(r, "extractionId"))
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return models.Extraction{}, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return models.Extraction{}, false
	}
	if ext.Status != models.StatusDone {
		http.NotFound(w, r)
		return models.Extraction{}, false
	}
	return ext, true
}

func (s *Server) LoadExtraction(w http.ResponseWriter, r *http.Request) {
	ext, ok := s.loadDone(w, r)
	if !ok {
		return
	}

	pages, err := s.db.LoadPages(ext.Id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, statErr := os.Stat(s.uploadPath(ext.Id))
	hasImage := statErr == nil

	view := models.ExtractionView{Extraction: ext}
	if r.URL.Query().Has("done") {
		view.Banner = "Extraction Completed!"
	}
	for _, page := range pages {
		pageView := models.PageView{
			PageNumber: page.PageNumber,
			Content:    page.Content,
			HasImage:   hasImage,
		}
		for _, table := range page.Tables {
			html, err := markdown.TableToHTML(table)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			pageView.TablesHtml = append(pageView.TablesHtml, template.HTML(html))
		}
		view.Pages = append(view.Pages, pageView)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = s.tmpl.ExecuteTemplate(w, "extraction.go.html", view)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) DownloadJSON(w http.ResponseWriter, r *http.Request) {
	ext, ok := s.loadDone(w, r)
	if !ok {
		return
	}

	f, err := os.Open(ext.OutputPath)
	if errors.Is(err, os.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pipeline.OutputName))
	http.ServeContent(w, r, pipeline.OutputName, info.ModTime(), f)
}

func (s *Server) DownloadMarkdown(w http.ResponseWriter, r *http.Request) {
	ext, ok := s.loadDone(w, r)
	if !ok {
		return
	}
	pages, err := s.db.LoadPages(ext.Id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	records := make([]models.PageRecord, len(pages))
	for i, page := range pages {
		records[i] = page.PageRecord
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	if err := markdown.Export(w, ext.Name, records); err != nil {
		s.log.Error("markdown export failed", "extraction", ext.Id, "error", err)
	}
}

func (s *Server) PageImage(w http.ResponseWriter, r *http.Request) {
	ext, ok := s.loadDone(w, r)
	if !ok {
		return
	}
	pageNum, err := strconv.Atoi(chi.URLParam(r, "pageNum"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	page, err := s.db.LoadPage(ext.Id, pageNum)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	pdfPath := s.uploadPath(ext.Id)
	if _, err := os.Stat(pdfPath); err != nil {
		http.NotFound(w, r)
		return
	}

	img, err := pipeline.RenderPage(pdfPath, pageNum, s.cfg.PreviewDPI, page.Regions)
	if errors.Is(err, pipeline.ErrPageOutOfRange) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if err := pipeline.EncodeJPEG(w, img); err != nil {
		s.log.Error("encoding page image failed", "extraction", ext.Id, "page", pageNum, "error", err)
	}
}

func (s *Server) DeleteExtraction(w http.ResponseWriter, r *http.Request) {
	extractionId := chi.URLParam(r, "extractionId")
	ext, err := s.db.LoadExtraction(extractionId)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.db.DeleteExtraction(ext.Id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := os.Remove(s.uploadPath(ext.Id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("removing upload failed", "extraction", ext.Id, "error", err)
	}
	if err := os.RemoveAll(filepath.Join(s.cfg.OutputDir(), ext.Id)); err != nil {
		s.log.Warn("removing output failed", "extraction", ext.Id, "error", err)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	jsonResp, _ := json.Marshal(s.db.Health())
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(jsonResp)
}
