package server

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"pdfclean/cmd/web"
	"pdfclean/core/auth"
	"pdfclean/core/config"
	"pdfclean/core/db"
	"pdfclean/core/logger"
	"pdfclean/core/pipeline"

	"github.com/google/uuid"
)

// Processor runs the extraction pipeline for one stored upload.
type Processor interface {
	Process(pdfPath string, outputPath string) (*pipeline.Result, error)
}

type Server struct {
	cfg       config.Config
	db        db.Service
	processor Processor
	guard     *auth.Guard
	tmpl      *template.Template
	log       *slog.Logger
	newId     func() string
}

func New(cfg config.Config, store db.Service, processor Processor) (*Server, error) {
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(web.Files,
		"templates/index.go.html",
		"templates/extraction.go.html",
		"templates/login.go.html",
		"templates/partial/head.go.html",
		"templates/partial/banner.go.html",
		"templates/partial/extraction-rows.go.html",
	)
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Server{
		cfg:       cfg,
		db:        store,
		processor: processor,
		guard:     auth.NewGuard(cfg.APIKey),
		tmpl:      tmpl,
		log:       logger.GetLogger("server"),
		newId:     uuid.NewString,
	}, nil
}

func NewServer(cfg config.Config, store db.Service, processor Processor) (*http.Server, error) {
	s, err := New(cfg, store, processor)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, nil
}
