// Package server provides the HTTP API for Quill.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/quillbase/quill/internal/config"
	"github.com/quillbase/quill/internal/embedding"
	"github.com/quillbase/quill/internal/generate"
	"github.com/quillbase/quill/internal/ingest"
	"github.com/quillbase/quill/internal/search"
	"github.com/quillbase/quill/internal/storage"
)

// Server is the HTTP server for the Quill API.
type Server struct {
	ingestor *ingest.Ingestor
	ranker   *search.Ranker
	store    storage.Store
	embedder *embedding.Service
	gen      *generate.Service
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	ingestor *ingest.Ingestor,
	ranker *search.Ranker,
	store storage.Store,
	embedder *embedding.Service,
	gen *generate.Service,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		ingestor: ingestor,
		ranker:   ranker,
		store:    store,
		embedder: embedder,
		gen:      gen,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/extract", s.handleExtract)
	r.Post("/api/index", s.handleIndex)
	r.Get("/api/documents", s.handleListDocuments)
	r.Delete("/api/documents/{id}", s.handleDeleteDocument)
	r.Post("/api/search", s.handleSearch)
	r.Post("/api/ask", s.handleAsk)
	r.Get("/api/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
