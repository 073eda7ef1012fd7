package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quillbase/quill/internal/embedding"
	"github.com/quillbase/quill/internal/models"
	"github.com/quillbase/quill/internal/search"
)

const maxUploadBytes = 50 << 20 // 50 MB, matching the request body limit of the API

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	filename := filepath.Base(header.Filename)
	s.logger.Debug("extract request", zap.String("filename", filename), zap.Int("bytes", len(content)))

	s.saveUpload(content, filename)

	result, err := s.ingestor.ExtractAndChunk(content, filename)
	if err != nil {
		s.logger.Error("extraction failed", zap.String("filename", filename), zap.Error(err))
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// saveUpload keeps a copy of the raw upload under the upload directory with a
// unique name. Failure to save is logged but does not fail the request; the
// extraction works from the in-memory payload.
func (s *Server) saveUpload(content []byte, filename string) {
	dir := s.config.Storage.UploadDir
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.logger.Warn("upload dir unavailable", zap.String("dir", dir), zap.Error(err))
		return
	}
	name := uuid.New().String()[:8] + "-" + filename
	if err := os.WriteFile(filepath.Join(dir, name), content, 0644); err != nil {
		s.logger.Warn("failed to save upload copy", zap.String("name", name), zap.Error(err))
	}
}

type indexRequest struct {
	Filename   string      `json:"filename"`
	Chunks     []string    `json:"chunks"`
	Embeddings [][]float32 `json:"embeddings"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("index request", zap.String("filename", req.Filename), zap.Int("chunks", len(req.Chunks)))
	docID, err := s.ingestor.IndexDocument(r.Context(), req.Filename, req.Chunks, req.Embeddings)
	if err != nil {
		s.logger.Error("indexing failed", zap.Error(err))
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]int64{"doc_id": docID})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.Context())
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondErr(w, err)
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	s.respondJSON(w, http.StatusOK, docs)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	s.logger.Debug("delete document request", zap.Int64("id", id))
	if err := s.store.DeleteDocument(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type searchRequest struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	TopK           int       `json:"top_k,omitempty"`
	QueryText      string    `json:"query_text,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.Int("dims", len(req.QueryEmbedding)), zap.Int("top_k", req.TopK))
	results, err := s.ranker.Search(r.Context(), req.QueryEmbedding, req.TopK, req.QueryText)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondErr(w, err)
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	s.respondJSON(w, http.StatusOK, results)
}

type askRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		s.respondError(w, http.StatusBadRequest, "question is required")
		return
	}
	start := time.Now()

	queryVec := s.embedder.Embed(r.Context(), req.Question)
	results, err := s.ranker.Search(r.Context(), queryVec, req.TopK, req.Question)
	if err != nil {
		s.logger.Error("ask: search failed", zap.Error(err))
		s.respondErr(w, err)
		return
	}
	groundingContext := search.BuildContext(results, s.config.Search.ContextChunks)
	answer := s.gen.Answer(r.Context(), req.Question, groundingContext)

	if results == nil {
		results = []models.SearchResult{}
	}
	s.respondJSON(w, http.StatusOK, models.AskResponse{
		Answer:      answer,
		Sources:     results,
		QueryTimeMS: time.Since(start).Milliseconds(),
		Fallback:    embedding.IsFallbackVector(queryVec),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.store.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondErr(w, err)
		return
	}
	chunkCount, err := s.store.CountChunks(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docCount,
		"chunks":    chunkCount,
		"config": map[string]interface{}{
			"embedding_dimensions": s.embedder.Dimensions(),
			"chunk_size":           s.config.Search.ChunkSize,
			"chunk_overlap":        s.config.Search.ChunkOverlap,
			"top_k":                s.config.Search.TopK,
			"context_chunks":       s.config.Search.ContextChunks,
			"database_path":        s.config.Storage.DatabasePath,
		},
	})
}

// respondErr maps taxonomy errors to HTTP status codes.
func (s *Server) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrExtraction):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
