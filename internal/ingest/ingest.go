// Package ingest runs the ingestion pipeline: extract, chunk, embed, store.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/quillbase/quill/internal/chunker"
	"github.com/quillbase/quill/internal/config"
	"github.com/quillbase/quill/internal/embedding"
	"github.com/quillbase/quill/internal/extract"
	"github.com/quillbase/quill/internal/models"
	"github.com/quillbase/quill/internal/storage"
)

// Ingestor turns raw files into stored, embedded chunks.
type Ingestor struct {
	store     storage.Store
	embedder  *embedding.Service
	extractor *extract.Extractor
	chunker   *chunker.Chunker
	logger    *zap.Logger
}

// NewIngestor creates an ingestor. Returns models.ErrInvalidArgument when the
// configured chunk size/overlap are malformed.
func NewIngestor(store storage.Store, embedder *embedding.Service, extractor *extract.Extractor, cfg *config.SearchConfig, logger *zap.Logger) (*Ingestor, error) {
	c, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		store:     store,
		embedder:  embedder,
		extractor: extractor,
		chunker:   c,
		logger:    logger,
	}, nil
}

// ExtractAndChunk extracts text from the file bytes and splits it into
// overlapping chunks. Whitespace-only text yields no chunks. No state is
// written.
func (in *Ingestor) ExtractAndChunk(content []byte, filename string) (*models.ExtractResult, error) {
	text, err := in.extractor.Extract(content, filename)
	if err != nil {
		return nil, err
	}
	result := &models.ExtractResult{Filename: filename}
	if strings.TrimSpace(text) != "" {
		result.Chunks = in.chunker.Split(text)
	}
	return result, nil
}

// IndexDocument stores pre-embedded chunks as one document. Used by callers
// that computed embeddings themselves (the /api/index route).
func (in *Ingestor) IndexDocument(ctx context.Context, filename string, chunks []string, embeddings [][]float32) (int64, error) {
	docID, err := in.store.AddDocument(ctx, filename, chunks, embeddings)
	if err != nil {
		return 0, err
	}
	in.logger.Debug("document indexed",
		zap.Int64("doc_id", docID),
		zap.String("filename", filename),
		zap.Int("chunks", len(chunks)),
	)
	return docID, nil
}

// Ingest runs the full pipeline on one file's bytes: extract, chunk, embed
// each chunk sequentially, and store atomically. Embedding never fails (the
// fallback generator answers when the model is unreachable); extraction and
// storage failures are returned.
func (in *Ingestor) Ingest(ctx context.Context, content []byte, filename string) (int64, error) {
	result, err := in.ExtractAndChunk(content, filename)
	if err != nil {
		return 0, err
	}
	if len(result.Chunks) == 0 {
		return 0, fmt.Errorf("%w: %s contains no text", models.ErrExtraction, filename)
	}
	embeddings := in.embedder.EmbedBatch(ctx, result.Chunks)
	return in.IndexDocument(ctx, filename, result.Chunks, embeddings)
}

// IngestFile reads path and ingests it under its base filename. Any previous
// documents with the same filename are removed first so re-ingesting a
// changed file replaces it instead of accumulating copies.
func (in *Ingestor) IngestFile(ctx context.Context, path string) (int64, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: read %s: %v", models.ErrExtraction, path, err)
	}
	filename := filepath.Base(path)
	if err := in.store.DeleteDocumentsByFilename(ctx, filename); err != nil {
		return 0, err
	}
	return in.Ingest(ctx, content, filename)
}

// FileResult reports the outcome of one file in a batch.
type FileResult struct {
	Path  string
	DocID int64
	Err   error
}

// IngestBatch ingests each path independently: a failure for one file is
// recorded in its result and does not abort the others.
func (in *Ingestor) IngestBatch(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, len(paths))
	for i, path := range paths {
		docID, err := in.IngestFile(ctx, path)
		results[i] = FileResult{Path: path, DocID: docID, Err: err}
		if err != nil {
			in.logger.Warn("ingest failed", zap.String("path", path), zap.Error(err))
		}
	}
	return results
}
