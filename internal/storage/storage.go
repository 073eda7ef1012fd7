// Package storage defines persistence for documents and their embedded chunks.
package storage

import (
	"context"

	"github.com/quillbase/quill/internal/models"
)

// Store is the vector store: the only mutable shared resource in the system.
// Mutations are serialized by the backing database; reads never observe a
// half-indexed document because AddDocument and DeleteDocument are atomic.
type Store interface {
	// AddDocument atomically creates one document and all its chunks.
	// chunks and embeddings must be the same non-zero length and every
	// embedding must share one dimension; violations return
	// models.ErrInvalidArgument. Returns the new document ID.
	AddDocument(ctx context.Context, filename string, chunks []string, embeddings [][]float32) (int64, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]*models.Document, error)

	// DeleteDocument removes a document and cascades to its chunks.
	// Deleting a non-existent ID is not an error.
	DeleteDocument(ctx context.Context, id int64) error

	// DeleteDocumentsByFilename removes every document ingested under the
	// given filename (used by the drop-directory watcher).
	DeleteDocumentsByFilename(ctx context.Context, filename string) error

	// ScanChunks materializes every stored chunk with its parent filename,
	// in insertion order. No pagination: the design assumes a corpus small
	// enough for a linear scan per query.
	ScanChunks(ctx context.Context) ([]*models.ChunkRecord, error)

	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
