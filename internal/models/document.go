// Package models defines core data structures for documents, chunks, and search results.
package models

import "time"

// Document represents an ingested source document.
type Document struct {
	ID         int64     `json:"id" db:"id"`
	Filename   string    `json:"filename" db:"filename"`
	UploadedAt time.Time `json:"uploaded_at" db:"created_at"`
}

// ChunkRecord is a stored chunk joined with its parent document's filename.
// Embedding length is fixed for the life of the store (dimension D).
type ChunkRecord struct {
	ID         int64     `json:"id" db:"id"`
	DocumentID int64     `json:"document_id" db:"doc_id"`
	Content    string    `json:"content" db:"content"`
	Embedding  []float32 `json:"-" db:"-"`
	Filename   string    `json:"filename" db:"-"`
}

// ExtractResult is the output of text extraction and chunking for one file.
type ExtractResult struct {
	Filename string   `json:"filename"`
	Chunks   []string `json:"chunks"`
}
