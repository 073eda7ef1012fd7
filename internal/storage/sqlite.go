package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quillbase/quill/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
	CREATE INDEX IF NOT EXISTS idx_documents_filename ON documents(filename);

	CREATE TABLE IF NOT EXISTS chunks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		doc_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		embedding BLOB NOT NULL,
		FOREIGN KEY (doc_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id);
	`
	_, err := db.Exec(schema)
	return err
}

// AddDocument inserts the document and all chunks in one transaction.
func (s *SQLiteStore) AddDocument(ctx context.Context, filename string, chunks []string, embeddings [][]float32) (int64, error) {
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: document %q has no chunks", models.ErrInvalidArgument, filename)
	}
	if len(chunks) != len(embeddings) {
		return 0, fmt.Errorf("%w: %d chunks but %d embeddings", models.ErrInvalidArgument, len(chunks), len(embeddings))
	}
	dims := len(embeddings[0])
	if dims == 0 {
		return 0, fmt.Errorf("%w: empty embedding vector", models.ErrInvalidArgument)
	}
	for i, emb := range embeddings {
		if len(emb) != dims {
			return 0, fmt.Errorf("%w: embedding %d has dimension %d, want %d", models.ErrInvalidArgument, i, len(emb), dims)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin transaction: %v", models.ErrStorage, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (filename, created_at) VALUES (?, ?)`,
		filename, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: insert document: %v", models.ErrStorage, err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: document id: %v", models.ErrStorage, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (doc_id, content, embedding) VALUES (?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare chunk insert: %v", models.ErrStorage, err)
	}
	defer stmt.Close()

	for i := range chunks {
		if _, err := stmt.ExecContext(ctx, docID, chunks[i], EncodeEmbedding(embeddings[i])); err != nil {
			return 0, fmt.Errorf("%w: insert chunk %d: %v", models.ErrStorage, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %v", models.ErrStorage, err)
	}
	return docID, nil
}

// ListDocuments returns all documents, newest first.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, created_at FROM documents ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", models.ErrStorage, err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("%w: scan document: %v", models.ErrStorage, err)
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", models.ErrStorage, err)
	}
	return docs, nil
}

// DeleteDocument removes a document and its chunks. Idempotent.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", models.ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE doc_id = ?`, id); err != nil {
		return fmt.Errorf("%w: delete chunks: %v", models.ErrStorage, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: delete document: %v", models.ErrStorage, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", models.ErrStorage, err)
	}
	return nil
}

// DeleteDocumentsByFilename removes all documents stored under filename.
func (s *SQLiteStore) DeleteDocumentsByFilename(ctx context.Context, filename string) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM documents WHERE filename = ?`, filename)
	if err != nil {
		return fmt.Errorf("%w: find documents: %v", models.ErrStorage, err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return fmt.Errorf("%w: scan document id: %v", models.ErrStorage, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("%w: find documents: %v", models.ErrStorage, err)
	}
	for _, id := range ids {
		if err := s.DeleteDocument(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ScanChunks materializes every chunk with its parent filename, in insertion order.
func (s *SQLiteStore) ScanChunks(ctx context.Context) ([]*models.ChunkRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chunks.id, chunks.doc_id, chunks.content, chunks.embedding, documents.filename
		FROM chunks
		JOIN documents ON chunks.doc_id = documents.id
		ORDER BY chunks.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: scan chunks: %v", models.ErrStorage, err)
	}
	defer rows.Close()

	var records []*models.ChunkRecord
	for rows.Next() {
		var rec models.ChunkRecord
		var blob []byte
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.Content, &blob, &rec.Filename); err != nil {
			return nil, fmt.Errorf("%w: scan chunk: %v", models.ErrStorage, err)
		}
		emb, err := DecodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %v", models.ErrStorage, rec.ID, err)
		}
		rec.Embedding = emb
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan chunks: %v", models.ErrStorage, err)
	}
	return records, nil
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStore) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count documents: %v", models.ErrStorage, err)
	}
	return count, nil
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStore) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count chunks: %v", models.ErrStorage, err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
