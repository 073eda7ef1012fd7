package models

import "errors"

// Error taxonomy. Call sites wrap these with fmt.Errorf("...: %w", ...) so
// callers can classify with errors.Is while keeping contextual messages.
var (
	// ErrInvalidArgument covers malformed chunking parameters, dimension
	// mismatches, and missing payloads. Never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrExtraction means a file could not be turned into text. Aborts
	// ingestion for that file only; sibling files in a batch continue.
	ErrExtraction = errors.New("extraction failed")

	// ErrStorage covers persistence failures during add/delete/scan.
	// Adds roll back; no partial state is left behind.
	ErrStorage = errors.New("storage failure")

	// ErrGeneration means the answer model failed. Surfaced to users as a
	// placeholder answer, not an error, since retrieval results remain valid.
	ErrGeneration = errors.New("generation failed")
)
