// Package extract provides text extraction from uploaded document files.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/quillbase/quill/internal/models"
)

// Extractor turns file bytes into plain UTF-8 text. Failures here wrap
// models.ErrExtraction and abort ingestion for that file only.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the text content of the file. The format is chosen by the
// filename's extension: PDF, DOCX, and XLSX are parsed from their binary
// formats; everything else is treated as plain text.
func (e *Extractor) Extract(content []byte, filename string) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty file payload for %q", models.ErrInvalidArgument, filename)
	}
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = extractPDF(content)
	case ".docx":
		text, err = extractDOCX(content)
	case ".xlsx":
		text, err = extractExcel(content)
	default:
		text, err = extractPlain(content)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", models.ErrExtraction, filename, err)
	}
	return text, nil
}
