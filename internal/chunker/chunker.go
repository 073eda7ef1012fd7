// Package chunker splits document text into overlapping fixed-size windows.
package chunker

import (
	"fmt"

	"github.com/quillbase/quill/internal/models"
)

// Chunker produces overlapping character windows over document text.
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker. size is the window length in bytes, overlap the
// number of bytes shared between consecutive windows. Returns
// models.ErrInvalidArgument when size <= 0, overlap < 0, or overlap >= size
// (the step would be zero or negative and the split would never terminate).
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", models.ErrInvalidArgument, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, size), got %d", models.ErrInvalidArgument, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split returns the ordered windows of text. Every window except the last has
// exactly size bytes; the start offset advances by size-overlap. Empty text
// yields nil.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	step := c.size - c.overlap
	chunks := make([]string, 0, (len(text)+step-1)/step)
	for i := 0; i < len(text); i += step {
		end := i + c.size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[i:end])
	}
	return chunks
}

// Split is a one-shot convenience for callers that do not keep a Chunker.
func Split(text string, size, overlap int) ([]string, error) {
	c, err := New(size, overlap)
	if err != nil {
		return nil, err
	}
	return c.Split(text), nil
}
