package search

import (
	"fmt"
	"strings"

	"github.com/quillbase/quill/internal/models"
)

// BuildContext joins ranked results into a single grounding context string.
// Each entry is prefixed with its source filename and entries are separated by
// blank lines, preserving ranking order. maxChunks <= 0 means no limit.
func BuildContext(results []models.SearchResult, maxChunks int) string {
	if maxChunks > 0 && len(results) > maxChunks {
		results = results[:maxChunks]
	}
	parts := make([]string, 0, len(results))
	for _, res := range results {
		parts = append(parts, fmt.Sprintf("[Source: %s]\n%s", res.Filename, res.Content))
	}
	return strings.Join(parts, "\n\n")
}
