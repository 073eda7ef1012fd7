// Package search ranks stored chunks against a query vector, blending in
// keyword overlap when the query was embedded by the fallback generator.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/quillbase/quill/internal/config"
	"github.com/quillbase/quill/internal/embedding"
	"github.com/quillbase/quill/internal/models"
	"github.com/quillbase/quill/internal/storage"
	"github.com/quillbase/quill/internal/vector"
)

// Ranker scores every stored chunk against a query. Scoring is a full scan of
// the store on every call; there is no candidate index and no score caching.
// That is a deliberate scalability ceiling, not an oversight.
type Ranker struct {
	store  storage.Store
	cfg    *config.SearchConfig
	logger *zap.Logger
}

// NewRanker creates a ranker over the given store.
func NewRanker(store storage.Store, cfg *config.SearchConfig, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{store: store, cfg: cfg, logger: logger}
}

// Search returns up to topK chunks ranked descending by score, ties broken by
// scan order. When queryVec carries the fallback sentinel and queryText is
// non-empty, hybrid mode blends keyword overlap (weight 0.7) with cosine
// similarity (0.3); otherwise pure cosine similarity is used. A query vector
// whose dimension differs from the stored chunks is a caller error.
func (r *Ranker) Search(ctx context.Context, queryVec []float32, topK int, queryText string) ([]models.SearchResult, error) {
	if len(queryVec) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", models.ErrInvalidArgument)
	}
	if topK <= 0 {
		topK = r.cfg.TopK
	}

	records, err := r.store.ScanChunks(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	if len(records[0].Embedding) != len(queryVec) {
		return nil, fmt.Errorf("%w: query vector dimension %d, store dimension %d",
			models.ErrInvalidArgument, len(queryVec), len(records[0].Embedding))
	}

	// Any non-empty query text triggers hybrid mode, whitespace included: a
	// whitespace query yields zero tokens, so every score degrades to the
	// vector component alone, scaled by its weight.
	hybrid := embedding.IsFallbackVector(queryVec) && queryText != ""
	r.logger.Debug("ranking chunks",
		zap.Int("chunks", len(records)),
		zap.Int("top_k", topK),
		zap.Bool("hybrid", hybrid),
	)

	results := make([]models.SearchResult, 0, len(records))
	if hybrid {
		tokens := embedding.Tokenize(queryText)
		for _, rec := range records {
			results = append(results, models.SearchResult{
				Content:  rec.Content,
				Filename: rec.Filename,
				Score:    r.hybridScore(queryVec, rec, tokens),
			})
		}
	} else {
		for _, rec := range records {
			results = append(results, models.SearchResult{
				Content:  rec.Content,
				Filename: rec.Filename,
				Score:    vector.Cosine(queryVec, rec.Embedding),
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// hybridScore blends the fraction of query tokens found in the chunk with the
// cosine similarity against the fallback-style query vector. The vector score
// is a weak signal in this mode, hence the lower weight.
func (r *Ranker) hybridScore(queryVec []float32, rec *models.ChunkRecord, tokens []string) float64 {
	var keywordScore float64
	if len(tokens) > 0 {
		contentLower := strings.ToLower(rec.Content)
		matches := 0
		for _, tok := range tokens {
			if strings.Contains(contentLower, tok) {
				matches++
			}
		}
		keywordScore = float64(matches) / float64(len(tokens))
	}
	vectorScore := vector.Cosine(queryVec, rec.Embedding)
	return r.cfg.KeywordWeight*keywordScore + r.cfg.VectorWeight*vectorScore
}
