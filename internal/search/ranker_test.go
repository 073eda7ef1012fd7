package search

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/quillbase/quill/internal/config"
	"github.com/quillbase/quill/internal/embedding"
	"github.com/quillbase/quill/internal/models"
	"github.com/quillbase/quill/internal/storage"
)

func testSearchConfig() *config.SearchConfig {
	return &config.SearchConfig{
		ChunkSize:     1000,
		ChunkOverlap:  200,
		TopK:          5,
		ContextChunks: 4,
		KeywordWeight: 0.7,
		VectorWeight:  0.3,
	}
}

func newRankerStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "rank.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSearch_PureVectorMode(t *testing.T) {
	store := newRankerStore(t)
	ctx := context.Background()

	// Component 0 stays well below the fallback threshold in every vector,
	// so this exercises the pure cosine path.
	chunks := []string{"about cats", "about dogs", "about birds"}
	embeddings := [][]float32{
		{0.1, 1, 0, 0},
		{0.1, 0, 1, 0},
		{0.1, 0, 0, 1},
	}
	if _, err := store.AddDocument(ctx, "animals.txt", chunks, embeddings); err != nil {
		t.Fatal(err)
	}

	ranker := NewRanker(store, testSearchConfig(), nil)
	results, err := ranker.Search(ctx, []float32{0.1, 0, 1, 0}, 3, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Content != "about dogs" {
		t.Errorf("top result = %q, want \"about dogs\"", results[0].Content)
	}
	if math.Abs(results[0].Score-1.0) > 1e-6 {
		t.Errorf("top score = %v, want ~1.0", results[0].Score)
	}
	if results[1].Score > results[0].Score || results[2].Score > results[1].Score {
		t.Errorf("results not in descending score order: %v", results)
	}
}

func TestSearch_HybridMode(t *testing.T) {
	store := newRankerStore(t)
	ctx := context.Background()

	const dims = 64
	chunks := []string{
		"Paris is the capital of France.",
		"Berlin is the capital of Germany.",
		"Bananas are rich in potassium.",
	}
	embeddings := make([][]float32, len(chunks))
	for i, c := range chunks {
		embeddings[i] = embedding.FallbackVector(c, dims)
	}
	if _, err := store.AddDocument(ctx, "facts.txt", chunks, embeddings); err != nil {
		t.Fatal(err)
	}

	ranker := NewRanker(store, testSearchConfig(), nil)
	query := "capital france"
	queryVec := embedding.FallbackVector(query, dims)

	results, err := ranker.Search(ctx, queryVec, 3, query)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Content != chunks[0] {
		t.Errorf("top result = %q, want the France chunk", results[0].Content)
	}
	// Both query tokens match the top chunk, so its keyword component alone
	// contributes the full keyword weight.
	if results[0].Score < 0.7 {
		t.Errorf("top score = %v, want >= 0.7", results[0].Score)
	}
	// The banana chunk matches no token; its score is vector-only.
	last := results[2]
	if last.Content != chunks[2] {
		t.Errorf("bottom result = %q, want the banana chunk", last.Content)
	}
	if last.Score >= 0.7 {
		t.Errorf("bottom score = %v, want < 0.7", last.Score)
	}
}

func TestSearch_HybridRequiresQueryText(t *testing.T) {
	store := newRankerStore(t)
	ctx := context.Background()

	const dims = 16
	// One chunk is keyword-rich for the query, the other is the query's own
	// fallback vector. With empty text the ranker must use pure cosine, so the
	// identical vector wins; with text, keywords flip the order.
	chunks := []string{"capital france paris", "unrelated content"}
	embeddings := [][]float32{
		embedding.FallbackVector("something else entirely different", dims),
		embedding.FallbackVector("capital france", dims),
	}
	if _, err := store.AddDocument(ctx, "mixed.txt", chunks, embeddings); err != nil {
		t.Fatal(err)
	}

	ranker := NewRanker(store, testSearchConfig(), nil)
	queryVec := embedding.FallbackVector("capital france", dims)

	pure, err := ranker.Search(ctx, queryVec, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if pure[0].Content != "unrelated content" {
		t.Errorf("pure mode top = %q, want the identical-vector chunk", pure[0].Content)
	}

	hybrid, err := ranker.Search(ctx, queryVec, 2, "capital france")
	if err != nil {
		t.Fatal(err)
	}
	if hybrid[0].Content != "capital france paris" {
		t.Errorf("hybrid mode top = %q, want the keyword-rich chunk", hybrid[0].Content)
	}
}

func TestSearch_WhitespaceQueryTextStaysHybrid(t *testing.T) {
	store := newRankerStore(t)
	ctx := context.Background()

	const dims = 16
	vec := embedding.FallbackVector("capital france", dims)
	if _, err := store.AddDocument(ctx, "one.txt", []string{"whatever"}, [][]float32{vec}); err != nil {
		t.Fatal(err)
	}

	cfg := testSearchConfig()
	ranker := NewRanker(store, cfg, nil)

	// Empty text: pure cosine against the identical vector scores 1.
	pure, err := ranker.Search(ctx, vec, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pure[0].Score-1.0) > 1e-6 {
		t.Errorf("pure score = %v, want ~1.0", pure[0].Score)
	}

	// Whitespace-only text: hybrid mode with zero tokens, so the score is the
	// cosine component alone, scaled by the vector weight.
	hybrid, err := ranker.Search(ctx, vec, 1, "   \t")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(hybrid[0].Score-cfg.VectorWeight) > 1e-6 {
		t.Errorf("hybrid score = %v, want ~%v", hybrid[0].Score, cfg.VectorWeight)
	}
}

func TestSearch_TopKTruncation(t *testing.T) {
	store := newRankerStore(t)
	ctx := context.Background()

	chunks := make([]string, 10)
	embeddings := make([][]float32, 10)
	for i := range chunks {
		chunks[i] = "chunk"
		embeddings[i] = []float32{0.1, float32(i + 1)}
	}
	if _, err := store.AddDocument(ctx, "many.txt", chunks, embeddings); err != nil {
		t.Fatal(err)
	}

	ranker := NewRanker(store, testSearchConfig(), nil)

	results, err := ranker.Search(ctx, []float32{0.1, 1}, 3, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}

	// topK <= 0 falls back to the configured default.
	results, err = ranker.Search(ctx, []float32{0.1, 1}, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 5 {
		t.Errorf("got %d results, want config default 5", len(results))
	}
}

func TestSearch_EmptyQueryVector(t *testing.T) {
	ranker := NewRanker(newRankerStore(t), testSearchConfig(), nil)
	_, err := ranker.Search(context.Background(), nil, 5, "")
	if err == nil {
		t.Fatal("expected error for empty query vector")
	}
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSearch_EmptyStore(t *testing.T) {
	ranker := NewRanker(newRankerStore(t), testSearchConfig(), nil)
	results, err := ranker.Search(context.Background(), []float32{1, 2, 3}, 5, "")
	if err != nil {
		t.Fatal(err)
	}
	if results != nil {
		t.Errorf("expected nil results on empty store, got %v", results)
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	store := newRankerStore(t)
	ctx := context.Background()

	if _, err := store.AddDocument(ctx, "a.txt", []string{"x"}, [][]float32{{1, 2, 3}}); err != nil {
		t.Fatal(err)
	}

	ranker := NewRanker(store, testSearchConfig(), nil)
	_, err := ranker.Search(ctx, []float32{1, 2}, 5, "")
	if err == nil {
		t.Fatal("expected error for dimension mismatch")
	}
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
