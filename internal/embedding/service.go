package embedding

import (
	"context"

	"go.uber.org/zap"
)

// Service is the fail-open embedding front. The primary client is tried
// first; on any failure (including a vector of the wrong dimension) the
// deterministic fallback generator answers instead, so Embed never fails.
// Failures are logged and swallowed at this boundary.
type Service struct {
	client Client
	dims   int
	cache  *Cache
	logger *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCache enables an LRU cache of the given capacity for model embeddings.
func WithCache(capacity int) ServiceOption {
	return func(s *Service) {
		if capacity > 0 {
			s.cache = NewCache(capacity)
		}
	}
}

// NewService creates a fail-open embedding service of the given dimension.
// client may be nil, in which case every embedding is fallback-generated.
func NewService(client Client, dims int, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{client: client, dims: dims, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embed returns an embedding of length Dimensions() for text. Never fails.
func (s *Service) Embed(ctx context.Context, text string) []float32 {
	if s.cache != nil {
		if cached, ok := s.cache.Get(text); ok {
			return cached
		}
	}
	if s.client != nil {
		vec, err := s.client.Embed(ctx, text)
		if err == nil && len(vec) == s.dims {
			if s.cache != nil {
				s.cache.Set(text, vec)
			}
			return vec
		}
		if err != nil {
			s.logger.Warn("embedding model unavailable, using fallback", zap.Error(err))
		} else {
			s.logger.Warn("embedding model returned wrong dimension, using fallback",
				zap.Int("got", len(vec)), zap.Int("want", s.dims))
		}
	}
	return FallbackVector(text, s.dims)
}

// EmbedBatch embeds each text sequentially (one round-trip per chunk, to
// bound memory and respect model rate limits).
func (s *Service) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = s.Embed(ctx, text)
	}
	return embeddings
}

// Dimensions returns the embedding dimension D.
func (s *Service) Dimensions() int {
	return s.dims
}
