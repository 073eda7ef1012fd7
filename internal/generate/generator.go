// Package generate produces grounded answers from a query and retrieval context.
package generate

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// PlaceholderAnswer is returned to users when the answer model fails. The
// retrieval results are still valid and worth showing, so generation failure
// is never an error at the API boundary.
const PlaceholderAnswer = "I encountered an error while processing your request. Please try again or check your documents."

// Generator produces an answer for a question given a grounding context.
type Generator interface {
	Generate(ctx context.Context, query, groundingContext string) (string, error)
}

// Service wraps a Generator and resolves failures into the placeholder answer.
type Service struct {
	gen    Generator
	logger *zap.Logger
}

// NewService creates a generation service. gen may be nil, in which case
// every answer is the placeholder.
func NewService(gen Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gen: gen, logger: logger}
}

// Answer returns the model's answer, or the placeholder on any failure.
func (s *Service) Answer(ctx context.Context, query, groundingContext string) string {
	if s.gen == nil {
		return PlaceholderAnswer
	}
	answer, err := s.gen.Generate(ctx, query, groundingContext)
	if err != nil {
		s.logger.Warn("answer generation failed", zap.Error(err))
		return PlaceholderAnswer
	}
	return answer
}

// Prompt builds the grounding prompt sent to the answer model.
func Prompt(query, groundingContext string) string {
	return fmt.Sprintf(`You are a highly capable Semantic Search Assistant.

INSTRUCTIONS:
1. Answer the user's question based ONLY on the provided context.
2. If the answer is not explicitly in the context, but can be reasonably inferred, do so.
3. If the answer is absolutely not found, say: "Answer not found in the uploaded documents."
4. Be concise but thorough.
5. Always maintain a professional and helpful tone.

CONTEXT:
%s

USER QUESTION: %s

ANSWER:`, groundingContext, query)
}
