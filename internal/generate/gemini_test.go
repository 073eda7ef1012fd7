package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quillbase/quill/internal/models"
)

func TestGeminiGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 {
			t.Fatalf("unexpected request shape: %+v", req)
		}
		prompt := req.Contents[0].Parts[0].Text
		if !strings.Contains(prompt, "what is quill") || !strings.Contains(prompt, "grounding text") {
			t.Errorf("prompt missing query or context: %q", prompt)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "An answer."}}}},
			},
		})
	}))
	defer srv.Close()

	g := NewGeminiGenerator(GeminiConfig{BaseURL: srv.URL, APIKey: "k"})
	got, err := g.Generate(context.Background(), "what is quill", "grounding text")
	if err != nil {
		t.Fatal(err)
	}
	if got != "An answer." {
		t.Errorf("got %q, want %q", got, "An answer.")
	}
}

func TestGeminiGenerate_MissingKey(t *testing.T) {
	g := NewGeminiGenerator(GeminiConfig{})
	_, err := g.Generate(context.Background(), "q", "c")
	if err == nil {
		t.Fatal("expected error with empty api key")
	}
	if !errors.Is(err, models.ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
}

func TestGeminiGenerate_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	g := NewGeminiGenerator(GeminiConfig{BaseURL: srv.URL, APIKey: "k"})
	if _, err := g.Generate(context.Background(), "q", "c"); err == nil {
		t.Fatal("expected error on empty candidates")
	}
}
