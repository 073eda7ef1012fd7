package embedding

import "math"

const (
	// FallbackSentinel is written to component 0 of every fallback-generated
	// vector. Real model embeddings are assumed never to reach this value at
	// that position (a probabilistic convention, not a guarantee).
	FallbackSentinel = 0.999

	// fallbackThreshold is the detection cutoff for the sentinel.
	fallbackThreshold = 0.998
)

// FallbackVector returns a deterministic, content-sensitive embedding of the
// given dimension. It is not semantically meaningful; it exists so the
// pipeline keeps functioning when the real model is unreachable. Each token's
// characters are accumulated into positions derived from character code,
// character index, and token index, the result is squashed with tanh into
// (-1, 1), and component 0 is overwritten with the sentinel.
func FallbackVector(text string, dims int) []float32 {
	vec := make([]float64, dims)
	for w, token := range Tokenize(text) {
		for i, r := range token {
			code := int(r)
			pos := (code + i + w) % dims
			vec[pos] += float64(code) / 255
		}
	}
	out := make([]float32, dims)
	for i, v := range vec {
		out[i] = float32(math.Tanh(v))
	}
	out[0] = FallbackSentinel
	return out
}

// IsFallbackVector reports whether v was produced by the fallback generator.
// This is the sole signal the ranker uses to pick hybrid mode for a query.
func IsFallbackVector(v []float32) bool {
	return len(v) > 0 && float64(v[0]) >= fallbackThreshold
}
