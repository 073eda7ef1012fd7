// Package embedding provides text embedding via a remote model with a
// deterministic local fallback.
package embedding

import "context"

// Client produces a vector embedding for text, typically over the network.
// Implementations may fail; the Service wrapper resolves failures with the
// fallback generator so embedding acquisition itself never fails.
type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
