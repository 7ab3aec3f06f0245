// Package embedder adapts the external embedding service: batch text
// in, fixed-dimension vectors out, same order and length as the input.
package embedder

import "context"

// Embedder converts texts into fixed-dimension vectors. EmbedBatch is
// all-or-nothing: either every input gets a vector or the call fails.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}
