package embedder

import (
	"context"
	"math"

	"ragchat/entities"
)

// Mock is a deterministic offline embedder: vectors are derived from
// character positions and L2-normalised, so identical texts map close
// together and tests need no network.
type Mock struct {
	dim int

	// Err, when set, fails every call. Used to exercise failure paths.
	Err error
}

func NewMock(dimension int) *Mock { return &Mock{dim: dimension} }

func (m *Mock) Dimension() int { return m.dim }

func (m *Mock) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.Err != nil {
		return nil, &entities.EmbeddingServiceError{Err: m.Err}
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.embed(t)
	}
	return out, nil
}

func (m *Mock) embed(text string) []float32 {
	vec := make([]float32, m.dim)
	for i, r := range text {
		vec[i%m.dim] += float32(r) / 1000.0
	}
	var sum float32
	for _, v := range vec {
		sum += v * v
	}
	if sum > 0 {
		inv := float32(1.0 / math.Sqrt(float64(sum)))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}
