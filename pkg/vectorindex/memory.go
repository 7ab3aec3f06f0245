package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"ragchat/entities"
)

// Memory is an in-process Index using cosine similarity. It backs tests
// and offline runs; behaviour matches the remote adapter's contract.
type Memory struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]entities.EmbeddedChunk
}

func NewMemory() *Memory {
	return &Memory{namespaces: make(map[string]map[string]entities.EmbeddedChunk)}
}

func (m *Memory) Upsert(_ context.Context, namespace string, chunks []entities.EmbeddedChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.namespaces[namespace]
	if !ok {
		ns = make(map[string]entities.EmbeddedChunk)
		m.namespaces[namespace] = ns
	}
	for _, c := range chunks {
		ns[c.ID] = c
	}
	return nil
}

func (m *Memory) Query(_ context.Context, namespace string, vector []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns := m.namespaces[namespace]
	matches := make([]Match, 0, len(ns))
	for _, c := range ns {
		matches = append(matches, Match{Chunk: c.Chunk, Score: cosine(vector, c.Vector)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Chunk.SequenceIndex < matches[j].Chunk.SequenceIndex
	})
	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *Memory) DeleteNamespace(_ context.Context, namespace string) error {
	m.mu.Lock()
	delete(m.namespaces, namespace)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

// Count returns the number of vectors stored under a namespace.
func (m *Memory) Count(namespace string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.namespaces[namespace])
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float32
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(na))) * float32(math.Sqrt(float64(nb))))
}
