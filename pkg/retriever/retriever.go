// Package retriever turns a query string into ranked chunks from one
// job's namespace.
package retriever

import (
	"context"
	"fmt"

	"ragchat/entities"
	"ragchat/pkg/embedder"
	"ragchat/pkg/vectorindex"
)

// DefaultTopK is the number of chunks retrieved when the caller does
// not say otherwise.
const DefaultTopK = 5

type Retriever struct {
	emb embedder.Embedder
	idx vectorindex.Index
}

func New(emb embedder.Embedder, idx vectorindex.Index) *Retriever {
	return &Retriever{emb: emb, idx: idx}
}

// Retrieve embeds the query and returns the topK most similar chunks
// from the job's namespace, best first. An empty result is a valid
// outcome, not an error: the job may simply have nothing relevant
// indexed yet.
func (r *Retriever) Retrieve(ctx context.Context, jobID, query string, topK int) ([]entities.ScoredChunk, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	vectors, err := r.emb.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, &entities.EmbeddingServiceError{Err: fmt.Errorf("expected 1 query vector, got %d", len(vectors))}
	}
	matches, err := r.idx.Query(ctx, jobID, vectors[0], topK)
	if err != nil {
		return nil, err
	}
	out := make([]entities.ScoredChunk, len(matches))
	for i, m := range matches {
		out[i] = entities.ScoredChunk{Chunk: m.Chunk, Score: m.Score}
	}
	return out, nil
}
