// Package vectorindex adapts the external vector store. All operations
// are scoped to a namespace (the job id), which is what keeps separate
// knowledge bases isolated even under concurrent ingestion.
package vectorindex

import (
	"context"

	"ragchat/entities"
)

// Match is one similarity hit: the stored chunk metadata plus its
// score. Higher scores rank first; scores are comparable only within a
// single query.
type Match struct {
	Chunk entities.Chunk
	Score float32
}

// Index is the namespaced vector store contract.
//
// Upsert is idempotent by chunk id. Query returns at most topK matches
// ordered by descending score with stable ties. DeleteNamespace removes
// every vector under the namespace.
type Index interface {
	Upsert(ctx context.Context, namespace string, chunks []entities.EmbeddedChunk) error
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error)
	DeleteNamespace(ctx context.Context, namespace string) error
	Ping(ctx context.Context) error
}
