package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/entities"
	"ragchat/pkg/embedder"
	"ragchat/pkg/vectorindex"
)

func seed(t *testing.T, idx *vectorindex.Memory, emb embedder.Embedder, jobID, file string, texts []string) {
	t.Helper()
	vectors, err := emb.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	chunks := make([]entities.EmbeddedChunk, len(texts))
	for i, text := range texts {
		chunks[i] = entities.EmbeddedChunk{
			Chunk: entities.Chunk{
				ID:             entities.ChunkID(jobID, file, i),
				JobID:          jobID,
				SourceFilename: file,
				SequenceIndex:  i,
				Text:           text,
			},
			Vector: vectors[i],
		}
	}
	require.NoError(t, idx.Upsert(context.Background(), jobID, chunks))
}

func TestRetrieveRanksBySimilarity(t *testing.T) {
	emb := embedder.NewMock(32)
	idx := vectorindex.NewMemory()
	seed(t, idx, emb, "jobA", "a.pdf", []string{
		"the capital of France is Paris",
		"bananas are rich in potassium",
	})

	r := New(emb, idx)
	got, err := r.Retrieve(context.Background(), "jobA", "the capital of France is Paris", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Contains(t, got[0].Text, "Paris")
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)
}

func TestRetrieveEmptyNamespace(t *testing.T) {
	r := New(embedder.NewMock(8), vectorindex.NewMemory())
	got, err := r.Retrieve(context.Background(), "no-such-job", "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetrieveDefaultTopK(t *testing.T) {
	emb := embedder.NewMock(16)
	idx := vectorindex.NewMemory()
	texts := make([]string, 9)
	for i := range texts {
		texts[i] = "sample text number " + string(rune('a'+i))
	}
	seed(t, idx, emb, "jobA", "a.pdf", texts)

	r := New(emb, idx)
	got, err := r.Retrieve(context.Background(), "jobA", "sample text", 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultTopK)
}

func TestRetrieveNamespaceIsolation(t *testing.T) {
	emb := embedder.NewMock(16)
	idx := vectorindex.NewMemory()
	seed(t, idx, emb, "jobA", "a.pdf", []string{"alpha document text"})
	seed(t, idx, emb, "jobB", "b.pdf", []string{"alpha document text"})

	r := New(emb, idx)
	got, err := r.Retrieve(context.Background(), "jobA", "alpha document text", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "jobA", got[0].JobID)
}

func TestRetrievePropagatesEmbedderError(t *testing.T) {
	emb := embedder.NewMock(8)
	emb.Err = errors.New("upstream down")
	r := New(emb, vectorindex.NewMemory())

	_, err := r.Retrieve(context.Background(), "jobA", "query", 5)
	var svcErr *entities.EmbeddingServiceError
	require.ErrorAs(t, err, &svcErr)
}
