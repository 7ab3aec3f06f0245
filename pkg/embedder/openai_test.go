package embedder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/entities"
)

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

func newEmbeddingsServer(t *testing.T, handler func(w http.ResponseWriter, req embeddingsRequest, call int)) *httptest.Server {
	t.Helper()
	calls := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		var req embeddingsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		calls++
		handler(w, req, calls)
	}))
}

func writeEmbeddings(w http.ResponseWriter, req embeddingsRequest, dim int) {
	type item struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	}
	items := make([]item, len(req.Input))
	for i := range req.Input {
		vec := make([]float32, dim)
		vec[0] = float32(len(req.Input[i])) // distinguishable per input
		items[i] = item{Object: "embedding", Index: i, Embedding: vec}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data":   items,
		"model":  req.Model,
	})
}

func TestEmbedBatchSplitsAndPreservesOrder(t *testing.T) {
	const dim = 4
	var batchSizes []int
	ts := newEmbeddingsServer(t, func(w http.ResponseWriter, req embeddingsRequest, _ int) {
		batchSizes = append(batchSizes, len(req.Input))
		writeEmbeddings(w, req, dim)
	})
	defer ts.Close()

	e := NewOpenAI(ts.URL+"/v1", "test-key", "test-model", dim, 5*time.Second)

	texts := make([]string, 150)
	for i := range texts {
		texts[i] = fmt.Sprintf("%0*d", i%7+1, i) // varying lengths
	}
	vectors, err := e.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))
	assert.Equal(t, []int{100, 50}, batchSizes)
	for i, v := range vectors {
		require.Len(t, v, dim)
		assert.Equal(t, float32(len(texts[i])), v[0], "vector %d out of order", i)
	}
}

func TestEmbedBatchRetriesTransientFailure(t *testing.T) {
	const dim = 3
	ts := newEmbeddingsServer(t, func(w http.ResponseWriter, req embeddingsRequest, call int) {
		if call == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeEmbeddings(w, req, dim)
	})
	defer ts.Close()

	e := NewOpenAI(ts.URL+"/v1", "test-key", "test-model", dim, 5*time.Second)
	vectors, err := e.EmbedBatch(context.Background(), []string{"hello"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
}

func TestEmbedBatchExhaustsRetries(t *testing.T) {
	ts := newEmbeddingsServer(t, func(w http.ResponseWriter, _ embeddingsRequest, _ int) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer ts.Close()

	e := NewOpenAI(ts.URL+"/v1", "test-key", "test-model", 3, 5*time.Second)
	_, err := e.EmbedBatch(context.Background(), []string{"hello"})
	var svcErr *entities.EmbeddingServiceError
	require.ErrorAs(t, err, &svcErr)
}

func TestEmbedBatchRejectsWrongDimension(t *testing.T) {
	ts := newEmbeddingsServer(t, func(w http.ResponseWriter, req embeddingsRequest, _ int) {
		writeEmbeddings(w, req, 5)
	})
	defer ts.Close()

	e := NewOpenAI(ts.URL+"/v1", "test-key", "test-model", 8, 5*time.Second)
	_, err := e.EmbedBatch(context.Background(), []string{"hello"})
	var svcErr *entities.EmbeddingServiceError
	require.ErrorAs(t, err, &svcErr)
}

func TestEmbedBatchRejectsDuplicateIndices(t *testing.T) {
	ts := newEmbeddingsServer(t, func(w http.ResponseWriter, req embeddingsRequest, _ int) {
		type item struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		// Both items claim slot 0, leaving slot 1 unfilled.
		items := []item{
			{Object: "embedding", Index: 0, Embedding: make([]float32, 4)},
			{Object: "embedding", Index: 0, Embedding: make([]float32, 4)},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   items,
			"model":  req.Model,
		})
	})
	defer ts.Close()

	e := NewOpenAI(ts.URL+"/v1", "test-key", "test-model", 4, 5*time.Second)
	_, err := e.EmbedBatch(context.Background(), []string{"one", "two"})
	var svcErr *entities.EmbeddingServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Contains(t, err.Error(), "no embedding returned")
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	e := NewOpenAI("http://127.0.0.1:1/v1", "k", "m", 3, time.Second)
	vectors, err := e.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestMockDeterministic(t *testing.T) {
	m := NewMock(8)
	a, err := m.EmbedBatch(context.Background(), []string{"same text", "other"})
	require.NoError(t, err)
	b, err := m.EmbedBatch(context.Background(), []string{"same text"})
	require.NoError(t, err)
	assert.Equal(t, a[0], b[0])
	assert.NotEqual(t, a[0], a[1])
	assert.Len(t, a[0], 8)
}
