package vectorindex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/entities"
)

func TestQdrantUpsertSendsDeterministicIDs(t *testing.T) {
	var bodies []map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/chunks/points", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	q := NewQdrant(QdrantConfig{URL: ts.URL, Collection: "chunks", Dimension: 2})
	c := embedded("jobA", "a.pdf", 0, []float32{1, 0})
	require.NoError(t, q.Upsert(context.Background(), "jobA", []entities.EmbeddedChunk{c}))
	require.NoError(t, q.Upsert(context.Background(), "jobA", []entities.EmbeddedChunk{c}))

	require.Len(t, bodies, 2)
	first := bodies[0]["points"].([]any)[0].(map[string]any)
	second := bodies[1]["points"].([]any)[0].(map[string]any)
	assert.Equal(t, first["id"], second["id"], "same chunk must map to the same point id")
	payload := first["payload"].(map[string]any)
	assert.Equal(t, "jobA", payload["job_id"])
	assert.Equal(t, "a.pdf", payload["source"])
}

func TestQdrantQueryFiltersOnNamespace(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/chunks/points/search", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		filter := body["filter"].(map[string]any)
		must := filter["must"].([]any)[0].(map[string]any)
		assert.Equal(t, "job_id", must["key"])
		assert.Equal(t, "jobA", must["match"].(map[string]any)["value"])

		_, _ = w.Write([]byte(`{"result":[
			{"score":0.5,"payload":{"chunk_id":"jobA_a.pdf_1","job_id":"jobA","source":"a.pdf","sequence":1,"text":"t1"}},
			{"score":0.9,"payload":{"chunk_id":"jobA_a.pdf_0","job_id":"jobA","source":"a.pdf","sequence":0,"text":"t0"}}
		]}`))
	}))
	defer ts.Close()

	q := NewQdrant(QdrantConfig{URL: ts.URL, Collection: "chunks", Dimension: 2})
	matches, err := q.Query(context.Background(), "jobA", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, float32(0.9), matches[0].Score)
	assert.Equal(t, "jobA_a.pdf_0", matches[0].Chunk.ID)
	assert.Equal(t, 1, matches[1].Chunk.SequenceIndex)
}

func TestQdrantRetriesServerErrors(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	q := NewQdrant(QdrantConfig{URL: ts.URL, Collection: "chunks", Dimension: 2, Attempts: 3})
	err := q.Upsert(context.Background(), "jobA", []entities.EmbeddedChunk{
		embedded("jobA", "a.pdf", 0, []float32{1, 0}),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestQdrantDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	q := NewQdrant(QdrantConfig{URL: ts.URL, Collection: "chunks", Dimension: 2, Attempts: 3})
	err := q.Upsert(context.Background(), "jobA", []entities.EmbeddedChunk{
		embedded("jobA", "a.pdf", 0, []float32{1, 0}),
	})
	var idxErr *entities.IndexServiceError
	require.ErrorAs(t, err, &idxErr)
	assert.Equal(t, 1, calls)
}

func TestQdrantUpsertFailureAfterRetries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	q := NewQdrant(QdrantConfig{URL: ts.URL, Collection: "chunks", Dimension: 2, Attempts: 2, Timeout: time.Second})
	err := q.Upsert(context.Background(), "jobA", []entities.EmbeddedChunk{
		embedded("jobA", "a.pdf", 0, []float32{1, 0}),
	})
	var idxErr *entities.IndexServiceError
	require.ErrorAs(t, err, &idxErr)
}

func TestQdrantPing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/healthz", r.URL.Path)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	q := NewQdrant(QdrantConfig{URL: ts.URL, Collection: "chunks", Dimension: 2})
	require.NoError(t, q.Ping(context.Background()))
}
