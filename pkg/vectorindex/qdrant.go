package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"ragchat/entities"
)

// Qdrant is a REST client to a Qdrant instance. One collection holds
// every job's vectors; per-job isolation comes from a payload filter on
// job_id, so a query can never cross namespaces.
type Qdrant struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	attempts   int
	client     *http.Client
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Dimension  int
	Timeout    time.Duration
	Attempts   int
}

// qdrantIDSpace seeds the deterministic point ids. Qdrant only accepts
// uuid or integer ids, so chunk ids are mapped through UUIDv5; the same
// chunk id always maps to the same point, keeping upserts idempotent.
var qdrantIDSpace = uuid.MustParse("9f2c1a52-7a45-4f36-9d9e-54ca2b5f06c1")

func NewQdrant(cfg QdrantConfig) *Qdrant {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	return &Qdrant{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		attempts:   attempts,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init creates the collection if missing. Qdrant answers 200 for an
// existing collection with the same schema.
func (q *Qdrant) Init(ctx context.Context) error {
	if q.dimension <= 0 {
		return &entities.ConfigError{Reason: "vector dimension must be positive"}
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     q.dimension,
			"distance": "Cosine",
		},
	}
	err := q.do(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", q.url, q.collection), body, nil)
	if err != nil {
		return &entities.IndexServiceError{Err: err}
	}
	return nil
}

func (q *Qdrant) Upsert(ctx context.Context, namespace string, chunks []entities.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	points := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		points[i] = map[string]any{
			"id":     uuid.NewSHA1(qdrantIDSpace, []byte(c.ID)).String(),
			"vector": c.Vector,
			"payload": map[string]any{
				"chunk_id":   c.ID,
				"job_id":     namespace,
				"source":     c.SourceFilename,
				"sequence":   c.SequenceIndex,
				"text":       c.Text,
				"char_start": c.CharStart,
				"char_end":   c.CharEnd,
			},
		}
	}
	body := map[string]any{"points": points}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", q.url, q.collection)
	if err := q.doWithRetry(ctx, http.MethodPut, url, body, nil); err != nil {
		return &entities.IndexServiceError{Err: err}
	}
	return nil
}

func (q *Qdrant) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "job_id", "match": map[string]any{"value": namespace}},
			},
		},
	}
	var resp struct {
		Result []struct {
			Score   float32        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection)
	if err := q.doWithRetry(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, &entities.IndexServiceError{Err: err}
	}

	matches := make([]Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		matches = append(matches, Match{Chunk: chunkFromPayload(r.Payload), Score: r.Score})
	}
	// The store does not guarantee tie order; re-stabilise on sequence.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Chunk.SequenceIndex < matches[j].Chunk.SequenceIndex
	})
	return matches, nil
}

func (q *Qdrant) DeleteNamespace(ctx context.Context, namespace string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "job_id", "match": map[string]any{"value": namespace}},
			},
		},
	}
	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", q.url, q.collection)
	if err := q.doWithRetry(ctx, http.MethodPost, url, body, nil); err != nil {
		return &entities.IndexServiceError{Err: err}
	}
	return nil
}

func (q *Qdrant) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.url+"/healthz", nil)
	if err != nil {
		return &entities.IndexServiceError{Err: err}
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return &entities.IndexServiceError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &entities.IndexServiceError{Err: fmt.Errorf("healthz: %s", resp.Status)}
	}
	return nil
}

func chunkFromPayload(payload map[string]any) entities.Chunk {
	c := entities.Chunk{}
	if v, ok := payload["chunk_id"].(string); ok {
		c.ID = v
	}
	if v, ok := payload["job_id"].(string); ok {
		c.JobID = v
	}
	if v, ok := payload["source"].(string); ok {
		c.SourceFilename = v
	}
	if v, ok := payload["sequence"].(float64); ok {
		c.SequenceIndex = int(v)
	}
	if v, ok := payload["text"].(string); ok {
		c.Text = v
	}
	if v, ok := payload["char_start"].(float64); ok {
		c.CharStart = int(v)
	}
	if v, ok := payload["char_end"].(float64); ok {
		c.CharEnd = int(v)
	}
	return c
}

// doWithRetry repeats transport-level and 5xx failures with exponential
// backoff before giving up. 4xx responses are not retried.
func (q *Qdrant) doWithRetry(ctx context.Context, method, url string, body any, out any) error {
	var lastErr error
	for attempt := 0; attempt < q.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(200 * time.Millisecond << (attempt - 1)):
			}
		}
		err := q.do(ctx, method, url, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		var re *retryableError
		if !errors.As(err, &re) {
			return err
		}
	}
	return lastErr
}

type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (q *Qdrant) do(ctx context.Context, method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return &retryableError{err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return &retryableError{err: fmt.Errorf("qdrant %s %s: %s", method, url, resp.Status)}
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
