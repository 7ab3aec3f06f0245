package embedder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ragchat/entities"
)

const (
	// maxBatchSize is the largest input slice sent in one upstream
	// request; larger batches are split transparently.
	maxBatchSize = 100

	defaultAttempts = 3
	baseBackoff     = 200 * time.Millisecond
)

// OpenAI embeds text through any OpenAI-compatible embeddings endpoint.
type OpenAI struct {
	client   *openai.Client
	model    string
	dim      int
	attempts int
}

// NewOpenAI creates an embedding client for the given endpoint. The
// dimension is the contract the vector index is created against.
func NewOpenAI(baseURL, apiKey, model string, dimension int, timeout time.Duration) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAI{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		dim:      dimension,
		attempts: defaultAttempts,
	}
}

func (e *OpenAI) Dimension() int { return e.dim }

// EmbedBatch returns one vector per input text, in input order. The
// input is split into upstream batches internally; any batch failing
// after retries fails the whole call.
func (e *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := e.embedOnce(ctx, texts[start:end])
		if err != nil {
			return nil, &entities.EmbeddingServiceError{Err: err}
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (e *OpenAI) embedOnce(ctx context.Context, batch []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt < e.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(baseBackoff << (attempt - 1)):
			}
		}
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(e.model),
			Input: batch,
		})
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(batch), len(resp.Data))
		}
		vectors := make([][]float32, len(batch))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(batch) {
				return nil, fmt.Errorf("embedding index %d out of range", d.Index)
			}
			if e.dim > 0 && len(d.Embedding) != e.dim {
				return nil, fmt.Errorf("expected dimension %d, got %d", e.dim, len(d.Embedding))
			}
			vectors[d.Index] = d.Embedding
		}
		// Duplicate Index values would leave another slot nil; a nil
		// vector must never reach the index.
		for i, v := range vectors {
			if v == nil {
				return nil, fmt.Errorf("no embedding returned for input %d", i)
			}
		}
		return vectors, nil
	}
	return nil, lastErr
}
