package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ragchat/entities"
)

type openAI struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAI creates a chat completion client against any
// OpenAI-compatible endpoint. Sampling parameters are fixed at
// construction; top_p stays at 0.9 to match the tuned defaults.
func NewOpenAI(endpoint, key, model string, temperature float32, maxTokens int, timeout time.Duration) Client {
	cfg := openai.DefaultConfig(key)
	if endpoint != "" {
		cfg.BaseURL = strings.TrimRight(endpoint, "/") + "/v1"
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &openAI{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (c *openAI) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		TopP:        0.9,
	}

	// One retry on upstream failure; chat latency does not allow more.
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", &entities.GenerationServiceError{Err: ctx.Err()}
			case <-time.After(300 * time.Millisecond):
			}
		}
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = errors.New("no choices returned")
			continue
		}
		content := strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			lastErr = errors.New("empty completion")
			continue
		}
		return content, nil
	}
	return "", &entities.GenerationServiceError{Err: lastErr}
}
