package ai

import (
	"context"
	"strings"
)

type mockClient struct{}

// NewMock returns a client that answers from the prompt's context
// blocks without any external call. Used when no generation endpoint is
// configured, and in tests.
func NewMock() Client { return &mockClient{} }

func (m *mockClient) Complete(_ context.Context, prompt string) (string, error) {
	var contextLine string
	inContext := false
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Context from documents:"):
			inContext = true
		case strings.HasPrefix(line, "User Question:"):
			inContext = false
		case inContext && contextLine == "" && line != "" && !strings.HasPrefix(line, "[Source:"):
			contextLine = line
		}
	}
	if contextLine == "" {
		return "I don't have enough information to answer that question based on the uploaded documents.", nil
	}
	// Echo the top retrieved passage so answers stay grounded in the
	// document text even without a real model.
	return "Based on the uploaded documents: " + contextLine, nil
}
