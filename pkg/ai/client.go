// Package ai wraps the external text generation service behind a small
// client interface with a mock fallback for offline runs.
package ai

import "context"

// Client takes a fully rendered prompt and returns generated text.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
