package entities

import "fmt"

// ValidationError rejects malformed input before any state mutation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NotFoundError reports an unknown job or session id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found: %s", e.Kind, e.ID) }

// ConfigError reports invalid chunking or runtime parameters.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return e.Reason }

// EmbeddingServiceError wraps a failure of the external embedding service.
type EmbeddingServiceError struct {
	Err error
}

func (e *EmbeddingServiceError) Error() string { return "embedding service: " + e.Err.Error() }
func (e *EmbeddingServiceError) Unwrap() error { return e.Err }

// IndexServiceError wraps a failure of the external vector index.
type IndexServiceError struct {
	Err error
}

func (e *IndexServiceError) Error() string { return "vector index: " + e.Err.Error() }
func (e *IndexServiceError) Unwrap() error { return e.Err }

// GenerationServiceError wraps a failure of the external text
// generation service.
type GenerationServiceError struct {
	Err error
}

func (e *GenerationServiceError) Error() string { return "generation service: " + e.Err.Error() }
func (e *GenerationServiceError) Unwrap() error { return e.Err }

// ProcessingError is a per-file ingestion failure carrying the file
// name and the underlying cause.
type ProcessingError struct {
	Filename string
	Err      error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing %s: %v", e.Filename, e.Err)
}
func (e *ProcessingError) Unwrap() error { return e.Err }
