package entities

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn. Append-only; append order defines
// the history used as generation context.
type Message struct {
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Sources   []SourceCitation `json:"sources,omitempty"`
}

// ChatSession binds an ordered message history to one ingested
// knowledge base. A session only ever queries its bound job's chunks.
type ChatSession struct {
	SessionID string    `json:"session_id"`
	JobID     string    `json:"job_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}
