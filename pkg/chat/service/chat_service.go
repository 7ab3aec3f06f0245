package service

import (
	"context"

	"ragchat/entities"
)

// Result is one completed chat exchange.
type Result struct {
	SessionID string                    `json:"session_id"`
	Response  string                    `json:"response"`
	Sources   []entities.SourceCitation `json:"sources"`
}

// ChatService answers questions grounded in a completed job's indexed
// documents and maintains per-session conversation history.
type ChatService interface {
	// Chat appends the user message and a grounded assistant answer to
	// the session, creating the session when sessionID is empty. The
	// job must have completed ingestion.
	Chat(ctx context.Context, sessionID, jobID, message string) (*Result, error)

	// History returns a copy of the session's messages, oldest first.
	// Unknown sessions yield an empty history.
	History(sessionID string) []entities.Message

	// Clear drops the session's history, keeping the job and its index.
	Clear(sessionID string)

	// ActiveSessions reports how many sessions currently exist.
	ActiveSessions() int
}
