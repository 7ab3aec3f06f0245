package serviceImp

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"ragchat/entities"
	"ragchat/pkg/ai"
	"ragchat/pkg/chat/service"
	"ragchat/pkg/registry"
	"ragchat/pkg/retriever"
)

const (
	maxCitations = 3
	excerptLen   = 200

	noContextAnswer = "I don't have enough information to answer that question based on the uploaded documents."

	// Fallbacks keep the conversation alive when an external service
	// stays down after retries; the failure is recorded in the session
	// instead of surfacing as a transport error.
	retrievalFallback  = "I couldn't search the uploaded documents just now. Please try again in a moment."
	generationFallback = "I wasn't able to generate a response right now. Please try asking again in a moment."
)

type Config struct {
	TopK           int
	HistoryWindow  int
	MaxPromptChars int
}

func (c *Config) applyDefaults() {
	if c.TopK <= 0 {
		c.TopK = retriever.DefaultTopK
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = 4
	}
	if c.MaxPromptChars <= 0 {
		c.MaxPromptChars = 2500
	}
}

// Svc composes grounded answers and owns the session lifecycle.
// Overlapping requests to the same session serialise on a per-session
// lock so partial appends never interleave.
type Svc struct {
	retr     *retriever.Retriever
	llm      ai.Client
	jobs     *registry.Store[entities.Job]
	sessions *registry.Store[entities.ChatSession]
	cfg      Config

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is reference-counted so the map only holds entries for
// in-flight exchanges instead of every session ever seen.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func New(
	retr *retriever.Retriever,
	llm ai.Client,
	jobs *registry.Store[entities.Job],
	sessions *registry.Store[entities.ChatSession],
	cfg Config,
) *Svc {
	cfg.applyDefaults()
	return &Svc{
		retr:     retr,
		llm:      llm,
		jobs:     jobs,
		sessions: sessions,
		cfg:      cfg,
		locks:    make(map[string]*sessionLock),
	}
}

var _ service.ChatService = (*Svc)(nil)

func (s *Svc) Chat(ctx context.Context, sessionID, jobID, message string) (*service.Result, error) {
	if strings.TrimSpace(message) == "" {
		return nil, &entities.ValidationError{Reason: "message is required"}
	}
	job, ok := s.jobs.Get(jobID)
	if !ok || job.Status != entities.JobCompleted {
		return nil, &entities.NotFoundError{Kind: "completed job", ID: jobID}
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	lock := s.lockSession(sessionID)
	defer s.unlockSession(sessionID, lock)

	sess := s.sessions.GetOrCreate(sessionID, func() entities.ChatSession {
		return entities.ChatSession{SessionID: sessionID, JobID: jobID, CreatedAt: time.Now()}
	})
	if sess.JobID != jobID {
		return nil, &entities.ValidationError{
			Reason: fmt.Sprintf("session %s is bound to a different knowledge base", sessionID),
		}
	}

	response, sources := s.compose(ctx, jobID, sess.Messages, message)

	s.sessions.Update(sessionID, func(cs *entities.ChatSession) {
		cs.Messages = append(cs.Messages,
			entities.Message{Role: entities.RoleUser, Content: message, Timestamp: time.Now()},
			entities.Message{Role: entities.RoleAssistant, Content: response, Timestamp: time.Now(), Sources: sources},
		)
	})

	return &service.Result{SessionID: sessionID, Response: response, Sources: sources}, nil
}

// compose retrieves grounding context and generates the answer. It
// never returns an error: every failure path degrades to a fallback
// answer so the exchange still lands in the session history.
func (s *Svc) compose(ctx context.Context, jobID string, history []entities.Message, query string) (string, []entities.SourceCitation) {
	chunks, err := s.retr.Retrieve(ctx, jobID, query, s.cfg.TopK)
	if err != nil {
		log.Printf("[chat] retrieval for job %s failed: %v", jobID, err)
		return retrievalFallback, nil
	}
	if len(chunks) == 0 {
		return noContextAnswer, nil
	}

	prompt := buildPrompt(chunks, tail(history, s.cfg.HistoryWindow), query, s.cfg.MaxPromptChars)
	response, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		log.Printf("[chat] generation for job %s failed: %v", jobID, err)
		return generationFallback, nil
	}
	return response, citations(chunks)
}

func (s *Svc) History(sessionID string) []entities.Message {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return []entities.Message{}
	}
	out := make([]entities.Message, len(sess.Messages))
	copy(out, sess.Messages)
	return out
}

func (s *Svc) Clear(sessionID string) {
	s.sessions.Update(sessionID, func(cs *entities.ChatSession) {
		cs.Messages = nil
	})
}

func (s *Svc) ActiveSessions() int { return s.sessions.Len() }

func (s *Svc) lockSession(sessionID string) *sessionLock {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()
	l.mu.Lock()
	return l
}

func (s *Svc) unlockSession(sessionID string, l *sessionLock) {
	l.mu.Unlock()
	s.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, sessionID)
	}
	s.mu.Unlock()
}

const promptInstructions = `Instructions:
1. Answer the question based ONLY on the provided context
2. Be specific and cite sources when possible
3. If the context doesn't contain the answer, say so
4. Keep your answer concise and relevant
5. Maintain conversation continuity if there's previous context
6. No special characters and response should be in plain text
Answer:`

func buildPrompt(chunks []entities.ScoredChunk, history []entities.Message, query string, maxChars int) string {
	var b strings.Builder
	b.WriteString("You are a helpful AI assistant answering questions based on provided documents.\n\n")
	b.WriteString("Context from documents:\n")
	for _, c := range chunks {
		fmt.Fprintf(&b, "[Source: %s, Relevance: %.2f]\n%s\n\n", c.SourceFilename, c.Score, c.Text)
	}
	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(string(m.Role)), m.Content)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "User Question: %s\n\n%s", query, promptInstructions)
	return squeeze(b.String(), maxChars)
}

// squeeze keeps the prompt under the generation service's input limit
// by truncating the context middle while keeping the question intact.
func squeeze(prompt string, maxChars int) string {
	if len(prompt) <= maxChars {
		return prompt
	}
	qi := strings.LastIndex(prompt, "User Question:")
	if qi <= 0 {
		return prompt[:runeBoundary(prompt, maxChars)]
	}
	question := prompt[qi:]
	available := maxChars - len(question) - 100
	if available < 0 {
		available = 0
	}
	context := prompt[:qi]
	if available < len(context) {
		context = context[:runeBoundary(context, available)] + "\n...[truncated]...\n"
	}
	return context + question
}

func runeBoundary(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func tail(messages []entities.Message, n int) []entities.Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

func citations(chunks []entities.ScoredChunk) []entities.SourceCitation {
	n := len(chunks)
	if n > maxCitations {
		n = maxCitations
	}
	out := make([]entities.SourceCitation, n)
	for i := 0; i < n; i++ {
		excerpt := chunks[i].Text
		if len(excerpt) > excerptLen {
			excerpt = excerpt[:runeBoundary(excerpt, excerptLen)] + "..."
		}
		out[i] = entities.SourceCitation{
			SourceFilename: chunks[i].SourceFilename,
			Excerpt:        excerpt,
			RelevanceScore: chunks[i].Score,
		}
	}
	return out
}
