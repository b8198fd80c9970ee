// Package rag orchestrates a chat turn end to end: retrieve relevant
// provisions, assemble the prompt, generate the answer, persist the
// exchange, and respond with source citations.
//
// Degradation policy: retrieval and persistence failures are absorbed
// (logged, the turn continues), generation failures take the keyword
// fallback path with no sources. The only error surfaced to callers is
// an empty query.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pravnik0/pravnik/internal/answer"
	"github.com/pravnik0/pravnik/internal/index"
	"github.com/pravnik0/pravnik/internal/prompt"
	"github.com/pravnik0/pravnik/internal/session"
)

// ErrEmptyQuery rejects requests whose query is empty or whitespace.
var ErrEmptyQuery = errors.New("query must not be empty")

// DefaultSourceLimit caps how many citations a response carries.
const DefaultSourceLimit = 3

// Searcher retrieves scored documents for a query. Satisfied by both the
// in-memory index and the pgvector-backed index.
type Searcher interface {
	SearchText(ctx context.Context, query string, topK int) ([]index.Result, error)
}

// Response is the result of one chat turn.
type Response struct {
	// Text is the answer shown to the user. Never empty.
	Text string `json:"response"`

	// SessionID identifies the conversation, generated when the request
	// carried none.
	SessionID string `json:"session_id"`

	// Sources cites the retrieved documents as "Title - URL" lines. Empty
	// when the answer came from the fallback path.
	Sources []string `json:"sources"`
}

// Config wires a Pipeline.
type Config struct {
	Index     Searcher
	Store     session.Store
	Assembler *prompt.Assembler
	Generator answer.Generator
	Fallback  *answer.Fallback

	// TopK is how many documents retrieval requests. Must be positive.
	TopK int

	// SourceLimit caps response citations. Zero selects DefaultSourceLimit.
	SourceLimit int

	Logger *slog.Logger
}

// Pipeline runs the retrieval-augmented chat flow.
type Pipeline struct {
	index       Searcher
	store       session.Store
	assembler   *prompt.Assembler
	generator   answer.Generator
	fallback    *answer.Fallback
	topK        int
	sourceLimit int
	logger      *slog.Logger
}

// New creates a Pipeline. All collaborators except Logger are required.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Index == nil {
		return nil, fmt.Errorf("index is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if cfg.Assembler == nil {
		return nil, fmt.Errorf("prompt assembler is required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if cfg.Fallback == nil {
		return nil, fmt.Errorf("fallback is required")
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", cfg.TopK)
	}
	if cfg.SourceLimit <= 0 {
		cfg.SourceLimit = DefaultSourceLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Pipeline{
		index:       cfg.Index,
		store:       cfg.Store,
		assembler:   cfg.Assembler,
		generator:   cfg.Generator,
		fallback:    cfg.Fallback,
		topK:        cfg.TopK,
		sourceLimit: cfg.SourceLimit,
		logger:      cfg.Logger,
	}, nil
}

// GenerateResponse runs one chat turn. An empty sessionID starts a new
// conversation with a generated UUID. The returned Response always has
// non-empty Text; the only error is ErrEmptyQuery.
func (p *Pipeline) GenerateResponse(ctx context.Context, sessionID, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	results := p.retrieve(ctx, query)
	history := p.loadHistory(ctx, sessionID)
	assembled := p.assembler.Assemble(results, history, query)

	text, fellBack := p.generate(ctx, assembled, query)

	p.persist(ctx, sessionID, query, text)

	sources := []string{}
	if !fellBack {
		sources = citations(results, p.sourceLimit)
	}

	return &Response{
		Text:      text,
		SessionID: sessionID,
		Sources:   sources,
	}, nil
}

// retrieve searches the index. Failures degrade to an empty result set so
// the turn proceeds without context.
func (p *Pipeline) retrieve(ctx context.Context, query string) []index.Result {
	results, err := p.index.SearchText(ctx, query, p.topK)
	if err != nil {
		p.logger.Warn("retrieval degraded, continuing without context", "error", err)
		return nil
	}
	return results
}

// loadHistory reads the recent conversation window. Failures degrade to
// an empty history.
func (p *Pipeline) loadHistory(ctx context.Context, sessionID string) []session.Message {
	history, err := p.store.History(ctx, sessionID, p.assembler.HistoryLimit())
	if err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		p.logger.Warn("history read failed, continuing without history",
			"session_id", sessionID, "error", err)
		return nil
	}
	return history
}

// generate calls the model, falling back to the keyword table on any
// failure. The bool reports whether the fallback path was taken.
func (p *Pipeline) generate(ctx context.Context, assembled, query string) (string, bool) {
	text, err := p.generator.Generate(ctx, assembled)
	if err != nil {
		p.logger.Warn("generation unavailable, serving fallback answer", "error", err)
		return p.fallback.Answer(query), true
	}
	if text == "" {
		p.logger.Warn("generation returned empty text, serving fallback answer")
		return p.fallback.Answer(query), true
	}
	return text, false
}

// persist appends the exchange to the conversation store. Failures are
// logged and the answer is still returned.
func (p *Pipeline) persist(ctx context.Context, sessionID, query, text string) {
	if err := p.store.Append(ctx, sessionID, session.RoleUser, query); err != nil {
		p.logger.Error("persisting user message failed",
			"session_id", sessionID, "error", err)
		return
	}
	if err := p.store.Append(ctx, sessionID, session.RoleAssistant, text); err != nil {
		p.logger.Error("persisting assistant message failed",
			"session_id", sessionID, "error", err)
	}
}

// citations renders the top results as "Title - URL" lines.
func citations(results []index.Result, limit int) []string {
	if len(results) < limit {
		limit = len(results)
	}
	out := make([]string, 0, limit)
	for _, r := range results[:limit] {
		out = append(out, r.Source())
	}
	return out
}

// GetHistory returns up to limit recent messages for a session, oldest
// first. Unknown sessions yield an empty slice.
func (p *Pipeline) GetHistory(ctx context.Context, sessionID string, limit int) ([]session.Message, error) {
	if sessionID == "" {
		return nil, session.ErrEmptySessionID
	}
	msgs, err := p.store.History(ctx, sessionID, limit)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return []session.Message{}, nil
		}
		return nil, fmt.Errorf("get history: %w", err)
	}
	return msgs, nil
}

// ClearHistory removes a session and its messages. The bool reports
// whether the session existed.
func (p *Pipeline) ClearHistory(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, session.ErrEmptySessionID
	}
	existed, err := p.store.Clear(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("clear history: %w", err)
	}
	return existed, nil
}
