// Package session persists conversation history per session.
//
// Two implementations back one Store contract: MemoryStore is the default
// in-process store, PGStore persists to Postgres. Both guarantee that
// appends within a single session are serialized, so concurrent requests
// against the same session cannot interleave history.
package session

import (
	"context"
	"errors"
	"time"
)

// Message roles. Alternation is not enforced: callers may append two user
// messages in a row and the store must tolerate it.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Sentinel errors, checked with errors.Is.
var (
	// ErrSessionNotFound indicates the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptySessionID indicates a store call without a session ID.
	ErrEmptySessionID = errors.New("empty session id")

	// ErrInvalidRole indicates a role outside user/assistant.
	ErrInvalidRole = errors.New("invalid message role")
)

// Message is one conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a full conversation record. Messages are ordered by
// insertion, oldest first.
type Session struct {
	ID        string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the conversation persistence contract.
type Store interface {
	// Append adds a message, creating the session if needed (upsert).
	// Appends within one session are serialized by the implementation.
	Append(ctx context.Context, sessionID, role, content string) error

	// History returns the most recent limit messages, oldest first.
	// A session with no messages yields an empty slice, not an error.
	// limit <= 0 means no limit.
	History(ctx context.Context, sessionID string, limit int) ([]Message, error)

	// Get returns the full session record.
	// Returns ErrSessionNotFound for unknown sessions.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Clear removes a session and its messages. The bool reports whether
	// the session existed.
	Clear(ctx context.Context, sessionID string) (bool, error)
}

// ValidRole reports whether role is one of the accepted message roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}
