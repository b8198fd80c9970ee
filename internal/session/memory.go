package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// record is one session plus its own lock. Holding the per-record lock
// while appending serializes same-session writes without blocking other
// sessions.
type record struct {
	mu   sync.Mutex
	sess Session
}

// MemoryStore is the default in-process conversation store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*record
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*record),
		now:     time.Now,
	}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, sessionID, role, content string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if !ValidRole(role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	rec := s.getOrCreate(sessionID)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	now := s.now()
	rec.sess.Messages = append(rec.sess.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	rec.sess.UpdatedAt = now
	return nil
}

func (s *MemoryStore) getOrCreate(sessionID string) *record {
	s.mu.RLock()
	rec, ok := s.records[sessionID]
	s.mu.RUnlock()
	if ok {
		return rec
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok = s.records[sessionID]; ok {
		return rec
	}
	now := s.now()
	rec = &record{sess: Session{ID: sessionID, CreatedAt: now, UpdatedAt: now}}
	s.records[sessionID] = rec
	return rec
}

// History implements Store.
func (s *MemoryStore) History(_ context.Context, sessionID string, limit int) ([]Message, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}

	s.mu.RLock()
	rec, ok := s.records[sessionID]
	s.mu.RUnlock()
	if !ok {
		return []Message{}, nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	msgs := rec.sess.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}

	s.mu.RLock()
	rec, ok := s.records[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, sessionID)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := rec.sess
	out.Messages = make([]Message, len(rec.sess.Messages))
	copy(out.Messages, rec.sess.Messages)
	return &out, nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[sessionID]
	delete(s.records, sessionID)
	return ok, nil
}
