package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists conversations to Postgres. Same-session appends are
// serialized with a transaction-scoped advisory lock keyed on the session
// ID, so two concurrent requests for one session cannot interleave their
// message pairs.
type PGStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPGStore creates a Postgres-backed store. The schema must already be
// migrated (see db/migrations).
func NewPGStore(pool *pgxpool.Pool, logger *slog.Logger) (*PGStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PGStore{pool: pool, logger: logger}, nil
}

// Append implements Store.
func (s *PGStore) Append(ctx context.Context, sessionID, role, content string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if !ValidRole(role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Advisory lock serializes appends for this session until commit.
	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, sessionID); err != nil {
		return fmt.Errorf("acquiring session lock: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO sessions (session_id, created_at, updated_at)
		VALUES ($1, now(), now())
		ON CONFLICT (session_id) DO UPDATE SET updated_at = now()`,
		sessionID); err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO messages (session_id, role, content, created_at)
		VALUES ($1, $2, $3, now())`,
		sessionID, role, content); err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing append: %w", err)
	}
	return nil
}

// History implements Store.
func (s *PGStore) History(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}

	var rows pgx.Rows
	var err error
	if limit > 0 {
		// Newest N selected first, then restored to append order.
		rows, err = s.pool.Query(ctx, `
			SELECT role, content, created_at FROM (
				SELECT id, role, content, created_at
				FROM messages
				WHERE session_id = $1
				ORDER BY id DESC
				LIMIT $2
			) recent
			ORDER BY id ASC`, sessionID, limit)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT role, content, created_at
			FROM messages
			WHERE session_id = $1
			ORDER BY id ASC`, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return msgs, nil
}

// Get implements Store.
func (s *PGStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}

	sess := &Session{ID: sessionID}
	err := s.pool.QueryRow(ctx, `
		SELECT created_at, updated_at FROM sessions WHERE session_id = $1`,
		sessionID).Scan(&sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	sess.Messages, err = s.History(ctx, sessionID, 0)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Clear implements Store. Messages cascade with the session row.
func (s *PGStore) Clear(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, ErrEmptySessionID
	}

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return false, fmt.Errorf("deleting session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
