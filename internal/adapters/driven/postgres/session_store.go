package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/waterapps/portal/internal/core/domain"
	"github.com/waterapps/portal/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.SessionStoreFactory = (*SessionStores)(nil)
	_ driven.SessionStore        = (*SessionStore)(nil)
)

// SessionStores hands out PostgreSQL-backed tab session stores.
// Rows carry an expiry that every write pushes forward for the whole tab;
// expired rows are invisible to reads and removed by Cleanup.
type SessionStores struct {
	db  *DB
	ttl time.Duration
	now func() time.Time
}

// NewSessionStores creates a new PostgreSQL-backed SessionStoreFactory
func NewSessionStores(db *DB, ttl time.Duration) *SessionStores {
	return &SessionStores{db: db, ttl: ttl, now: time.Now}
}

// ForSession returns the store of one tab session
func (f *SessionStores) ForSession(sessionID string) driven.SessionStore {
	return &SessionStore{stores: f, sessionID: sessionID}
}

// Cleanup deletes every expired row and reports how many were removed
func (f *SessionStores) Cleanup(ctx context.Context) (int64, error) {
	res, err := f.db.ExecContext(ctx, `DELETE FROM portal_session_values WHERE expires_at <= $1`, f.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup session values: %w", err)
	}
	return res.RowsAffected()
}

// Ping checks if the database is reachable
func (f *SessionStores) Ping(ctx context.Context) error {
	return f.db.Ping(ctx)
}

// SessionStore implements driven.SessionStore for one tab session
type SessionStore struct {
	stores    *SessionStores
	sessionID string
}

// Get retrieves an unexpired value
func (s *SessionStore) Get(ctx context.Context, key string) (string, error) {
	query := `
		SELECT value
		FROM portal_session_values
		WHERE session_id = $1 AND key = $2 AND expires_at > $3
	`

	var value string
	err := s.stores.db.QueryRowContext(ctx, query, s.sessionID, key, s.stores.now()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get session value: %w", err)
	}
	return value, nil
}

// Set upserts a value and extends the expiry of the whole tab session
func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	now := s.stores.now()
	expiresAt := now.Add(s.stores.ttl)

	return s.stores.db.Transaction(ctx, func(tx *sql.Tx) error {
		upsert := `
			INSERT INTO portal_session_values (session_id, key, value, expires_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (session_id, key) DO UPDATE SET
				value = EXCLUDED.value,
				expires_at = EXCLUDED.expires_at,
				updated_at = EXCLUDED.updated_at
		`
		if _, err := tx.ExecContext(ctx, upsert, s.sessionID, key, value, expiresAt, now); err != nil {
			return fmt.Errorf("set session value: %w", err)
		}

		touch := `UPDATE portal_session_values SET expires_at = $2 WHERE session_id = $1 AND expires_at > $3`
		if _, err := tx.ExecContext(ctx, touch, s.sessionID, expiresAt, now); err != nil {
			return fmt.Errorf("extend session: %w", err)
		}
		return nil
	})
}

// Delete removes a value
func (s *SessionStore) Delete(ctx context.Context, key string) error {
	_, err := s.stores.db.ExecContext(ctx,
		`DELETE FROM portal_session_values WHERE session_id = $1 AND key = $2`,
		s.sessionID, key,
	)
	if err != nil {
		return fmt.Errorf("delete session value: %w", err)
	}
	return nil
}
