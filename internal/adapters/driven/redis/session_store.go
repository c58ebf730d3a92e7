package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/waterapps/portal/internal/core/domain"
	"github.com/waterapps/portal/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.SessionStoreFactory = (*SessionStores)(nil)
	_ driven.SessionStore        = (*SessionStore)(nil)
)

// tabPrefix namespaces the hash holding one tab session's values
const tabPrefix = "portal:tab:"

// SessionStores hands out Redis-backed tab session stores.
// Each tab session is a single hash whose TTL is refreshed on every write,
// so an idle tab expires on its own.
type SessionStores struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStores creates a new Redis-backed SessionStoreFactory
func NewSessionStores(client *redis.Client, ttl time.Duration) *SessionStores {
	return &SessionStores{client: client, ttl: ttl}
}

// ForSession returns the store of one tab session
func (f *SessionStores) ForSession(sessionID string) driven.SessionStore {
	return &SessionStore{
		client: f.client,
		key:    tabPrefix + sessionID,
		ttl:    f.ttl,
	}
}

// Ping checks the connection
func (f *SessionStores) Ping(ctx context.Context) error {
	return f.client.Ping(ctx).Err()
}

// SessionStore implements driven.SessionStore for one tab session
type SessionStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// Get retrieves a value
func (s *SessionStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// Set stores a value and refreshes the tab session TTL
func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key, key, value)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value
func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.HDel(ctx, s.key, key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
