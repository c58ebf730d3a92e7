package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/waterapps/portal/internal/core/domain"
	"github.com/waterapps/portal/internal/core/ports/driven"
)

// Ensure MockSessionStore implements SessionStore
var _ driven.SessionStore = (*MockSessionStore)(nil)

// MockSessionStore is an in-memory SessionStore for testing.
// It counts Delete calls so tests can assert on purge side effects.
type MockSessionStore struct {
	mu      sync.RWMutex
	items   map[string]string
	deletes map[string]int

	// Err, when set, is returned by every operation.
	Err error
}

// NewMockSessionStore creates a new MockSessionStore seeded with initial items
func NewMockSessionStore(initial map[string]string) *MockSessionStore {
	items := make(map[string]string, len(initial))
	for k, v := range initial {
		items[k] = v
	}
	return &MockSessionStore{
		items:   items,
		deletes: make(map[string]int),
	}
}

func (m *MockSessionStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return "", m.Err
	}
	value, ok := m.items[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return value, nil
}

func (m *MockSessionStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.items[key] = value
	return nil
}

func (m *MockSessionStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.deletes[key]++
	delete(m.items, key)
	return nil
}

// Value returns the raw value of key and whether it is present.
func (m *MockSessionStore) Value(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	return value, ok
}

// Deletes returns how many times key was deleted.
func (m *MockSessionStore) Deletes(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deletes[key]
}

// MockSessionStoreFactory hands out one MockSessionStore per session ID.
type MockSessionStoreFactory struct {
	mu     sync.Mutex
	stores map[string]*MockSessionStore
}

// NewMockSessionStoreFactory creates a new MockSessionStoreFactory
func NewMockSessionStoreFactory() *MockSessionStoreFactory {
	return &MockSessionStoreFactory{stores: make(map[string]*MockSessionStore)}
}

func (f *MockSessionStoreFactory) ForSession(sessionID string) driven.SessionStore {
	return f.Store(sessionID)
}

// Store returns the concrete store of a session, creating it if needed.
func (f *MockSessionStoreFactory) Store(sessionID string) *MockSessionStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	store, ok := f.stores[sessionID]
	if !ok {
		store = NewMockSessionStore(nil)
		f.stores[sessionID] = store
	}
	return store
}

// Sessions returns the IDs of every session handed out so far.
func (f *MockSessionStoreFactory) Sessions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.stores))
	for id := range f.stores {
		ids = append(ids, id)
	}
	return ids
}

// ErrStoreUnavailable is a canned storage failure for tests.
var ErrStoreUnavailable = errors.New("store unavailable")
