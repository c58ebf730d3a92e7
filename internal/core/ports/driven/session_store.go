package driven

import "context"

// SessionStore is the key/value storage of one browser tab session.
// Values written here disappear when the tab session ends.
type SessionStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// SessionStoreFactory hands out the SessionStore of a tab session.
type SessionStoreFactory interface {
	// ForSession returns the store scoped to the given tab session ID.
	ForSession(sessionID string) SessionStore
}
