package http

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"

	"github.com/waterapps/portal/internal/core/ports/driven"
)

const (
	// TabCookieName is the browser-session cookie that identifies a tab session.
	TabCookieName = "waterapps_portal_tab"

	tabIDKey   = "tab"
	tabIDBytes = 16
)

// MinSessionSecretLength is the shortest secret accepted for cookie keys.
const MinSessionSecretLength = 16

// TabSessions issues and reads the tab-session cookie.
type TabSessions struct {
	store  *sessions.CookieStore
	random driven.RandomSource
}

// NewTabSessions derives the cookie hash and encryption keys from secret.
// The cookie lives until the browser session ends.
func NewTabSessions(secret string, secure bool, random driven.RandomSource) (*TabSessions, error) {
	if len(secret) < MinSessionSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", MinSessionSecretLength)
	}

	hashKey, err := deriveKey(secret, "waterapps-portal cookie hash", 32)
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(secret, "waterapps-portal cookie encryption", 32)
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &TabSessions{store: store, random: random}, nil
}

// TabID returns the tab id of the request, issuing a new cookie when the
// request has none or carries one that no longer decodes.
func (t *TabSessions) TabID(w http.ResponseWriter, r *http.Request) (string, error) {
	// A decode error still yields a fresh session.
	session, _ := t.store.Get(r, TabCookieName)
	if session == nil {
		return "", errors.New("tab session unavailable")
	}

	if id, ok := session.Values[tabIDKey].(string); ok && id != "" {
		return id, nil
	}

	raw, err := t.random.Bytes(tabIDBytes)
	if err != nil {
		return "", fmt.Errorf("generate tab id: %w", err)
	}
	id := base64.RawURLEncoding.EncodeToString(raw)
	session.Values[tabIDKey] = id
	if err := session.Save(r, w); err != nil {
		return "", fmt.Errorf("save tab session: %w", err)
	}
	return id, nil
}

func deriveKey(secret, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}
