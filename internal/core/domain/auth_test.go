package domain

import (
	"testing"
	"time"
)

func TestTokenRecordIsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name      string
		expiresAt int64
		expected  bool
	}{
		{"future", now.Unix() + 60, false},
		{"exactly now", now.Unix(), true},
		{"past", now.Unix() - 1, true},
		{"unset", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := &TokenRecord{IDToken: "x", ExpiresAt: tt.expiresAt}
			if record.IsExpired(now) != tt.expected {
				t.Errorf("expected IsExpired() = %v", tt.expected)
			}
		})
	}
}

func TestTokenRecordBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		record   *TokenRecord
		expected string
	}{
		{"nil record", nil, ""},
		{"id token preferred", &TokenRecord{AccessToken: "a", IDToken: "i"}, "i"},
		{"access token fallback", &TokenRecord{AccessToken: "a"}, "a"},
		{"empty", &TokenRecord{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.BearerToken(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUserAuthMode(t *testing.T) {
	var nilUser *User
	if nilUser.IsPreviewPassword() {
		t.Error("nil user should not be a preview session")
	}

	sso := &User{Email: "foo@bar.com", Payload: map[string]any{"email": "foo@bar.com"}}
	if sso.AuthMode() != "" || sso.IsPreviewPassword() {
		t.Error("SSO user should have no auth mode")
	}

	preview := &User{Payload: map[string]any{"auth_mode": "preview_password"}}
	if !preview.IsPreviewPassword() {
		t.Error("expected preview password session")
	}

	odd := &User{Payload: map[string]any{"auth_mode": 7}}
	if odd.AuthMode() != "" {
		t.Error("non-string auth_mode should be ignored")
	}
}
