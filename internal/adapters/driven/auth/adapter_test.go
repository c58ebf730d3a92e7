package auth

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/waterapps/portal/internal/core/domain"
)

func TestNewAdapter(t *testing.T) {
	adapter := NewAdapter()
	if adapter == nil || adapter.parser == nil {
		t.Fatal("expected non-nil adapter with parser")
	}
}

func TestMintPreviewToken(t *testing.T) {
	adapter := NewAdapter()

	token, err := adapter.MintPreviewToken(&domain.PreviewClaims{
		Email:     "varun@waterapps.com.au",
		AuthMode:  domain.AuthModePreviewPassword,
		IssuedAt:  1_700_000_000,
		ExpiresAt: 1_700_043_200,
	})
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(parts))
	}
	if parts[2] != "" {
		t.Errorf("expected empty signature segment, got %q", parts[2])
	}
	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		t.Fatalf("failed to decode header: %v", err)
	}
	if !strings.Contains(string(header), `"alg":"none"`) {
		t.Errorf("expected unsigned header, got %s", header)
	}

	claims, err := adapter.DecodePayload(token)
	if err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if claims["email"] != "varun@waterapps.com.au" {
		t.Errorf("unexpected email claim %v", claims["email"])
	}
	if claims["auth_mode"] != "preview_password" {
		t.Errorf("unexpected auth_mode claim %v", claims["auth_mode"])
	}
	if claims["iat"] != float64(1_700_000_000) {
		t.Errorf("unexpected iat claim %v", claims["iat"])
	}
	if claims["exp"] != float64(1_700_043_200) {
		t.Errorf("unexpected exp claim %v", claims["exp"])
	}
}

func TestDecodePayload(t *testing.T) {
	adapter := NewAdapter()
	raw := `{"email":"foo@bar.com","cognito:username":"foo"}`

	testCases := map[string]string{
		"unpadded":  "h." + base64.RawURLEncoding.EncodeToString([]byte(raw)) + ".sig",
		"padded":    "h." + base64.URLEncoding.EncodeToString([]byte(raw)) + ".sig",
		"two parts": "h." + base64.RawURLEncoding.EncodeToString([]byte(raw)),
	}

	for name, token := range testCases {
		t.Run(name, func(t *testing.T) {
			claims, err := adapter.DecodePayload(token)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if claims["email"] != "foo@bar.com" {
				t.Errorf("unexpected email claim %v", claims["email"])
			}
		})
	}
}

func TestDecodePayload_Malformed(t *testing.T) {
	adapter := NewAdapter()

	testCases := []string{
		"",
		"not-a-jwt",
		"header.!!!.sig",
		"header." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".sig",
		"header." + base64.RawURLEncoding.EncodeToString([]byte("[1,2]")) + ".sig",
		"header." + base64.RawURLEncoding.EncodeToString([]byte("null")) + ".sig",
	}

	for _, tc := range testCases {
		if _, err := adapter.DecodePayload(tc); err == nil {
			t.Errorf("expected error for %q", tc)
		}
	}
}
