package mocks

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/waterapps/portal/internal/core/domain"
	"github.com/waterapps/portal/internal/core/ports/driven"
)

// Ensure MockTokenCodec implements TokenCodec
var _ driven.TokenCodec = (*MockTokenCodec)(nil)

// MockTokenCodec builds unsigned "header.payload.signature" tokens.
// NOT secure - only for testing.
type MockTokenCodec struct{}

// NewMockTokenCodec creates a new MockTokenCodec
func NewMockTokenCodec() *MockTokenCodec {
	return &MockTokenCodec{}
}

// MintPreviewToken encodes the preview claims as an unsigned token
func (m *MockTokenCodec) MintPreviewToken(claims *domain.PreviewClaims) (string, error) {
	return MakeJWT(map[string]any{
		"email":     claims.Email,
		"auth_mode": claims.AuthMode,
		"iat":       claims.IssuedAt,
		"exp":       claims.ExpiresAt,
	}), nil
}

// DecodePayload decodes the middle segment of a token
func (m *MockTokenCodec) DecodePayload(token string) (map[string]any, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("token has %d segments", len(parts))
	}
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	var claims map[string]any
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return claims, nil
}

// MakeJWT builds an unsigned token carrying payload.
func MakeJWT(payload map[string]any) string {
	encode := func(v any) string {
		data, _ := json.Marshal(v)
		return base64.RawURLEncoding.EncodeToString(data)
	}
	return encode(map[string]string{"alg": "none", "typ": "JWT"}) + "." + encode(payload) + ".signature"
}
