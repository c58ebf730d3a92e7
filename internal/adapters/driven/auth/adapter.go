package auth

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/waterapps/portal/internal/core/domain"
	"github.com/waterapps/portal/internal/core/ports/driven"
)

// Ensure Adapter implements TokenCodec
var _ driven.TokenCodec = (*Adapter)(nil)

// previewClaims is the payload of a preview-password id_token
type previewClaims struct {
	Email    string `json:"email"`
	AuthMode string `json:"auth_mode"`
	jwt.RegisteredClaims
}

// Adapter reads and writes id_tokens using golang-jwt.
// Payloads are decoded without signature verification: tokens only ever
// arrive from the same-origin token exchange or from MintPreviewToken.
type Adapter struct {
	parser *jwt.Parser
}

// NewAdapter creates a new token codec
func NewAdapter() *Adapter {
	return &Adapter{
		parser: jwt.NewParser(jwt.WithPaddingAllowed()),
	}
}

// MintPreviewToken creates an unsigned token carrying the preview claims
func (a *Adapter) MintPreviewToken(claims *domain.PreviewClaims) (string, error) {
	pc := previewClaims{
		Email:    claims.Email,
		AuthMode: claims.AuthMode,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Unix(claims.IssuedAt, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(claims.ExpiresAt, 0)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodNone, pc)
	return token.SignedString(jwt.UnsafeAllowNoneSignatureType)
}

// DecodePayload decodes the second segment of a token as a JSON object.
// Missing base64 padding is tolerated.
func (a *Adapter) DecodePayload(token string) (map[string]any, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("token has %d segments", len(parts))
	}

	data, err := a.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	var claims map[string]any
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	if claims == nil {
		return nil, fmt.Errorf("payload is not an object")
	}
	return claims, nil
}
