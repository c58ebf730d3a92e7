package services

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/waterapps/portal/internal/core/domain"
	"github.com/waterapps/portal/internal/core/ports/driven"
)

const (
	// pkceVerifierBytes yields a 64-character verifier.
	pkceVerifierBytes = 48
	stateBytes        = 24

	pkceMethodS256 = "S256"
)

// randomString returns n random bytes encoded as unpadded base64url.
func randomString(random driven.RandomSource, n int) (string, error) {
	b, err := random.Bytes(n)
	if err != nil {
		return "", err
	}
	if len(b) != n {
		return "", fmt.Errorf("random source returned %d bytes, want %d", len(b), n)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// generateCodeChallenge creates a PKCE code challenge from a verifier (S256 method).
func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// newPKCEChallenge creates a fresh verifier/challenge pair.
func newPKCEChallenge(random driven.RandomSource) (*domain.PKCEChallenge, error) {
	verifier, err := randomString(random, pkceVerifierBytes)
	if err != nil {
		return nil, fmt.Errorf("generate code verifier: %w", err)
	}
	return &domain.PKCEChallenge{
		Verifier:  verifier,
		Challenge: generateCodeChallenge(verifier),
		Method:    pkceMethodS256,
	}, nil
}
