package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates the identity provider is not wired up
	ErrNotConfigured = errors.New("cognito is not configured")

	// ErrInvalidState indicates the OAuth state is missing or does not match
	ErrInvalidState = errors.New("Invalid or missing OAuth state. Start login again.")

	// ErrMissingVerifier indicates a callback arrived without a stored PKCE verifier
	ErrMissingVerifier = errors.New("Missing PKCE verifier in session. Start login again.")

	// ErrSSORequired indicates a preview-password session attempted an SSO-only action
	ErrSSORequired = errors.New("Preview password login cannot use the moderation API. Sign in with Cognito.")

	// ErrReviewAPINotConfigured indicates no review API base URL is set
	ErrReviewAPINotConfigured = errors.New("Review API base URL is not configured.")

	// ErrTokenUnavailable indicates the session has no bearer token
	ErrTokenUnavailable = errors.New("Authentication token unavailable. Please sign in again.")
)

// ConfigurationError is returned by OAuth operations when the identity
// provider is not configured. It matches ErrNotConfigured.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	msg := "Cognito is not configured yet. Update the portal auth configuration and enable it."
	if len(e.Missing) > 0 {
		msg += " Missing: " + strings.Join(e.Missing, ", ") + "."
	}
	return msg
}

// Is reports whether target is ErrNotConfigured.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrNotConfigured
}

// TokenExchangeError is returned when the token endpoint answers with a
// non-success status.
type TokenExchangeError struct {
	Status int
	Detail string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("Token exchange failed: %d %s", e.Status, e.Detail)
}

// ReviewAPIError is returned when the review API answers with a non-success status.
type ReviewAPIError struct {
	Status  int
	Message string
}

func (e *ReviewAPIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}
