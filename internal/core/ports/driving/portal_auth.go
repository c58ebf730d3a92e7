package driving

import (
	"context"

	"github.com/waterapps/portal/internal/core/domain"
)

// PortalAuthService drives the portal login lifecycle for one browser tab.
// An instance is bound to the tab's session storage and to the navigation of
// the current request.
type PortalAuthService interface {
	// Config returns the resolved configuration.
	Config() domain.AuthConfig

	// IsConfigured reports whether SSO login is available.
	IsConfigured() bool

	// StartLogin generates PKCE and state, stores them, and navigates to the
	// identity provider's authorize endpoint.
	StartLogin(ctx context.Context, opts domain.StartLoginOptions) error

	// HandleCallbackIfPresent completes a login when the current location
	// carries an authorization response. It reports Handled=false otherwise.
	HandleCallbackIfPresent(ctx context.Context) (*domain.CallbackResult, error)

	// GetTokens returns the stored token record, or nil when absent or expired.
	GetTokens(ctx context.Context) *domain.TokenRecord

	// GetCurrentUser returns the user of the stored id_token, or nil.
	GetCurrentUser(ctx context.Context) *domain.User

	// SignOut clears the session and navigates to the provider logout page.
	SignOut(ctx context.Context) error

	// RequireAuth guards a protected page.
	RequireAuth(ctx context.Context, opts domain.RequireAuthOptions) *domain.GuardResult

	// ClearTokens removes the tokens and any pending login state.
	ClearTokens(ctx context.Context) error

	// SignInWithPassword signs in through preview password mode.
	// It is a low-assurance gate for environments without SSO and must not be
	// treated as authentication.
	SignInWithPassword(ctx context.Context, email, password string) (*domain.PasswordSignInResult, error)
}
