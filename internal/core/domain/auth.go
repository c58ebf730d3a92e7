package domain

import "time"

// Session storage keys. Every key lives in the storage of one browser tab session.
const (
	StorageKeyPKCEVerifier      = "waterapps.portal.pkce_verifier"
	StorageKeyOAuthState        = "waterapps.portal.oauth_state"
	StorageKeyTokens            = "waterapps.portal.tokens"
	StorageKeyPostLoginRedirect = "waterapps.portal.post_login_redirect"
)

// AuthModePreviewPassword is the auth_mode claim carried by preview-password
// id tokens. Consumers use it to refuse privileged writes.
const AuthModePreviewPassword = "preview_password"

// DefaultUserEmail is shown when an id_token carries no usable identity claim.
const DefaultUserEmail = "Authenticated User"

// PKCEChallenge is the verifier/challenge pair of one login attempt.
type PKCEChallenge struct {
	Verifier  string
	Challenge string
	Method    string
}

// TokenRecord is the persisted result of a successful login.
type TokenRecord struct {
	AccessToken  string `json:"access_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresAt    int64  `json:"expires_at"` // epoch seconds
}

// IsExpired reports whether the record has reached its expiry.
func (t *TokenRecord) IsExpired(now time.Time) bool {
	return t.ExpiresAt <= now.Unix()
}

// BearerToken returns the token presented to downstream APIs.
func (t *TokenRecord) BearerToken() string {
	if t == nil {
		return ""
	}
	if t.IDToken != "" {
		return t.IDToken
	}
	return t.AccessToken
}

// User is derived from the id_token payload on every read.
type User struct {
	Email   string         `json:"email"`
	Payload map[string]any `json:"payload"`
}

// AuthMode returns the auth_mode claim, or "" for SSO sessions.
func (u *User) AuthMode() string {
	if u == nil {
		return ""
	}
	mode, _ := u.Payload["auth_mode"].(string)
	return mode
}

// IsPreviewPassword reports whether the user signed in through preview password mode.
func (u *User) IsPreviewPassword() bool {
	return u.AuthMode() == AuthModePreviewPassword
}

// StartLoginOptions customises StartLogin.
type StartLoginOptions struct {
	// PostLoginRedirect overrides the configured post-login path.
	PostLoginRedirect string
}

// RequireAuthOptions customises RequireAuth.
type RequireAuthOptions struct {
	// RedirectTarget is stored as the post-login destination.
	// Defaults to the current path and fragment.
	RedirectTarget string
}

// CallbackResult is the outcome of HandleCallbackIfPresent.
type CallbackResult struct {
	Handled      bool   `json:"handled"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	RedirectPath string `json:"redirectPath,omitempty"`
}

// Guard reasons returned by RequireAuth.
const (
	GuardReasonCognitoDisabled   = "cognito_disabled"
	GuardReasonAuthenticated     = "authenticated"
	GuardReasonRedirectedToLogin = "redirected_to_login"
)

// GuardResult is the outcome of RequireAuth. Allowed=false means protected
// content must not be rendered.
type GuardResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Reasons returned by SignInWithPassword.
const (
	PasswordReasonDisabled         = "preview_password_disabled"
	PasswordReasonDomainNotAllowed = "domain_not_allowed"
	PasswordReasonPasswordRequired = "password_required"
)

// PasswordSignInResult is the outcome of SignInWithPassword.
type PasswordSignInResult struct {
	Success      bool   `json:"success"`
	Reason       string `json:"reason,omitempty"`
	Email        string `json:"email,omitempty"`
	RedirectPath string `json:"redirectPath,omitempty"`
}

// PreviewClaims are the claims minted into a preview-password id_token.
type PreviewClaims struct {
	Email     string
	AuthMode  string
	IssuedAt  int64
	ExpiresAt int64
}

// Viewer is the authenticated principal of a request.
type Viewer struct {
	Tokens *TokenRecord
	User   *User
}
