package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/waterapps/portal/internal/core/domain"
	"github.com/waterapps/portal/internal/core/ports/driven"
	"github.com/waterapps/portal/internal/core/ports/driving"
)

// Ensure portalAuthService implements PortalAuthService
var _ driving.PortalAuthService = (*portalAuthService)(nil)

// defaultExpiresIn applies when the token endpoint omits expires_in.
const defaultExpiresIn = 3600

// callbackParams are removed from the visible URL once a callback is processed.
var callbackParams = []string{"code", "state", "error", "error_description"}

// PortalAuthServiceConfig holds the collaborators of one portal auth service.
type PortalAuthServiceConfig struct {
	// Config is the unresolved auth configuration. Defaults are filled in
	// against the navigator's origin.
	Config domain.AuthConfig

	// Store is the session storage of the current tab.
	Store driven.SessionStore

	// Navigator exposes and changes the current location.
	Navigator driven.Navigator

	// Random provides PKCE and state entropy.
	Random driven.RandomSource

	// TokenEndpoint exchanges authorization codes.
	TokenEndpoint driven.TokenEndpoint

	// Codec decodes id_tokens and mints preview tokens.
	Codec driven.TokenCodec

	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// portalAuthService implements the PortalAuthService interface.
type portalAuthService struct {
	cfg      domain.AuthConfig
	store    driven.SessionStore
	nav      driven.Navigator
	random   driven.RandomSource
	endpoint driven.TokenEndpoint
	codec    driven.TokenCodec
	logger   *slog.Logger
	now      func() time.Time
}

// NewPortalAuthService creates a portal auth service for one tab and request.
func NewPortalAuthService(cfg PortalAuthServiceConfig) driving.PortalAuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	origin := ""
	if loc := cfg.Navigator.Location(); loc != nil {
		origin = loc.Scheme + "://" + loc.Host
	}

	return &portalAuthService{
		cfg:      cfg.Config.WithDefaults(origin),
		store:    cfg.Store,
		nav:      cfg.Navigator,
		random:   cfg.Random,
		endpoint: cfg.TokenEndpoint,
		codec:    cfg.Codec,
		logger:   logger,
		now:      now,
	}
}

func (s *portalAuthService) Config() domain.AuthConfig {
	return s.cfg
}

func (s *portalAuthService) IsConfigured() bool {
	return s.cfg.IsConfigured()
}

// StartLogin stores a fresh verifier, state, and post-login redirect, then
// navigates to the authorize endpoint.
func (s *portalAuthService) StartLogin(ctx context.Context, opts domain.StartLoginOptions) error {
	if !s.cfg.IsConfigured() {
		return s.configurationError()
	}

	pkce, err := newPKCEChallenge(s.random)
	if err != nil {
		return err
	}
	state, err := randomString(s.random, stateBytes)
	if err != nil {
		return fmt.Errorf("generate state: %w", err)
	}

	redirect := opts.PostLoginRedirect
	if redirect == "" {
		redirect = s.cfg.PostLoginRedirectPath
	}

	if err := s.store.Set(ctx, domain.StorageKeyPKCEVerifier, pkce.Verifier); err != nil {
		return fmt.Errorf("store code verifier: %w", err)
	}
	if err := s.store.Set(ctx, domain.StorageKeyOAuthState, state); err != nil {
		return fmt.Errorf("store state: %w", err)
	}
	if err := s.store.Set(ctx, domain.StorageKeyPostLoginRedirect, redirect); err != nil {
		return fmt.Errorf("store post-login redirect: %w", err)
	}

	authorizeURL, err := buildURL(s.cfg.CognitoDomain+"/oauth2/authorize", [][2]string{
		{"client_id", s.cfg.AppClientID},
		{"response_type", "code"},
		{"scope", strings.Join(s.cfg.Scopes, " ")},
		{"redirect_uri", s.cfg.RedirectURI},
		{"state", state},
		{"code_challenge_method", pkce.Method},
		{"code_challenge", pkce.Challenge},
	})
	if err != nil {
		return fmt.Errorf("build authorize url: %w", err)
	}

	s.nav.Assign(authorizeURL)
	return nil
}

// HandleCallbackIfPresent processes an authorization response on the current
// location. The state check always runs before any network call.
func (s *portalAuthService) HandleCallbackIfPresent(ctx context.Context) (*domain.CallbackResult, error) {
	if !s.cfg.IsConfigured() {
		return &domain.CallbackResult{Handled: false}, nil
	}

	loc := s.nav.Location()
	query := loc.Query()

	if providerErr := query.Get("error"); providerErr != "" {
		msg := providerErr
		if desc := query.Get("error_description"); desc != "" {
			msg += ": " + decodeDescription(desc)
		}
		return &domain.CallbackResult{Handled: true, Success: false, Error: msg}, nil
	}

	code := query.Get("code")
	if code == "" {
		return &domain.CallbackResult{Handled: false}, nil
	}

	expected, err := s.read(ctx, domain.StorageKeyOAuthState)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if expected == "" || expected != query.Get("state") {
		s.discardLoginAttempt(ctx)
		return &domain.CallbackResult{Handled: true, Success: false, Error: domain.ErrInvalidState.Error()}, nil
	}

	if _, err := s.exchangeCode(ctx, code); err != nil {
		s.discardLoginAttempt(ctx)
		return nil, err
	}
	s.discardLoginAttempt(ctx)

	redirect, err := s.read(ctx, domain.StorageKeyPostLoginRedirect)
	if err != nil {
		s.logger.Warn("read post-login redirect", "error", err)
	}
	if redirect == "" {
		redirect = s.cfg.PostLoginRedirectPath
	}
	if err := s.store.Delete(ctx, domain.StorageKeyPostLoginRedirect); err != nil {
		s.logger.Warn("delete post-login redirect", "error", err)
	}

	s.nav.ReplaceState(stripCallbackParams(loc))

	return &domain.CallbackResult{Handled: true, Success: true, RedirectPath: redirect}, nil
}

// GetTokens returns the stored record when it is present, well-formed, and
// unexpired. Anything else is purged and reported as absent.
func (s *portalAuthService) GetTokens(ctx context.Context) *domain.TokenRecord {
	raw, err := s.read(ctx, domain.StorageKeyTokens)
	if err != nil {
		s.logger.Warn("read token record", "error", err)
		return nil
	}
	if raw == "" {
		return nil
	}

	var record domain.TokenRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil || record.IDToken == "" {
		s.purgeTokens(ctx)
		return nil
	}
	if record.IsExpired(s.now()) {
		s.purgeTokens(ctx)
		return nil
	}
	return &record
}

func (s *portalAuthService) GetCurrentUser(ctx context.Context) *domain.User {
	tokens := s.GetTokens(ctx)
	if tokens == nil {
		return nil
	}

	payload, err := s.codec.DecodePayload(tokens.IDToken)
	if err != nil || payload == nil {
		payload = map[string]any{}
	}

	email := domain.DefaultUserEmail
	if v, ok := payload["email"].(string); ok && v != "" {
		email = v
	} else if v, ok := payload["cognito:username"].(string); ok && v != "" {
		email = v
	}

	return &domain.User{Email: email, Payload: payload}
}

// SignOut clears the session and leaves through the provider's logout page.
// Navigation happens even when clearing fails.
func (s *portalAuthService) SignOut(ctx context.Context) error {
	clearErr := s.ClearTokens(ctx)

	if !s.cfg.IsConfigured() {
		s.nav.Assign(domain.LoginPage)
		return clearErr
	}

	logoutURL, err := buildURL(s.cfg.CognitoDomain+"/logout", [][2]string{
		{"client_id", s.cfg.AppClientID},
		{"logout_uri", s.cfg.LogoutRedirectURI},
	})
	if err != nil {
		s.nav.Assign(domain.LoginPage)
		return errors.Join(clearErr, fmt.Errorf("build logout url: %w", err))
	}
	s.nav.Assign(logoutURL)
	return clearErr
}

func (s *portalAuthService) RequireAuth(ctx context.Context, opts domain.RequireAuthOptions) *domain.GuardResult {
	if !s.cfg.IsConfigured() {
		return &domain.GuardResult{Allowed: true, Reason: domain.GuardReasonCognitoDisabled}
	}
	if s.GetTokens(ctx) != nil {
		return &domain.GuardResult{Allowed: true, Reason: domain.GuardReasonAuthenticated}
	}

	target := opts.RedirectTarget
	if target == "" {
		loc := s.nav.Location()
		target = loc.EscapedPath()
		if loc.Fragment != "" {
			target += "#" + loc.EscapedFragment()
		}
	}
	if err := s.store.Set(ctx, domain.StorageKeyPostLoginRedirect, target); err != nil {
		s.logger.Warn("store post-login redirect", "error", err)
	}

	s.nav.Assign(domain.LoginPage)
	return &domain.GuardResult{Allowed: false, Reason: domain.GuardReasonRedirectedToLogin}
}

// ClearTokens removes the token record and any pending PKCE state.
// The post-login redirect is kept.
func (s *portalAuthService) ClearTokens(ctx context.Context) error {
	var errs []error
	for _, key := range []string{domain.StorageKeyTokens, domain.StorageKeyPKCEVerifier, domain.StorageKeyOAuthState} {
		if err := s.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// SignInWithPassword accepts any non-empty password for an allowed email
// domain. It is a preview convenience, not authentication.
func (s *portalAuthService) SignInWithPassword(ctx context.Context, email, password string) (*domain.PasswordSignInResult, error) {
	if !s.cfg.PreviewPasswordLoginEnabled {
		return &domain.PasswordSignInResult{Success: false, Reason: domain.PasswordReasonDisabled}, nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	emailDomain := ""
	if at := strings.LastIndex(email, "@"); at >= 0 {
		emailDomain = email[at+1:]
	}
	if !s.cfg.AllowsPreviewDomain(emailDomain) {
		return &domain.PasswordSignInResult{Success: false, Reason: domain.PasswordReasonDomainNotAllowed}, nil
	}
	if password == "" {
		return &domain.PasswordSignInResult{Success: false, Reason: domain.PasswordReasonPasswordRequired}, nil
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(s.cfg.PreviewSessionHours * float64(time.Hour)))

	idToken, err := s.codec.MintPreviewToken(&domain.PreviewClaims{
		Email:     email,
		AuthMode:  domain.AuthModePreviewPassword,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("mint preview token: %w", err)
	}

	record := &domain.TokenRecord{
		IDToken:   idToken,
		TokenType: "Bearer",
		ExpiresAt: expiresAt.Unix(),
	}
	if err := s.saveTokens(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("preview password sign-in", "email_domain", emailDomain)

	return &domain.PasswordSignInResult{
		Success:      true,
		Email:        email,
		RedirectPath: s.cfg.PostLoginRedirectPath,
	}, nil
}

// exchangeCode trades an authorization code for tokens and persists them.
func (s *portalAuthService) exchangeCode(ctx context.Context, code string) (*domain.TokenRecord, error) {
	verifier, err := s.read(ctx, domain.StorageKeyPKCEVerifier)
	if err != nil {
		return nil, fmt.Errorf("read code verifier: %w", err)
	}
	if verifier == "" {
		return nil, domain.ErrMissingVerifier
	}

	resp, err := s.endpoint.ExchangeCode(ctx, driven.CodeExchange{
		TokenURL:     s.cfg.CognitoDomain + "/oauth2/token",
		ClientID:     s.cfg.AppClientID,
		Code:         code,
		RedirectURI:  s.cfg.RedirectURI,
		CodeVerifier: verifier,
	})
	if err != nil {
		return nil, err
	}

	expiresIn := resp.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}
	tokenType := resp.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	record := &domain.TokenRecord{
		AccessToken:  resp.AccessToken,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    tokenType,
		ExpiresAt:    s.now().Unix() + expiresIn,
	}
	if err := s.saveTokens(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *portalAuthService) saveTokens(ctx context.Context, record *domain.TokenRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal token record: %w", err)
	}
	if err := s.store.Set(ctx, domain.StorageKeyTokens, string(data)); err != nil {
		return fmt.Errorf("store token record: %w", err)
	}
	return nil
}

func (s *portalAuthService) purgeTokens(ctx context.Context) {
	if err := s.store.Delete(ctx, domain.StorageKeyTokens); err != nil {
		s.logger.Warn("purge token record", "error", err)
	}
}

// discardLoginAttempt removes the state and verifier of the current attempt.
func (s *portalAuthService) discardLoginAttempt(ctx context.Context) {
	for _, key := range []string{domain.StorageKeyOAuthState, domain.StorageKeyPKCEVerifier} {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("delete login attempt", "key", key, "error", err)
		}
	}
}

// read returns the value of key, or "" when it is absent.
func (s *portalAuthService) read(ctx context.Context, key string) (string, error) {
	value, err := s.store.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	return value, err
}

func (s *portalAuthService) configurationError() error {
	return &domain.ConfigurationError{Missing: s.cfg.MissingSettings()}
}

// buildURL appends the non-empty params to base.
func buildURL(base string, params [][2]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	query := u.Query()
	for _, p := range params {
		if p[1] != "" {
			query.Set(p[0], p[1])
		}
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// decodeDescription undoes a second layer of percent-encoding some providers
// apply to error_description.
func decodeDescription(desc string) string {
	decoded, err := url.PathUnescape(desc)
	if err != nil {
		return desc
	}
	return decoded
}

// stripCallbackParams returns the path, remaining query, and fragment of loc
// without the authorization response parameters.
func stripCallbackParams(loc *url.URL) string {
	query := loc.Query()
	for _, key := range callbackParams {
		query.Del(key)
	}

	target := loc.EscapedPath()
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	if loc.Fragment != "" {
		target += "#" + loc.EscapedFragment()
	}
	return target
}
