package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/waterapps/portal/internal/core/domain"
	"github.com/waterapps/portal/internal/core/ports/driven"
	"github.com/waterapps/portal/internal/core/ports/driven/mocks"
	"github.com/waterapps/portal/internal/core/ports/driving"
	"github.com/waterapps/portal/internal/core/services"
)

const (
	testPublicURL = "https://portal.waterapps.test"
	testIDPDomain = "https://auth.waterapps.test"
	testSecret    = "test-session-secret-0123456789"
)

func ssoConfig() domain.AuthConfig {
	return domain.AuthConfig{
		Enabled:       true,
		CognitoDomain: testIDPDomain,
		AppClientID:   "portal-client",
	}
}

func previewConfig() domain.AuthConfig {
	return domain.AuthConfig{
		PreviewPasswordLoginEnabled: true,
		PreviewAllowedEmailDomains:  []string{"waterapps.com.au"},
	}
}

// mockModerationService implements driving.ModerationService for testing
type mockModerationService struct {
	listFn     func(ctx context.Context, viewer *domain.Viewer) ([]*domain.Review, error)
	moderateFn func(ctx context.Context, viewer *domain.Viewer, id string, req domain.ModerationRequest) (*domain.ModerationResult, error)
}

func (m *mockModerationService) ListPending(ctx context.Context, viewer *domain.Viewer) ([]*domain.Review, error) {
	if m.listFn != nil {
		return m.listFn(ctx, viewer)
	}
	return nil, domain.ErrReviewAPINotConfigured
}

func (m *mockModerationService) Moderate(ctx context.Context, viewer *domain.Viewer, id string, req domain.ModerationRequest) (*domain.ModerationResult, error) {
	if m.moderateFn != nil {
		return m.moderateFn(ctx, viewer, id, req)
	}
	return nil, domain.ErrReviewAPINotConfigured
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

// testEnv is a server over in-memory collaborators with a one-tab cookie jar.
type testEnv struct {
	t          *testing.T
	server     *Server
	sessions   *mocks.MockSessionStoreFactory
	endpoint   *mocks.MockTokenEndpoint
	moderation *mockModerationService
	pinger     *mockPinger
	cookies    map[string]*http.Cookie
}

func newTestEnv(t *testing.T, cfg domain.AuthConfig) *testEnv {
	t.Helper()

	env := &testEnv{
		t:        t,
		sessions: mocks.NewMockSessionStoreFactory(),
		endpoint: mocks.NewMockTokenEndpoint(&driven.TokenResponse{
			AccessToken: "access-token",
			IDToken:     mocks.MakeJWT(map[string]any{"email": "jane@waterapps.com.au", "sub": "user-1"}),
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		}),
		moderation: &mockModerationService{},
		pinger:     &mockPinger{},
		cookies:    make(map[string]*http.Cookie),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	random := mocks.NewMockRandomSource()
	codec := mocks.NewMockTokenCodec()

	factory := func(store driven.SessionStore, nav driven.Navigator) driving.PortalAuthService {
		return services.NewPortalAuthService(services.PortalAuthServiceConfig{
			Config:        cfg,
			Store:         store,
			Navigator:     nav,
			Random:        random,
			TokenEndpoint: env.endpoint,
			Codec:         codec,
			Logger:        logger,
		})
	}

	tabs, err := NewTabSessions(testSecret, true, random)
	require.NoError(t, err)

	env.server, err = NewServer(Config{
		Host:           "127.0.0.1",
		Port:           0,
		Version:        "1.2.3",
		PublicURL:      testPublicURL,
		AllowedOrigins: []string{testPublicURL},
		Logger:         logger,
	}, factory, env.moderation, env.sessions, tabs, env.pinger)
	require.NoError(t, err)

	return env
}

// do sends a request carrying the jar's cookies and stores any new ones.
func (e *testEnv) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	e.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range e.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		e.cookies[c.Name] = c
	}
	return rec
}

func (e *testEnv) doJSON(method, target string, payload any) *httptest.ResponseRecorder {
	e.t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(e.t, err)

	req := httptest.NewRequest(method, target, strings.NewReader(string(data)))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range e.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

// tabStore returns the store of the jar's only tab.
func (e *testEnv) tabStore() *mocks.MockSessionStore {
	e.t.Helper()
	ids := e.sessions.Sessions()
	require.Len(e.t, ids, 1, "expected exactly one tab session")
	return e.sessions.Store(ids[0])
}

// signIn opens a tab and seeds it with a token record for payload.
func (e *testEnv) signIn(payload map[string]any) {
	e.t.Helper()

	e.do(http.MethodGet, "/portal-login.html", nil)
	record := domain.TokenRecord{
		AccessToken: "access-token",
		IDToken:     mocks.MakeJWT(payload),
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
	}
	data, err := json.Marshal(record)
	require.NoError(e.t, err)
	require.NoError(e.t, e.tabStore().Set(context.Background(), domain.StorageKeyTokens, string(data)))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

var errReviewNetwork = errors.New("dial tcp: connection refused")
