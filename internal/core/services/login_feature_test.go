package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/waterapps/portal/internal/core/domain"
	"github.com/waterapps/portal/internal/core/ports/driven"
	"github.com/waterapps/portal/internal/core/ports/driven/mocks"
	"github.com/waterapps/portal/internal/core/ports/driving"
)

func TestLoginFeature(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeLoginScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Strict:   true,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

// loginWorld is one browser tab: its storage survives page loads, while the
// navigator and service are rebuilt for every page.
type loginWorld struct {
	cfg      domain.AuthConfig
	store    *mocks.MockSessionStore
	endpoint *mocks.MockTokenEndpoint
	nav      *mocks.MockNavigator
	svc      driving.PortalAuthService

	callback *domain.CallbackResult
	password *domain.PasswordSignInResult
	guard    *domain.GuardResult
}

func (w *loginWorld) visit(href string) {
	w.nav = mocks.NewMockNavigator(href)
	w.svc = NewPortalAuthService(PortalAuthServiceConfig{
		Config:        w.cfg,
		Store:         w.store,
		Navigator:     w.nav,
		Random:        mocks.NewMockRandomSource(),
		TokenEndpoint: w.endpoint,
		Codec:         mocks.NewMockTokenCodec(),
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:           func() time.Time { return testNow },
	})
}

func (w *loginWorld) theConfiguration(table *godog.Table) error {
	w.cfg = domain.AuthConfig{}
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("expected key/value rows")
		}
		key, value := row.Cells[0].Value, strings.TrimSpace(row.Cells[1].Value)
		switch key {
		case "enabled":
			w.cfg.Enabled = value == "true"
		case "cognitoDomain":
			w.cfg.CognitoDomain = value
		case "appClientId":
			w.cfg.AppClientID = value
		case "redirectUri":
			w.cfg.RedirectURI = value
		case "previewPasswordLoginEnabled":
			w.cfg.PreviewPasswordLoginEnabled = value == "true"
		case "previewAllowedEmailDomains":
			w.cfg.PreviewAllowedEmailDomains = strings.Split(value, ",")
		default:
			return fmt.Errorf("unknown setting %q", key)
		}
	}
	return nil
}

func (w *loginWorld) theTokenEndpointReturns(email string, expiresIn int) error {
	w.endpoint.Response = &driven.TokenResponse{
		AccessToken: "a",
		IDToken:     mocks.MakeJWT(map[string]any{"email": email}),
		ExpiresIn:   int64(expiresIn),
	}
	return nil
}

func (w *loginWorld) theTabIsOn(href string) error {
	w.visit(href)
	return nil
}

func (w *loginWorld) theTabHoldsExpiredTokens(seconds int) error {
	data, err := json.Marshal(domain.TokenRecord{
		IDToken:   mocks.MakeJWT(map[string]any{"email": "foo@bar.com"}),
		ExpiresAt: testNow.Unix() - int64(seconds),
	})
	if err != nil {
		return err
	}
	return w.store.Set(context.Background(), domain.StorageKeyTokens, string(data))
}

func (w *loginWorld) theUserStartsLogin() error {
	return w.svc.StartLogin(context.Background(), domain.StartLoginOptions{})
}

func (w *loginWorld) theProviderRedirectsWithStoredState(href, code string) error {
	state, ok := w.store.Value(domain.StorageKeyOAuthState)
	if !ok {
		return fmt.Errorf("no state stored")
	}
	return w.theProviderRedirects(href, code, state)
}

func (w *loginWorld) theProviderRedirects(href, code, state string) error {
	u, err := url.Parse(href)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("code", code)
	q.Set("state", state)
	u.RawQuery = q.Encode()

	w.visit(u.String())
	result, err := w.svc.HandleCallbackIfPresent(context.Background())
	if err != nil {
		return err
	}
	w.callback = result
	return nil
}

func (w *loginWorld) theCallbackSucceeds(redirect string) error {
	if w.callback == nil || !w.callback.Handled || !w.callback.Success {
		return fmt.Errorf("expected a successful callback, got %+v", w.callback)
	}
	if w.callback.RedirectPath != redirect {
		return fmt.Errorf("expected redirect path %q, got %q", redirect, w.callback.RedirectPath)
	}
	return nil
}

func (w *loginWorld) theCallbackFails(message string) error {
	if w.callback == nil || !w.callback.Handled || w.callback.Success {
		return fmt.Errorf("expected a failed callback, got %+v", w.callback)
	}
	if w.callback.Error != message {
		return fmt.Errorf("expected error %q, got %q", message, w.callback.Error)
	}
	return nil
}

func (w *loginWorld) theTokenEndpointWasCalled(times int) error {
	if got := len(w.endpoint.Requests()); got != times {
		return fmt.Errorf("expected %d token requests, got %d", times, got)
	}
	return nil
}

func (w *loginWorld) theNavigationTarget(host, path string) error {
	u, err := url.Parse(w.nav.Href())
	if err != nil {
		return err
	}
	if u.Host != host || u.Path != path {
		return fmt.Errorf("expected %s%s, got %s", host, path, w.nav.Href())
	}
	return nil
}

func (w *loginWorld) theNavigationQueryHas(key, value string) error {
	u, err := url.Parse(w.nav.Href())
	if err != nil {
		return err
	}
	if got := u.Query().Get(key); got != value {
		return fmt.Errorf("expected %s=%q, got %q", key, value, got)
	}
	return nil
}

func (w *loginWorld) theTabNavigatesTo(href string) error {
	if w.nav.Href() != href {
		return fmt.Errorf("expected navigation to %q, got %q", href, w.nav.Href())
	}
	return nil
}

func (w *loginWorld) theVisibleURLIs(href string) error {
	return w.theTabNavigatesTo(href)
}

func (w *loginWorld) theCurrentUserEmailIs(email string) error {
	user := w.svc.GetCurrentUser(context.Background())
	if user == nil {
		return fmt.Errorf("expected a current user")
	}
	if user.Email != email {
		return fmt.Errorf("expected email %q, got %q", email, user.Email)
	}
	return nil
}

func (w *loginWorld) theCurrentUserAuthModeIs(mode string) error {
	user := w.svc.GetCurrentUser(context.Background())
	if user == nil {
		return fmt.Errorf("expected a current user")
	}
	if user.AuthMode() != mode {
		return fmt.Errorf("expected auth mode %q, got %q", mode, user.AuthMode())
	}
	return nil
}

func (w *loginWorld) thePageRequiresAuthentication() error {
	w.guard = w.svc.RequireAuth(context.Background(), domain.RequireAuthOptions{})
	return nil
}

func (w *loginWorld) accessIsDenied(reason string) error {
	if w.guard == nil || w.guard.Allowed || w.guard.Reason != reason {
		return fmt.Errorf("expected denial with %q, got %+v", reason, w.guard)
	}
	return nil
}

func (w *loginWorld) theUserSignsOut() error {
	return w.svc.SignOut(context.Background())
}

func (w *loginWorld) theTabHasNoTokens() error {
	if tokens := w.svc.GetTokens(context.Background()); tokens != nil {
		return fmt.Errorf("expected no tokens, got %+v", tokens)
	}
	return nil
}

func (w *loginWorld) theTabHasNoStored(key string) error {
	if value, ok := w.store.Value(key); ok {
		return fmt.Errorf("expected %s to be absent, got %q", key, value)
	}
	return nil
}

func (w *loginWorld) theTabHasStored(key, want string) error {
	value, ok := w.store.Value(key)
	if !ok || value != want {
		return fmt.Errorf("expected %s=%q, got %q", key, want, value)
	}
	return nil
}

func (w *loginWorld) theUserSignsInWithPassword(email string) error {
	result, err := w.svc.SignInWithPassword(context.Background(), email, "preview")
	if err != nil {
		return err
	}
	w.password = result
	return nil
}

func (w *loginWorld) thePasswordSignInSucceeds() error {
	if w.password == nil || !w.password.Success {
		return fmt.Errorf("expected success, got %+v", w.password)
	}
	return nil
}

func (w *loginWorld) thePasswordSignInFails(reason string) error {
	if w.password == nil || w.password.Success || w.password.Reason != reason {
		return fmt.Errorf("expected failure %q, got %+v", reason, w.password)
	}
	return nil
}

func initializeLoginScenario(sc *godog.ScenarioContext) {
	w := &loginWorld{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*w = loginWorld{
			store:    mocks.NewMockSessionStore(nil),
			endpoint: mocks.NewMockTokenEndpoint(&driven.TokenResponse{}),
		}
		return ctx, nil
	})

	sc.Step(`^the portal auth configuration:$`, w.theConfiguration)
	sc.Step(`^the token endpoint returns an id_token for "([^"]*)" expiring in (\d+) seconds$`, w.theTokenEndpointReturns)
	sc.Step(`^the tab is on "([^"]*)"$`, w.theTabIsOn)
	sc.Step(`^the tab holds tokens that expired (\d+) seconds ago$`, w.theTabHoldsExpiredTokens)
	sc.Step(`^the user starts login$`, w.theUserStartsLogin)
	sc.Step(`^the identity provider redirects to "([^"]*)" with code "([^"]*)" and the stored state$`, w.theProviderRedirectsWithStoredState)
	sc.Step(`^the identity provider redirects to "([^"]*)" with code "([^"]*)" and state "([^"]*)"$`, w.theProviderRedirects)
	sc.Step(`^the callback is handled successfully with redirect path "([^"]*)"$`, w.theCallbackSucceeds)
	sc.Step(`^the callback fails with "([^"]*)"$`, w.theCallbackFails)
	sc.Step(`^the token endpoint was called (\d+) times$`, w.theTokenEndpointWasCalled)
	sc.Step(`^the tab navigates to host "([^"]*)" and path "([^"]*)"$`, w.theNavigationTarget)
	sc.Step(`^the navigation query has "([^"]*)" set to "([^"]*)"$`, w.theNavigationQueryHas)
	sc.Step(`^the tab navigates to "([^"]*)"$`, w.theTabNavigatesTo)
	sc.Step(`^the visible URL is "([^"]*)"$`, w.theVisibleURLIs)
	sc.Step(`^the current user email is "([^"]*)"$`, w.theCurrentUserEmailIs)
	sc.Step(`^the current user auth mode is "([^"]*)"$`, w.theCurrentUserAuthModeIs)
	sc.Step(`^the page requires authentication$`, w.thePageRequiresAuthentication)
	sc.Step(`^access is denied with reason "([^"]*)"$`, w.accessIsDenied)
	sc.Step(`^the user signs out$`, w.theUserSignsOut)
	sc.Step(`^the tab has no tokens$`, w.theTabHasNoTokens)
	sc.Step(`^the tab has no stored "([^"]*)"$`, w.theTabHasNoStored)
	sc.Step(`^the tab has "([^"]*)" set to "([^"]*)"$`, w.theTabHasStored)
	sc.Step(`^the user signs in with password as "([^"]*)"$`, w.theUserSignsInWithPassword)
	sc.Step(`^the password sign-in succeeds$`, w.thePasswordSignInSucceeds)
	sc.Step(`^the password sign-in fails with reason "([^"]*)"$`, w.thePasswordSignInFails)
}
