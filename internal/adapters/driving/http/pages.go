package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/waterapps/portal/internal/core/domain"
	"github.com/waterapps/portal/internal/core/ports/driving"
	"github.com/waterapps/portal/internal/metrics"
)

// loginPage is the data of the login template.
type loginPage struct {
	SSOAvailable   bool
	PreviewEnabled bool
	Error          string
	Email          string
	Redirect       string
	User           *domain.User
	DashboardPath  string
}

// dashboardPage is the data of the dashboard template.
type dashboardPage struct {
	User       *domain.User
	Preview    bool
	Reviews    []*domain.Review
	Status     string
	StatusKind string
}

var passwordReasonMessages = map[string]string{
	domain.PasswordReasonDisabled:         "Preview password login is disabled.",
	domain.PasswordReasonDomainNotAllowed: "That email domain is not allowed for preview login.",
	domain.PasswordReasonPasswordRequired: "Enter a password.",
}

// handleLoginPage completes a pending authorization response, or renders the
// login page.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	auth, nav, err := s.requestAuth(w, r)
	if err != nil {
		s.sessionFailure(w, err)
		return
	}
	ctx := r.Context()

	result, err := auth.HandleCallbackIfPresent(ctx)
	page := s.newLoginPage(ctx, auth)
	page.Redirect = localRedirect(r.URL.Query().Get("redirect"))
	switch {
	case err != nil:
		metrics.CallbackOutcomes.WithLabelValues("error").Inc()
		s.logger.Warn("authorization callback failed", "error", err)
		page.Error = err.Error()
		page.User = nil
	case result.Handled && result.Success:
		metrics.CallbackOutcomes.WithLabelValues("success").Inc()
		http.Redirect(w, r, nav.resolve(result.RedirectPath), http.StatusFound)
		return
	case result.Handled:
		metrics.CallbackOutcomes.WithLabelValues("rejected").Inc()
		s.logger.Info("authorization callback rejected", "reason", result.Error)
		page.Error = result.Error
		page.User = nil
	}

	s.render(w, http.StatusOK, "login.html", page)
}

// handleStartSSO begins the authorization code flow.
func (s *Server) handleStartSSO(w http.ResponseWriter, r *http.Request) {
	auth, nav, err := s.requestAuth(w, r)
	if err != nil {
		s.sessionFailure(w, err)
		return
	}
	ctx := r.Context()

	err = auth.StartLogin(ctx, domain.StartLoginOptions{
		PostLoginRedirect: localRedirect(r.FormValue("redirect")),
	})
	if err != nil {
		page := s.newLoginPage(ctx, auth)
		page.Error = err.Error()
		if errors.Is(err, domain.ErrNotConfigured) {
			metrics.LoginAttempts.WithLabelValues("sso", "not_configured").Inc()
			s.render(w, http.StatusServiceUnavailable, "login.html", page)
			return
		}
		metrics.LoginAttempts.WithLabelValues("sso", "error").Inc()
		s.logger.Error("start login", "error", err)
		page.Error = "Unable to start sign-in. Try again."
		s.render(w, http.StatusInternalServerError, "login.html", page)
		return
	}

	metrics.LoginAttempts.WithLabelValues("sso", "redirected").Inc()
	nav.Redirect(w, r)
}

// handlePasswordLogin signs in through preview password mode.
func (s *Server) handlePasswordLogin(w http.ResponseWriter, r *http.Request) {
	auth, nav, err := s.requestAuth(w, r)
	if err != nil {
		s.sessionFailure(w, err)
		return
	}
	ctx := r.Context()

	email := r.FormValue("email")
	result, err := auth.SignInWithPassword(ctx, email, r.FormValue("password"))
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("password", "error").Inc()
		s.logger.Error("preview password sign-in", "error", err)
		page := s.newLoginPage(ctx, auth)
		page.Error = "Unable to sign in. Try again."
		page.Email = email
		s.render(w, http.StatusInternalServerError, "login.html", page)
		return
	}

	if !result.Success {
		metrics.LoginAttempts.WithLabelValues("password", result.Reason).Inc()
		page := s.newLoginPage(ctx, auth)
		page.Error = passwordReasonMessages[result.Reason]
		page.Email = email
		status := http.StatusUnauthorized
		if result.Reason == domain.PasswordReasonDisabled {
			status = http.StatusForbidden
		}
		s.render(w, status, "login.html", page)
		return
	}

	metrics.LoginAttempts.WithLabelValues("password", "success").Inc()
	http.Redirect(w, r, nav.resolve(result.RedirectPath), http.StatusFound)
}

// handleDashboard renders the management dashboard behind the route guard.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	auth, nav, err := s.requestAuth(w, r)
	if err != nil {
		s.sessionFailure(w, err)
		return
	}
	ctx := r.Context()

	guard := auth.RequireAuth(ctx, domain.RequireAuthOptions{})
	if !guard.Allowed {
		nav.Redirect(w, r)
		return
	}

	viewer := &domain.Viewer{
		Tokens: auth.GetTokens(ctx),
		User:   auth.GetCurrentUser(ctx),
	}
	page := dashboardPage{
		User:    viewer.User,
		Preview: viewer.User.IsPreviewPassword(),
	}

	reviews, err := s.moderation.ListPending(ctx, viewer)
	switch {
	case err == nil:
		page.Reviews = reviews
	case errors.Is(err, domain.ErrSSORequired), errors.Is(err, domain.ErrReviewAPINotConfigured):
		page.Status, page.StatusKind = err.Error(), "warn"
	default:
		var apiErr *domain.ReviewAPIError
		if errors.As(err, &apiErr) || errors.Is(err, domain.ErrTokenUnavailable) {
			page.Status = err.Error()
		} else {
			s.logger.Error("load pending reviews", "error", err)
			page.Status = "Network error while loading pending reviews."
		}
		page.StatusKind = "error"
	}

	s.render(w, http.StatusOK, "dashboard.html", page)
}

// handleLogout clears the tab session and leaves through the provider.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth, nav, err := s.requestAuth(w, r)
	if err != nil {
		s.sessionFailure(w, err)
		return
	}

	if err := auth.SignOut(r.Context()); err != nil {
		s.logger.Warn("sign out did not clear every session value", "error", err)
	}
	nav.Redirect(w, r)
}

func (s *Server) newLoginPage(ctx context.Context, auth driving.PortalAuthService) *loginPage {
	cfg := auth.Config()
	page := &loginPage{
		SSOAvailable:   auth.IsConfigured(),
		PreviewEnabled: cfg.PreviewPasswordLoginEnabled,
		DashboardPath:  cfg.PostLoginRedirectPath,
	}
	if auth.GetTokens(ctx) != nil {
		page.User = auth.GetCurrentUser(ctx)
	}
	return page
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := s.pages.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render page", "template", name, "error", err)
	}
}

func (s *Server) sessionFailure(w http.ResponseWriter, err error) {
	s.logger.Error("resolve tab session", "error", err)
	http.Error(w, "Session unavailable. Try again.", http.StatusInternalServerError)
}

// localRedirect keeps only same-origin absolute paths.
func localRedirect(target string) string {
	target = strings.TrimSpace(target)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return ""
	}
	return target
}
