package http

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/waterapps/portal/internal/core/domain"
	"github.com/waterapps/portal/internal/core/ports/driven"
	"github.com/waterapps/portal/internal/core/ports/driving"
	"github.com/waterapps/portal/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// PortalAuthFactory builds the auth service of one request over its tab's
// session store and navigation.
type PortalAuthFactory func(store driven.SessionStore, nav driven.Navigator) driving.PortalAuthService

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	version    string
	publicURL  *url.URL
	logger     *slog.Logger
	pages      *template.Template

	// Services
	portalAuth PortalAuthFactory
	moderation driving.ModerationService

	// Infrastructure
	sessions driven.SessionStoreFactory
	tabs     *TabSessions
	store    Pinger // session storage health check
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	PublicURL      string
	AllowedOrigins []string
	Logger         *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	portalAuth PortalAuthFactory,
	moderation driving.ModerationService,
	sessions driven.SessionStoreFactory,
	tabs *TabSessions,
	store Pinger,
) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var publicURL *url.URL
	if cfg.PublicURL != "" {
		u, err := url.Parse(cfg.PublicURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid public url %q", cfg.PublicURL)
		}
		publicURL = u
	}

	pages, err := template.New("pages").Funcs(template.FuncMap{
		"ratingLabel": func(r *domain.Review) string { return r.RatingLabel() },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		router:     http.NewServeMux(),
		version:    cfg.Version,
		publicURL:  publicURL,
		logger:     logger,
		pages:      pages,
		portalAuth: portalAuth,
		moderation: moderation,
		sessions:   sessions,
		tabs:       tabs,
		store:      store,
	}

	s.setupRoutes()

	s.handler = NewRecoveryMiddleware(logger).Handler(
		NewLoggingMiddleware(logger).Handler(
			NewCORSMiddleware(cfg.AllowedOrigins).Handler(s.router)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.Handle("GET /metrics", metrics.Handler())
	s.router.HandleFunc("GET /api/v1/docs/openapi.json", s.handleOpenAPI)

	// Portal pages
	s.router.HandleFunc("GET /portal-login.html", s.handleLoginPage)
	s.router.HandleFunc("POST /portal-login/sso", s.handleStartSSO)
	s.router.HandleFunc("POST /portal-login/password", s.handlePasswordLogin)
	s.router.HandleFunc("GET /management-dashboard.html", s.handleDashboard)
	s.router.HandleFunc("POST /logout", s.handleLogout)
	s.router.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, domain.LoginPagePath, http.StatusFound)
	})

	// Session API
	s.router.HandleFunc("GET /api/v1/me", s.handleGetMe)

	// Moderation API
	s.router.Handle("GET /api/v1/reviews/pending",
		s.RequireViewer(http.HandlerFunc(s.handleListPendingReviews)))
	s.router.Handle("POST /api/v1/reviews/{id}/moderate",
		s.RequireViewer(http.HandlerFunc(s.handleModerateReview)))
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// requestAuth builds the auth service of the request's tab.
func (s *Server) requestAuth(w http.ResponseWriter, r *http.Request) (driving.PortalAuthService, *requestNavigator, error) {
	tabID, err := s.tabs.TabID(w, r)
	if err != nil {
		return nil, nil, err
	}
	nav := newRequestNavigator(r, s.publicURL)
	return s.portalAuth(s.sessions.ForSession(tabID), nav), nav, nil
}
