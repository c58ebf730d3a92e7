package main

// @title           WaterApps Portal API
// @version         1.0
// @description     Session and review moderation API of the WaterApps management portal.

// @contact.name   WaterApps
// @contact.url    https://www.waterapps.com.au

// @BasePath  /
// @schemes   http https

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/waterapps/portal/internal/adapters/driven/auth"
	"github.com/waterapps/portal/internal/adapters/driven/cognito"
	"github.com/waterapps/portal/internal/adapters/driven/entropy"
	"github.com/waterapps/portal/internal/adapters/driven/postgres"
	redisadapter "github.com/waterapps/portal/internal/adapters/driven/redis"
	"github.com/waterapps/portal/internal/adapters/driven/reviews"
	"github.com/waterapps/portal/internal/adapters/driving/http"
	"github.com/waterapps/portal/internal/config"
	"github.com/waterapps/portal/internal/core/ports/driven"
	"github.com/waterapps/portal/internal/core/ports/driving"
	"github.com/waterapps/portal/internal/core/services"
	"github.com/waterapps/portal/internal/worker"
)

var version = "dev"

// sessionBackend is the storage chosen for tab sessions.
type sessionBackend interface {
	driven.SessionStoreFactory
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Command line arg overrides RUN_MODE
	mode := cfg.RunMode
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	log.Printf("waterapps-portal %s starting in %s mode", version, mode)
	if cfg.UsesDevSecret() {
		log.Println("Warning: SESSION_SECRET is the development default; set it in production")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Session storage (Redis if available, otherwise PostgreSQL) =====
	var sessions sessionBackend
	var cleaner worker.Cleaner
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		sessions = redisadapter.NewSessionStores(redisClient, cfg.SessionIdleTTL)
		log.Println("Using Redis session store")
	} else {
		log.Println("Connecting to PostgreSQL...")
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Migrations are idempotent
		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		stores := postgres.NewSessionStores(db, cfg.SessionIdleTTL)
		sessions, cleaner = stores, stores
		log.Println("Using PostgreSQL session store")
	}

	// ===== Driven adapters (infrastructure) =====
	codec := auth.NewAdapter()
	tokenEndpoint := cognito.NewClient(cfg.IDPHTTPTimeout)
	reviewAPI := reviews.NewClient(cfg.ReviewAPIBase, cfg.IDPHTTPTimeout)
	random := entropy.Source{}

	// ===== Services (core business logic) =====
	authConfig := cfg.AuthConfig()
	portalAuth := func(store driven.SessionStore, nav driven.Navigator) driving.PortalAuthService {
		return services.NewPortalAuthService(services.PortalAuthServiceConfig{
			Config:        authConfig,
			Store:         store,
			Navigator:     nav,
			Random:        random,
			TokenEndpoint: tokenEndpoint,
			Codec:         codec,
			Logger:        logger,
		})
	}
	moderation := services.NewModerationService(services.ModerationServiceConfig{
		ReviewAPI: reviewAPI,
		Logger:    logger,
	})

	resolved := authConfig.WithDefaults(cfg.PublicURL)
	log.Printf("Auth config: cognito_configured=%t, preview_password=%t, review_api=%t",
		resolved.IsConfigured(),
		resolved.PreviewPasswordLoginEnabled,
		reviewAPI.Configured())
	if missing := resolved.MissingSettings(); len(missing) > 0 {
		log.Printf("Cognito SSO unavailable, missing: %v", missing)
	}
	if resolved.PreviewPasswordLoginEnabled {
		log.Println("Warning: preview password login is enabled; it is not a substitute for SSO")
	}

	switch mode {
	case config.ModeAPI:
		// API-only mode: HTTP server, no janitor
		runAPI(ctx, cfg, portalAuth, moderation, sessions, random)

	case config.ModeWorker:
		// Worker-only mode: expired session cleanup, no HTTP server
		runWorkerMode(ctx, cfg, cleaner)

	case config.ModeAll:
		// Combined mode: janitor in background, API in foreground
		go runWorkerMode(ctx, cfg, cleaner)
		runAPI(ctx, cfg, portalAuth, moderation, sessions, random)

	default:
		log.Fatalf("Unknown mode: %s (use: api, worker, or all)", mode)
	}
}

func runAPI(
	ctx context.Context,
	cfg *config.Config,
	portalAuth http.PortalAuthFactory,
	moderation driving.ModerationService,
	sessions sessionBackend,
	random driven.RandomSource,
) {
	tabs, err := http.NewTabSessions(cfg.SessionSecret, cfg.CookieSecure, random)
	if err != nil {
		log.Fatalf("Failed to configure tab sessions: %v", err)
	}

	var origins []string
	if cfg.PublicURL != "" {
		origins = []string{cfg.PublicURL}
	}

	server, err := http.NewServer(http.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        version,
		PublicURL:      cfg.PublicURL,
		AllowedOrigins: origins,
		Logger:         slog.Default(),
	}, portalAuth, moderation, sessions, tabs, sessions)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	log.Printf("API server starting on %s", server.Addr())
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runWorkerMode runs the session janitor until ctx is cancelled.
// Redis expires tab sessions itself, so there is nothing to sweep.
func runWorkerMode(ctx context.Context, cfg *config.Config, cleaner worker.Cleaner) {
	if cleaner == nil {
		log.Println("Session janitor not needed: Redis expires tab sessions")
		<-ctx.Done()
		return
	}

	log.Println("Starting session janitor...")

	janitor := worker.NewJanitor(worker.JanitorConfig{
		Cleaner:  cleaner,
		Interval: cfg.JanitorInterval,
		Logger:   slog.Default(),
	})

	if err := janitor.Start(ctx); err != nil {
		log.Fatalf("Failed to start janitor: %v", err)
	}

	// Wait for context cancellation
	<-ctx.Done()

	// Graceful shutdown
	log.Println("Stopping session janitor...")
	janitor.Stop()
}
