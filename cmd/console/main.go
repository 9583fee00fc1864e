package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abiolaogu/voxguard-console/internal/acm"
	"github.com/abiolaogu/voxguard-console/internal/config"
	"github.com/abiolaogu/voxguard-console/internal/feed"
	"github.com/abiolaogu/voxguard-console/internal/graphql"
	"github.com/abiolaogu/voxguard-console/internal/handlers"
	middlewareCustom "github.com/abiolaogu/voxguard-console/internal/middleware"
	"github.com/abiolaogu/voxguard-console/internal/models"
	"github.com/abiolaogu/voxguard-console/internal/notify"
	"github.com/abiolaogu/voxguard-console/internal/prefs"
	"github.com/abiolaogu/voxguard-console/internal/routes"
	"github.com/abiolaogu/voxguard-console/internal/session"
	"github.com/abiolaogu/voxguard-console/internal/storage"
	pkglogger "github.com/abiolaogu/voxguard-console/pkg/logger"
)

func main() {
	// Load configuration first so the log level honors LOG_LEVEL
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Local state store (session, preferences, theme)
	store, err := storage.New(cfg.State.Dir)
	if err != nil {
		logger.Error("failed to open state directory", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := pkglogger.NewAuditLogger(logger)
	tokenManager := session.NewTokenManager(cfg.Session.Secret, cfg.Session.TTL)

	sessions, err := session.NewStore(store, tokenManager, logger, auditLogger)
	if err != nil {
		logger.Error("failed to initialize session store", slog.Any("error", err))
		os.Exit(1)
	}

	if err := seedOperators(sessions, logger); err != nil {
		logger.Error("failed to seed operators", slog.Any("error", err))
		os.Exit(1)
	}

	prefsStore := prefs.NewStore(store, logger)

	// Backend clients share the session's token source; a backend 401
	// force-clears the session exactly once
	acmClient := acm.NewClient(acm.Config{
		BaseURL:     cfg.Backend.APIBaseURL,
		Timeout:     cfg.Backend.RequestTimeout,
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		Tokens:      sessions,
		OnUnauthorized: func(reason string) {
			sessions.ForceLogout(reason)
		},
	}, logger)

	gqlClient := graphql.NewClient(graphql.Config{
		HTTPURL:     cfg.Backend.GraphQLHTTPURL,
		WSURL:       cfg.Backend.GraphQLWSURL,
		AdminSecret: cfg.Backend.AdminSecret,
		Timeout:     cfg.Backend.RequestTimeout,
		Tokens:      sessions,
	}, logger)

	// Live alert pipeline
	center := notify.NewCenter(logger, &notify.LogSoundPlayer{Logger: logger})
	alertFeed := feed.New(gqlClient, center, logger, feed.Options{})

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	go alertFeed.Run(runCtx)
	go func() {
		if err := prefsStore.Watch(runCtx); err != nil {
			logger.Warn("preferences watcher stopped", slog.Any("error", err))
		}
	}()

	// Handlers
	h := routes.Handlers{
		Auth:   handlers.NewAuthHandler(sessions),
		Prefs:  handlers.NewPrefsHandler(prefsStore),
		Alerts: handlers.NewAlertsHandler(acmClient, gqlClient, auditLogger),
		Cases:  handlers.NewCasesHandler(gqlClient, auditLogger),
		Stats:  handlers.NewStatsHandler(acmClient, gqlClient),
		Tools:  handlers.NewToolsHandler(cfg.Tools),
		Feed:   handlers.NewFeedHandler(alertFeed, center, logger, cfg.Server.AllowedOrigins),
		Health: handlers.NewHealthHandler(acmClient),
	}

	// Router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, h, sessions)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting console server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	runCancel()
	center.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// seedOperators registers the login table from environment configuration.
// ADMIN_EMAIL/ADMIN_PASSWORD seed the first admin; OPERATOR_SEEDS takes
// semicolon-separated email:role:password entries for the rest.
func seedOperators(sessions *session.Store, logger *slog.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail != "" && adminPassword != "" {
		if err := sessions.SeedUsers(session.Seed{
			Email:    adminEmail,
			Name:     "Admin",
			Role:     models.RoleAdmin,
			Password: adminPassword,
		}); err != nil {
			return err
		}
		logger.Info("admin operator seeded")
	} else {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin seeding")
	}

	for _, entry := range strings.Split(os.Getenv("OPERATOR_SEEDS"), ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			logger.Warn("skipping malformed operator seed entry")
			continue
		}
		if err := sessions.SeedUsers(session.Seed{
			Email:    parts[0],
			Role:     parts[1],
			Password: parts[2],
		}); err != nil {
			return err
		}
	}

	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
