package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/recipe-hub/api/internal/handlers"
	"github.com/recipe-hub/api/internal/platform/config"
	"github.com/recipe-hub/api/internal/platform/observability"
	"github.com/recipe-hub/api/internal/repositories/gist"
	"github.com/recipe-hub/api/internal/services"
	"github.com/recipe-hub/api/internal/session"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load(nil)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	if cfg.Session.GeneratedHashKey {
		logger.Warn("SESSION_HASH_KEY not set; using a generated key, sessions will not survive restarts")
	}

	store := gist.NewRepository(gist.Config{})

	appService, err := services.NewAppService(services.AppServiceDeps{
		Store: store,
	})
	if err != nil {
		logger.Fatal("failed to initialise app service", zap.Error(err))
	}
	adminService, err := services.NewAdminService(services.AdminServiceDeps{
		App:   appService,
		Clock: time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise admin service", zap.Error(err))
	}

	sessions, err := session.NewManager(session.Config{
		CookieName:   cfg.Session.CookieName,
		HashKey:      cfg.Session.HashKey,
		BlockKey:     cfg.Session.BlockKey,
		CookieSecure: cfg.Session.CookieSecure,
		Lifetime:     cfg.Session.Lifetime,
	})
	if err != nil {
		logger.Fatal("failed to initialise session manager", zap.Error(err))
	}

	// Run the load sequence once at startup so the first request sees either
	// the loaded model or a concrete load failure, not an empty one.
	loadCtx, cancelLoad := context.WithTimeout(ctx, 30*time.Second)
	snap := appService.Load(loadCtx, cfg.Site.GistID)
	cancelLoad()
	switch {
	case snap.DemoMode:
		logger.Info("running in demo mode", zap.String("gist_id", cfg.Site.GistID))
	case snap.State == services.LoadStateError:
		logger.Warn("initial load failed; serving the error state until a reload succeeds",
			zap.String("gist_id", cfg.Site.GistID), zap.String("message", snap.Message))
	default:
		logger.Info("initial load complete", zap.String("gist_id", cfg.Site.GistID))
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:         logger.Named("http"),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Health:         handlers.NewHealthHandlers(handlers.WithHealthStartedAt(startedAt)),
		Public:         handlers.NewPublicHandlers(appService, sessions),
		Auth:           handlers.NewAuthHandlers(appService, sessions),
		Admin:          handlers.NewAdminHandlers(appService, adminService, sessions),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("recipe-hub api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
