package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/relayworks/giftcard-relay/internal/config"
	"github.com/relayworks/giftcard-relay/internal/handler"
	"github.com/relayworks/giftcard-relay/internal/middleware"
	"github.com/relayworks/giftcard-relay/internal/provider"
	"github.com/relayworks/giftcard-relay/internal/repository/redis"
	"github.com/relayworks/giftcard-relay/internal/service"
	"github.com/relayworks/giftcard-relay/internal/signer"
	"github.com/relayworks/giftcard-relay/internal/translator"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logLevel := slog.LevelInfo
	if cfg.App.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Missing credentials are a startup failure, never a per-request one.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting gift card relay",
		"env", cfg.App.Env,
		"port", cfg.Server.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the issuance pipeline
	tilloClient := provider.NewTilloClient(cfg.Tillo)
	issuanceService := service.NewIssuanceService(
		translator.New(),
		signer.New(cfg.Tillo.APIKey, cfg.Tillo.Secret),
		tilloClient,
		logger,
	)

	// Initialize handlers
	metrics := handler.NewMetrics()
	issuanceHandler := handler.NewIssuanceHandler(issuanceService, metrics)
	healthHandler := handler.NewHealthHandler()

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(chimiddleware.Compress(5))

	// Inbound rate limiting is optional; it only runs when Redis is
	// configured.
	if cfg.Redis.URL != "" {
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		limiter := redis.NewRateLimiter(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		r.Use(middleware.RateLimit(limiter, logger))
		logger.Info("inbound rate limiting enabled",
			"max_requests", cfg.RateLimit.MaxRequests,
			"window", cfg.RateLimit.Window,
		)
	}

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", metrics.Handler())
	r.Post("/api/issue-gift-card", issuanceHandler.Issue)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
