package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/transfer"
)

func main() {
	logger, cfg := cli.Setup(log.ComponentApp)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}
	store := result.Backend

	policy, err := transfer.ParseBalancePolicy(cfg.TransferBalancePolicy)
	if err != nil {
		logger.Error("Invalid transfer balance policy", log.FieldError, err.Error())
		os.Exit(1)
	}

	orchestrator := transfer.NewOrchestrator(
		transfer.NewCategoryResolver(store, logger),
		store, store, store, logger,
		transfer.WithValidator(transfer.NewValidator(policy)),
	)

	authn := auth.New(cfg.JWTSecret, cfg.JWTExpiry)
	if !authn.Enabled() {
		logger.Warn("JWT_SECRET not set, authentication disabled", "user_id", auth.LocalUserID)
	}

	srv := apphttp.NewServer(":"+cfg.Port, store, orchestrator, authn,
		apphttp.WithLogger(logger),
		apphttp.WithRateLimit(cfg.RateLimitPerMinute),
		apphttp.WithReadiness(store.Ping),
	)
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err.Error())
			}
		}
	})

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"balance_policy", string(policy),
		"auth_enabled", authn.Enabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
