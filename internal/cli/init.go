// Package cli holds the startup and shutdown steps shared by cmd/fintrack
// and cmd/fintrack-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Setup loads .env when present, reads and validates the configuration and
// installs a text logger at LOG_LEVEL as the slog default. It exits the
// process when the configuration is invalid.
func Setup(component string) (*log.Logger, *config.Config) {
	_ = godotenv.Load()

	logger := SetupLogger(os.Getenv("LOG_LEVEL"), component)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.LogLevel != os.Getenv("LOG_LEVEL") {
		logger = SetupLogger(cfg.LogLevel, component)
	}
	return logger, cfg
}

// SetupLogger builds a stdout text logger at level, tags it with component
// and makes it the slog default.
func SetupLogger(level, component string) *log.Logger {
	logger := log.NewWithLevel(component, log.ParseLevel(level))
	log.SetDefault(logger)
	return logger
}

// OpenSQLite opens the repository at dbPath or exits the process.
func OpenSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to open SQLite database", log.FieldError, err.Error(), "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. After
// cancellation cleanup runs, bounded by timeout, and then done is closed.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		<-ctx.Done()
		stop()
		logger.Info("Shutdown signal received")

		finished := make(chan struct{})
		go func() {
			defer close(finished)
			if cleanup != nil {
				cleanup()
			}
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-time.After(timeout):
			logger.Warn("Shutdown timeout reached", "timeout", timeout)
		}
	}()

	return ctx, done
}

// WaitForShutdown blocks until a signal arrived and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
