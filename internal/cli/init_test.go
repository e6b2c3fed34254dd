package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupLogger_Level(t *testing.T) {
	tests := []struct {
		level string
		debug bool
		warn  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"", false, true},
		{"error", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := SetupLogger(tt.level, "test")
			ctx := context.Background()

			assert.Equal(t, tt.debug, logger.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.warn, logger.Enabled(ctx, slog.LevelWarn))
			assert.Equal(t, "test", logger.Component())
			assert.Same(t, logger.Logger, slog.Default())
		})
	}
}

func TestSetup_ReadsLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "fintrack.db"))

	logger, cfg := Setup("app")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
