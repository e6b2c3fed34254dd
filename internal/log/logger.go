// Package log wraps log/slog with a component tag, shared attribute keys and
// request-scoped loggers carried on the context.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger tagged with the component that owns it.
type Logger struct {
	*slog.Logger
	// untagged carries every attribute except the component, so that
	// WithComponent replaces the tag instead of repeating it.
	untagged  *slog.Logger
	component string
}

type Config struct {
	Level     slog.Level
	Component string
	// Handler overrides the default text handler on stdout. Level is ignored
	// when it is set.
	Handler slog.Handler
}

// ParseLevel maps LOG_LEVEL values to slog levels, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	}
	return tag(slog.New(handler), config.Component)
}

// NewWithLevel builds a text logger writing to stdout at the given level.
func NewWithLevel(component string, level slog.Level) *Logger {
	return New(Config{Level: level, Component: component})
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func tag(untagged *slog.Logger, component string) *Logger {
	l := &Logger{Logger: untagged, untagged: untagged, component: component}
	if component != "" {
		l.Logger = untagged.With(FieldComponent, component)
	}
	return l
}

// With returns a logger carrying args in addition to the current attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		untagged:  l.untagged.With(args...),
		component: l.component,
	}
}

// WithComponent returns a logger tagged with component instead of the
// current one.
func (l *Logger) WithComponent(component string) *Logger {
	return tag(l.untagged, component)
}

func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs logger as the slog default.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
