package log

import (
	"context"
	"log/slog"
)

type ContextKey string

// LoggerContextKey is the context key the request logger is stored under.
const LoggerContextKey ContextKey = "logger"

// WithContext returns ctx carrying logger.
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext returns the request logger, or one wrapping slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return tag(slog.Default(), "")
}

// StructuredLogger emits the events other components search for by message.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogTransferCompleted records a written transfer pair.
func (sl *StructuredLogger) LogTransferCompleted(ctx context.Context, userID, source, target string, amount int64, categoryID string) {
	fields := NewFields().
		WithUser(userID).
		WithTransfer(source, target, amount)
	fields[FieldOperation] = OpTransfer
	fields[FieldCategoryID] = categoryID

	sl.logger.InfoContext(ctx, "Transfer completed", fields.ToSlice()...)
}

// LogTransferFailed records a rejected or failed submission with its stage
// and stable error code.
func (sl *StructuredLogger) LogTransferFailed(ctx context.Context, stage, code string, err error) {
	fields := NewFields().WithError(err)
	fields[FieldOperation] = OpTransfer
	fields[FieldStage] = stage
	fields[FieldErrorCode] = code

	sl.logger.WarnContext(ctx, "Transfer failed", fields.ToSlice()...)
}
