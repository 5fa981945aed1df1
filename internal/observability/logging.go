// Package observability provides structured logging for the client core.
package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// NewLogger builds a Logger on top of an arbitrary slog handler. Tests pass a
// discard handler.
func NewLogger(handler slog.Handler) *Logger {
	return &Logger{Logger: slog.New(handler)}
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// CorrelationID is the context key carrying the per-operation correlation id.
const CorrelationID LogContextKey = "correlation_id"

// GenerateCorrelationID creates a new unique correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id := ctx.Value(CorrelationID); id != nil {
		return id.(string)
	}
	return ""
}

// OpLogger provides structured logging for client core operations
// (session transitions, cache mutations, API calls).
type OpLogger struct {
	component string
	logger    *Logger
}

// NewOpLogger creates a new OpLogger for the given component.
func NewOpLogger(component string, logger *Logger) *OpLogger {
	if logger == nil {
		logger = GlobalLogger
	}
	return &OpLogger{component: component, logger: logger}
}

// LogStart logs the start of an operation.
func (l *OpLogger) LogStart(ctx context.Context, operation string, fields map[string]interface{}) {
	attrs := []any{
		slog.String("component", l.component),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.InfoContext(ctx, "operation started", attrs...)
}

// LogError logs an operation failure.
func (l *OpLogger) LogError(ctx context.Context, operation string, err error) {
	l.logger.ErrorContext(ctx, "operation failed",
		slog.String("component", l.component),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
		slog.String("error", err.Error()),
	)
}

// LogStale logs a dropped out-of-order completion.
func (l *OpLogger) LogStale(ctx context.Context, operation string, key int64) {
	l.logger.DebugContext(ctx, "stale completion dropped",
		slog.String("component", l.component),
		slog.String("operation", operation),
		slog.Int64("key", key),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}
