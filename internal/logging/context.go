package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey int

const (
	runIDKey contextKey = iota
)

// GenerateRunID returns a short random id tagging every log line of one
// command or scan run.
func GenerateRunID() string {
	return uuid.NewString()[:8]
}

// WithRunID returns a new context carrying runID.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// NewRunContext derives a context with a generated run id.
func NewRunContext(parent context.Context) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return WithRunID(parent, GenerateRunID())
}

// RunIDFromContext extracts the run id, or "" when none is set.
func RunIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// LoggerFromContext returns the default logger tagged with ctx's run id.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := Logger()
	if runID := RunIDFromContext(ctx); runID != "" {
		logger = logger.With(KeyRunID, runID)
	}
	return logger
}
