package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateRunID creates a new unique pipeline run ID
func GenerateRunID() string {
	return uuid.New().String()
}

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDContextKey, runID)
}

// GetRunID retrieves the run ID from context
func GetRunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if runID, ok := ctx.Value(RunIDContextKey).(string); ok {
		return runID
	}
	return ""
}

// EnsureRunID returns ctx unchanged when it already carries a run ID
func EnsureRunID(ctx context.Context) context.Context {
	if GetRunID(ctx) == "" {
		return WithRunID(ctx, GenerateRunID())
	}
	return ctx
}

// WithReportDate adds the YYYYMMDD report date to the context
func WithReportDate(ctx context.Context, date string) context.Context {
	return context.WithValue(ctx, ReportDateContextKey, date)
}

// GetReportDate retrieves the report date from context
func GetReportDate(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if date, ok := ctx.Value(ReportDateContextKey).(string); ok {
		return date
	}
	return ""
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With("component", component)
}
