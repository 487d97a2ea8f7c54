package logging

import (
	"context"
	"log/slog"
	"strings"
)

type contextKey int

const (
	runIDKey contextKey = iota
	stageKey
	itemKey
)

// contextFields lists the keys WithContext lifts out of a context, in the
// order they are attached to the logger.
var contextFields = []struct {
	key   contextKey
	field string
}{
	{runIDKey, FieldRunID},
	{stageKey, FieldStage},
	{itemKey, FieldItem},
}

// WithRunID tags ctx with a pipeline run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return withValue(ctx, runIDKey, runID)
}

// WithStage tags ctx with the active pipeline stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

// WithItem tags ctx with the clip or narration file being processed.
func WithItem(ctx context.Context, item string) context.Context {
	return withValue(ctx, itemKey, item)
}

// RunIDFromContext returns the run identifier stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return valueFrom(ctx, runIDKey)
}

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, strings.TrimSpace(value))
}

func valueFrom(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(key).(string)
	return value, ok && value != ""
}

// WithContext returns logger augmented with the run, stage, and item tags
// found on ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	var args []any
	for _, cf := range contextFields {
		if value, ok := valueFrom(ctx, cf.key); ok {
			args = append(args, slog.String(cf.field, value))
		}
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
