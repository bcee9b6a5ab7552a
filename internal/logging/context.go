package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID correlates every line emitted by one analysis run.
	FieldRunID = "run_id"
	// FieldExperiment names the ranking/pitch-track configuration being analysed.
	FieldExperiment = "experiment"
	// FieldQuery is the query phrase identifier.
	FieldQuery = "query"
	// FieldRank is the ground-truth rank of a query.
	FieldRank = "rank"
	// FieldPath is a file or directory the record refers to.
	FieldPath = "path"
)

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	experimentKey contextKey = "experiment"
)

// WithRunID annotates ctx with the run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(runIDKey).(string)
	return v, ok && v != ""
}

// WithExperiment annotates ctx with the experiment name.
func WithExperiment(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, experimentKey, name)
}

// ExperimentFromContext returns the experiment name if present.
func ExperimentFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(experimentKey).(string)
	return v, ok && v != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if name, ok := ExperimentFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldExperiment, name))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
