package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for publish run identifiers.
	FieldRunID = "run_id"
	// FieldUpanishad is the standardized structured logging key for the text being processed.
	FieldUpanishad = "upanishad"
	// FieldChapter is the standardized structured logging key for chapter numbers.
	FieldChapter = "chapter"
	// FieldSutra is the standardized structured logging key for sutra numbers.
	FieldSutra = "sutra"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
)

type runIDKey struct{}

type sutraKey struct{}

type sutraRef struct {
	upanishad string
	chapter   int
	number    int
}

// ContextWithRunID attaches a publish run identifier to ctx.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run identifier stored on ctx, if any.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// ContextWithSutra attaches the sutra currently being published to ctx.
func ContextWithSutra(ctx context.Context, upanishad string, chapter, number int) context.Context {
	return context.WithValue(ctx, sutraKey{}, sutraRef{upanishad: upanishad, chapter: chapter, number: number})
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if ref, ok := ctx.Value(sutraKey{}).(sutraRef); ok {
		fields = append(fields,
			slog.String(FieldUpanishad, ref.upanishad),
			slog.Int(FieldChapter, ref.chapter),
			slog.Int(FieldSutra, ref.number),
		)
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
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		args = append(args, field)
	}
	return logger.With(args...)
}
