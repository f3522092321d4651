package logging

import (
	"context"
	"log/slog"
	"time"
)

// FieldImpact describes what a warning means for the operator's data.
const FieldImpact = "impact"

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

// Error wraps err under the "error" key.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that drops every record.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name. A nil logger yields a
// component-tagged no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact; missing ones get generic values.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...slog.Attr) {
	logClassified(logger, slog.LevelWarn, msg, attrs,
		slog.String(FieldEventType, eventType),
		slog.String(FieldErrorHint, "check logs for details"),
		slog.String(FieldImpact, "operation completed with warnings"),
	)
}

// ErrorWithContext logs an error that always carries event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...slog.Attr) {
	logClassified(logger, slog.LevelError, msg, attrs,
		slog.String(FieldEventType, eventType),
		slog.String(FieldErrorHint, "check logs for details"),
	)
}

func logClassified(logger *slog.Logger, level slog.Level, msg string, attrs []slog.Attr, defaults ...slog.Attr) {
	if logger == nil {
		return
	}
	given := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		given[a.Key] = true
	}
	for _, d := range defaults {
		if !given[d.Key] {
			attrs = append(attrs, d)
		}
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}
