package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldAlbum is the standardized structured logging key for album folder names.
	FieldAlbum = "album"
	// FieldOperation names the pipeline operation (publish, reset, regenerate, sync).
	FieldOperation = "operation"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRequestID correlates origin server log lines with a request.
	FieldRequestID = "request_id"
	FieldPhoto     = "photo"
	FieldSource    = "source"
	FieldKey       = "key"
	FieldTarget    = "target"
	FieldError     = "error"
)

type contextKey int

const (
	albumKey contextKey = iota
	operationKey
)

// WithAlbum stores the album folder name on ctx for WithContext.
func WithAlbum(ctx context.Context, folder string) context.Context {
	return context.WithValue(ctx, albumKey, folder)
}

// WithOperation stores the pipeline operation name on ctx for WithContext.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationKey, operation)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if op, ok := ctx.Value(operationKey).(string); ok && op != "" {
		fields = append(fields, slog.String(FieldOperation, op))
	}
	if folder, ok := ctx.Value(albumKey).(string); ok && folder != "" {
		fields = append(fields, slog.String(FieldAlbum, folder))
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
