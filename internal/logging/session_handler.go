package logging

import (
	"context"
	"log/slog"
)

// FieldSessionID is the structured logging key correlating every line of one CLI run.
const FieldSessionID = "session_id"

// sessionIDHandler appends the session attribute to each record.
type sessionIDHandler struct {
	base    slog.Handler
	session slog.Attr
}

func newSessionIDHandler(base slog.Handler, sessionID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return &sessionIDHandler{base: base, session: slog.String(FieldSessionID, sessionID)}
}

func (h *sessionIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *sessionIDHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(h.session)
	return h.base.Handle(ctx, record)
}

func (h *sessionIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sessionIDHandler{base: h.base.WithAttrs(attrs), session: h.session}
}

func (h *sessionIDHandler) WithGroup(name string) slog.Handler {
	return &sessionIDHandler{base: h.base.WithGroup(name), session: h.session}
}
