package logger

import (
	"context"
	"log/slog"
)

// MultiHandler writes every record to a primary handler and mirrors it to
// secondary handlers. Only the primary's error is returned: local output is
// the source of truth, and remote mirrors are best effort.
type MultiHandler struct {
	primary slog.Handler
	mirrors []slog.Handler
}

// NewMultiHandler creates a MultiHandler. Nil mirrors are ignored.
func NewMultiHandler(primary slog.Handler, mirrors ...slog.Handler) *MultiHandler {
	kept := make([]slog.Handler, 0, len(mirrors))
	for _, m := range mirrors {
		if m != nil {
			kept = append(kept, m)
		}
	}
	return &MultiHandler{primary: primary, mirrors: kept}
}

// Enabled reports whether the primary or any mirror accepts level.
func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.primary.Enabled(ctx, level) {
		return true
	}
	for _, m := range h.mirrors {
		if m.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle gives each enabled handler its own clone of r.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, m := range h.mirrors {
		if m.Enabled(ctx, r.Level) {
			_ = m.Handle(ctx, r.Clone())
		}
	}
	if !h.primary.Enabled(ctx, r.Level) {
		return nil
	}
	return h.primary.Handle(ctx, r.Clone())
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(s slog.Handler) slog.Handler { return s.WithAttrs(attrs) })
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(s slog.Handler) slog.Handler { return s.WithGroup(name) })
}

func (h *MultiHandler) derive(apply func(slog.Handler) slog.Handler) *MultiHandler {
	mirrors := make([]slog.Handler, len(h.mirrors))
	for i, m := range h.mirrors {
		mirrors[i] = apply(m)
	}
	return &MultiHandler{primary: apply(h.primary), mirrors: mirrors}
}
