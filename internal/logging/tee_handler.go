package logging

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
)

// teeHandler writes every record to each handler that accepts its level.
type teeHandler struct {
	handlers []slog.Handler
}

// TeeHandler duplicates records into several handlers. Nil handlers are
// skipped; a single survivor is returned as-is.
func TeeHandler(handlers ...slog.Handler) slog.Handler {
	live := lo.Filter(handlers, func(h slog.Handler, _ int) bool { return h != nil })
	switch len(live) {
	case 0:
		return NoopHandler{}
	case 1:
		return live[0]
	default:
		return &teeHandler{handlers: live}
	}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return lo.SomeBy(h.handlers, func(inner slog.Handler) bool {
		return inner.Enabled(ctx, level)
	})
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, inner := range h.handlers {
		if !inner.Enabled(ctx, record.Level) {
			continue
		}
		if err := inner.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{handlers: lo.Map(h.handlers, func(inner slog.Handler, _ int) slog.Handler {
		return inner.WithAttrs(attrs)
	})}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{handlers: lo.Map(h.handlers, func(inner slog.Handler, _ int) slog.Handler {
		return inner.WithGroup(name)
	})}
}
