package logging

import (
	"context"
	"log/slog"
)

type lineKey struct{}

// WithLine tags ctx with the id of the line being processed.
func WithLine(ctx context.Context, lineID string) context.Context {
	return context.WithValue(ctx, lineKey{}, lineID)
}

// LineAttrs is a ContextProvider adding the line id set by WithLine.
func LineAttrs(ctx context.Context) []slog.Attr {
	if id, ok := ctx.Value(lineKey{}).(string); ok && id != "" {
		return []slog.Attr{slog.String("line", id)}
	}
	return nil
}

// ContextProvider returns attributes derived from a record's context.
type ContextProvider func(ctx context.Context) []slog.Attr

// ContextHandler wraps another handler and injects context attributes.
type ContextHandler struct {
	inner    slog.Handler
	provider ContextProvider
}

// NewContextHandler creates a handler that adds context attributes to each record.
func NewContextHandler(inner slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{
		inner:    inner,
		provider: provider,
	}
}

// Enabled delegates to the inner handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds context attributes and delegates to the inner handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil {
		if attrs := h.provider(ctx); len(attrs) > 0 {
			r.AddAttrs(attrs...)
		}
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler with the given attributes.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{
		inner:    h.inner.WithAttrs(attrs),
		provider: h.provider,
	}
}

// WithGroup returns a new ContextHandler with the given group.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{
		inner:    h.inner.WithGroup(name),
		provider: h.provider,
	}
}
