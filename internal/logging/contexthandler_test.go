package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextHandler_AddsLineAttr(t *testing.T) {
	var buf bytes.Buffer
	h := NewContextHandler(slog.NewTextHandler(&buf, nil), LineAttrs)
	logger := slog.New(h)

	logger.InfoContext(WithLine(context.Background(), "route-1"), "built")
	assert.Contains(t, buf.String(), "line=route-1")

	buf.Reset()
	logger.Info("plain")
	assert.NotContains(t, buf.String(), "line=")
}

func TestContextHandler_NilProvider(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil), nil))

	logger.Info("passthrough", "k", "v")
	assert.Contains(t, buf.String(), "k=v")
}

func TestContextHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	h := NewContextHandler(slog.NewTextHandler(&buf, nil), LineAttrs)

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("component", "manager")}))
	logger.InfoContext(WithLine(context.Background(), "a"), "msg")
	assert.Contains(t, buf.String(), "component=manager")
	assert.Contains(t, buf.String(), "line=a")

	assert.Same(t, h, h.WithGroup(""))
}

func TestLineAttrs_EmptyID(t *testing.T) {
	assert.Nil(t, LineAttrs(WithLine(context.Background(), "")))
	assert.Nil(t, LineAttrs(context.Background()))
}
