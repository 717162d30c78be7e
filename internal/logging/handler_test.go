package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("handler error")
}

func textAt(buf *bytes.Buffer, lvl slog.Level) slog.Handler {
	return slog.NewTextHandler(buf, &slog.HandlerOptions{Level: lvl})
}

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	var info, debug bytes.Buffer
	multi := NewMultiHandler(nil, textAt(&info, slog.LevelInfo), nil, textAt(&debug, slog.LevelDebug))
	require.Len(t, multi.handlers, 2, "nil sinks are dropped")

	logger := slog.New(multi)
	logger.Debug("recruit scan")
	logger.Info("team formed")

	assert.NotContains(t, info.String(), "recruit scan")
	assert.Contains(t, info.String(), "team formed")
	assert.Contains(t, debug.String(), "recruit scan")

	ctx := context.Background()
	assert.True(t, multi.Enabled(ctx, slog.LevelDebug))
	assert.False(t, NewMultiHandler(textAt(&info, slog.LevelInfo)).Enabled(ctx, slog.LevelDebug))
	assert.False(t, NewMultiHandler().Enabled(ctx, slog.LevelError))
}

func TestMultiHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(textAt(&buf, slog.LevelInfo))

	slog.New(multi.WithAttrs([]slog.Attr{slog.String("component", "scheduler")})).Info("a")
	slog.New(multi.WithGroup("team")).Info("b", "id", 4)

	assert.Contains(t, buf.String(), "component=scheduler")
	assert.Contains(t, buf.String(), "team.id=4")
	assert.Same(t, multi, multi.WithGroup(""))
}

func TestMultiHandler_FailingSink(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(failingHandler{}, textAt(&buf, slog.LevelInfo))

	slog.New(multi).Info("still delivered")
	assert.Contains(t, buf.String(), "still delivered")

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "direct", 0)
	assert.EqualError(t, multi.Handle(context.Background(), r), "handler error")
}

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewContextHandler(slog.NewTextHandler(&buf, nil), func() []slog.Attr {
		return []slog.Attr{slog.Int("frame", 7)}
	})

	slog.New(h.WithAttrs([]slog.Attr{slog.String("component", "team")})).Info("hello")
	assert.Contains(t, buf.String(), "component=team")
	assert.Contains(t, buf.String(), "frame=7")
	assert.Same(t, h, h.WithGroup(""))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))

	buf.Reset()
	slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil), nil)).Info("plain")
	assert.NotContains(t, buf.String(), "frame=")
}
