package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output: %s", buf.String())
	return entry
}

func TestDispatcherLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*DispatcherLogger)
		level string
		msg   string
		extra map[string]any
	}{
		{
			name:  "debug",
			log:   func(dl *DispatcherLogger) { dl.Debug("command queued", "command", "tick", "depth", 42) },
			level: "debug",
			msg:   "command queued",
			extra: map[string]any{"command": "tick", "depth": float64(42)},
		},
		{
			name:  "info",
			log:   func(dl *DispatcherLogger) { dl.Info("scenario started", "scenario", "SCG01EA.INI") },
			level: "info",
			msg:   "scenario started",
			extra: map[string]any{"scenario": "SCG01EA.INI"},
		},
		{
			name:  "error",
			log:   func(dl *DispatcherLogger) { dl.Error("command failed", "code", 500, "reason", "internal") },
			level: "error",
			msg:   "command failed",
			extra: map[string]any{"code": float64(500), "reason": "internal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

			tt.log(dl)

			entry := decodeEntry(t, &buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, tt.msg, entry["message"])
			for k, v := range tt.extra {
				assert.Equal(t, v, entry[k], k)
			}
		})
	}
}

func TestDispatcherLogger_NoKeyValues(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf))

	dl.Info("simple message")

	assert.Equal(t, "simple message", decodeEntry(t, &buf)["message"])
}

func TestDispatcherLogger_DropsDanglingKey(t *testing.T) {
	fields := toFields([]any{"a", 1, 2, "b", "dangling"})
	assert.Equal(t, map[string]any{"a": 1}, fields)
}

func TestNewZerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerolog(&buf, "warn")

	logger.Info().Msg("filtered")
	assert.Empty(t, buf.String())

	logger.Warn().Str("bucket", "rasim").Msg("kept")
	entry := decodeEntry(t, &buf)
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "rasim", entry["bucket"])
	assert.Contains(t, entry, "time")

	assert.Equal(t, zerolog.InfoLevel, NewZerolog(&buf, "bogus").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewZerolog(&buf, "").GetLevel())
}

func TestDispatcherLogger_TagsComponent(t *testing.T) {
	var buf bytes.Buffer
	NewDispatcherLogger(zerolog.New(&buf)).Info("command complete", "command", ":TICK:")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "dispatcher", entry["component"])
	assert.Equal(t, ":TICK:", entry["command"])
}
