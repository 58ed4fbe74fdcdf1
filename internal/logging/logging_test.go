package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/kestrel/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.name))
		})
	}
}

func TestNew_FileSink_WritesJSON(t *testing.T) {
	t.Setenv(DebugEnv, "")
	path := filepath.Join(t.TempDir(), "nested", "kestrel.log")
	var stderr bytes.Buffer

	logger, closeFn, err := New(config.LogConfig{Level: "info", File: path}, &stderr)
	require.NoError(t, err)

	logger.Info("dispatch finished", "tool", "bash")
	logger.Debug("dropped")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &record))
	assert.Equal(t, "dispatch finished", record["msg"])
	assert.Equal(t, "bash", record["tool"])
	assert.Empty(t, stderr.String())
}

func TestNew_StderrSink_FansOut(t *testing.T) {
	t.Setenv(DebugEnv, "")
	path := filepath.Join(t.TempDir(), "kestrel.log")
	var stderr bytes.Buffer

	logger, closeFn, err := New(config.LogConfig{Level: "warn", File: path, Stderr: true}, &stderr)
	require.NoError(t, err)
	defer closeFn()

	logger.Warn("provider retry")
	logger.Info("ignored")

	assert.Contains(t, stderr.String(), "provider retry")
	assert.NotContains(t, stderr.String(), "ignored")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "provider retry")
}

func TestNew_DebugEnv_EnablesStderrAtDebug(t *testing.T) {
	t.Setenv(DebugEnv, "1")
	var stderr bytes.Buffer

	logger, _, err := New(config.LogConfig{Level: "error"}, &stderr)
	require.NoError(t, err)

	logger.Debug("step started")
	assert.Contains(t, stderr.String(), "step started")
}

func TestNew_NoSinks_Discards(t *testing.T) {
	t.Setenv(DebugEnv, "")
	var stderr bytes.Buffer

	logger, closeFn, err := New(config.LogConfig{Level: "info"}, &stderr)
	require.NoError(t, err)
	require.NoError(t, closeFn())

	logger.Error("nowhere")
	assert.Empty(t, stderr.String())
}
