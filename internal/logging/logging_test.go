package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/blink-new/studytrack/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("INFO"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel(""))
}

func TestConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(config.LogConfig{Level: "warn"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("subject", "Physics"))
	closeFn()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "Physics")
}

func TestFileOutputIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "studytrack.log")
	logger, closeFn, err := New(config.LogConfig{Level: "debug", Path: path}, nil)
	require.NoError(t, err)

	logger.Debug("session committed", zap.Int("minutes", 45))
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "session committed", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, float64(45), entry["minutes"])
}

func TestNoOutputsIsNop(t *testing.T) {
	logger, closeFn, err := New(config.LogConfig{}, nil)
	require.NoError(t, err)
	defer closeFn()
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}
