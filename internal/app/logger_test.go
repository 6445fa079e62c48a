package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerToJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, &Config{LogFormat: "json", LogLevel: "warn"})

	logger.Info("dropped")
	logger.Warn("amount read as zero or truncated", slog.String("dataset", "summary"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "summary", entry["dataset"])
	assert.NotContains(t, buf.String(), "dropped")
}

func TestLogLevelDefaultsToInfo(t *testing.T) {
	var cfg *Config
	assert.Equal(t, slog.LevelInfo, cfg.logLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "loud"}).logLevel())
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "debug"}).logLevel())
}
