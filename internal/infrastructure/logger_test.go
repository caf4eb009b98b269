package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nplreport/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")

	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(content), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestRunContextInjection(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)

	ctx := WithRunID(context.Background(), "run-123")
	ctx = WithReportDate(ctx, "20240115")
	logger.InfoContext(ctx, "with run")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "run-123", entry["run_id"])
	assert.Equal(t, "20240115", entry["report_date"])
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "text", Output: "console"}, &buf)
	require.NoError(t, err)

	WithComponent(logger, "loader").Info("hello")

	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "component=loader")
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level   string
		debug   bool
		warning bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, true},
		{"error", false, false},
		{"bogus", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewLogger(config.LoggingConfig{Level: tt.level, Format: "json"}, &buf)
			require.NoError(t, err)

			logger.Debug("debug line")
			logger.Warn("warn line")

			assert.Equal(t, tt.debug, strings.Contains(buf.String(), "debug line"))
			assert.Equal(t, tt.warning, strings.Contains(buf.String(), "warn line"))
		})
	}
}

func TestRunIDs(t *testing.T) {
	ctx := EnsureRunID(context.Background())
	id := GetRunID(ctx)
	assert.Len(t, id, 36)
	assert.Equal(t, id, GetRunID(EnsureRunID(ctx)))
	assert.NotEqual(t, id, GenerateRunID())
	assert.Empty(t, GetReportDate(ctx))
}

func TestOpenLogFileFailsOnDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := NewLogger(config.LoggingConfig{Output: "file", FilePath: dir}, &bytes.Buffer{})
	assert.Error(t, err)
}
