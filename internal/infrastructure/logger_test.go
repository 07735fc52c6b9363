package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabprofile/internal/config"
)

func slogJSON(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, nil))
}

func lastLogEntry(t *testing.T, content []byte) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestInitializeLoggerWritesJSONFile(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "nested", "test.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	entry := lastLogEntry(t, content)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestRunIDInjection(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	var buf bytes.Buffer
	consoleWriter = &buf

	logger, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)

	ctx := WithRunID(context.Background(), "run-123")
	logger.InfoContext(ctx, "stage done")

	entry := lastLogEntry(t, buf.Bytes())
	assert.Equal(t, "run-123", entry["run_id"])

	buf.Reset()
	WithComponent(logger, "loader").InfoContext(context.Background(), "no run")
	entry = lastLogEntry(t, buf.Bytes())
	assert.NotContains(t, entry, "run_id")
	assert.Equal(t, "loader", entry["component"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"error", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			ResetLoggerForTesting()
			defer ResetLoggerForTesting()

			var buf bytes.Buffer
			consoleWriter = &buf

			logger, err := InitializeLogger(config.LoggingConfig{Level: tt.level, Output: "console"})
			require.NoError(t, err)

			switch tt.level {
			case "debug":
				logger.Debug("test debug")
			case "info":
				logger.Info("test info")
			case "warn":
				logger.Warn("test warn")
			case "error":
				logger.Error("test error")
			}

			entry := lastLogEntry(t, buf.Bytes())
			assert.Equal(t, tt.expected, entry["level"])
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	var buf bytes.Buffer
	consoleWriter = &buf

	logger, err := InitializeLogger(config.LoggingConfig{Level: "warn", Output: "console"})
	require.NoError(t, err)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())
	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestRunIDHelpers(t *testing.T) {
	assert.Empty(t, GetRunID(context.Background()))

	ctx := EnsureRunID(context.Background())
	runID := GetRunID(ctx)
	assert.NotEmpty(t, runID)
	assert.Equal(t, runID, GetRunID(EnsureRunID(ctx)), "existing run ID must be kept")
	assert.NotEqual(t, GenerateRunID(), GenerateRunID())
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := slogJSON(&buf)

	assert.Same(t, logger, WithError(logger, nil))

	WithError(logger, errors.New("boom")).Info("failed")
	entry := lastLogEntry(t, buf.Bytes())
	assert.Equal(t, "boom", entry["error"])
}
