package infrastructure

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaschooldata/internal/config"
)

func TestInitializeLoggerConsole(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	logger, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	require.NoError(t, err)
	require.NotNil(t, logger)

	// Re-initialization returns the same instance.
	again, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)
	assert.Same(t, logger, again)
}

func TestInitializeLoggerFile(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "file", FilePath: path})
	require.NoError(t, err)

	logger.Info("written to file")
	require.NoError(t, CloseLogFile())
	assert.FileExists(t, path)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "debug", want: "DEBUG"},
		{input: "info", want: "INFO"},
		{input: "warning", want: "WARN"},
		{input: "error", want: "ERROR"},
		{input: "bogus", want: "INFO"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.input).String(), "input %q", tt.input)
	}
}

func TestGetLoggerWithoutInitialization(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	assert.NotNil(t, GetLogger())
}
