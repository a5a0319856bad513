package telemetry

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The default sink is process-global, so install-once semantics are covered
// by a single sequential test.
func TestInitDefault_InstallsOnce(t *testing.T) {
	require.NoError(t, InitDefault())
	assert.ErrorIs(t, InitDefault(), ErrLoggerInstalled)

	// The installed handler is the trace-correlating wrapper.
	_, ok := slog.Default().Handler().(*TraceHandler)
	assert.True(t, ok)
}

func TestSetLevel(t *testing.T) {
	SetLevel("debug")
	assert.Equal(t, slog.LevelDebug, logLevel.Level())

	SetLevel("nonsense")
	assert.Equal(t, slog.LevelInfo, logLevel.Level())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"TRACE", slog.LevelInfo},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseLevel(tc.in), "level %q", tc.in)
	}
}
