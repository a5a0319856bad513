package telemetry

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var (
	loggerInstalled atomic.Bool

	// logLevel backs the installed handler so the level can be adjusted
	// after install (config file / --log-level) without re-wiring the sink.
	logLevel slog.LevelVar
)

// ErrLoggerInstalled is returned when InitDefault is called twice. The sink
// is process-wide and installed exactly once, by the bootstrap sequencer.
var ErrLoggerInstalled = errors.New("telemetry: default logger already installed")

// InitDefault installs the process-wide default logger sink: JSON records on
// stdout with trace correlation, at info level until SetLevel says otherwise.
// It is parameterless and is called exactly once, as bootstrap step 2, after
// the runtime patches are linked. No code may emit log records before this
// returns.
func InitDefault() error {
	if !loggerInstalled.CompareAndSwap(false, true) {
		return ErrLoggerInstalled
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: &logLevel})
	slog.SetDefault(slog.New(NewTraceHandler(handler)))
	return nil
}

// SetLevel adjusts the installed sink's level. Unknown strings fall back to
// info.
func SetLevel(level string) {
	logLevel.Set(ParseLevel(level))
}

// ParseLevel maps a config/flag level string to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
