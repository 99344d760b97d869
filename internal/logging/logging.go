// Package logging provides structured logging setup using log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// DebugEnvVar enables debug logging when set to "1".
const DebugEnvVar = "BANDWIDTH_MONITOR_DEBUG"

// Level represents the logging verbosity level.
type Level int

const (
	// LevelInfo is the default logging level for normal operation.
	LevelInfo Level = iota
	// LevelDebug enables verbose debug output, including per-tick counter reads.
	LevelDebug
)

// Setup initializes the global slog logger with the specified level.
// Call this once at application startup.
func Setup(level Level) {
	slog.SetDefault(New(os.Stderr, level))
}

// New builds a text logger writing to w at the given level.
func New(w io.Writer, level Level) *slog.Logger {
	slogLevel := slog.LevelInfo
	if level == LevelDebug {
		slogLevel = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel})
	return slog.New(handler)
}

// LevelFromEnv returns the level selected by DebugEnvVar.
func LevelFromEnv() Level {
	if os.Getenv(DebugEnvVar) == "1" {
		return LevelDebug
	}
	return LevelInfo
}

// SetupFromEnv initializes the logger based on environment variables.
// Set BANDWIDTH_MONITOR_DEBUG=1 to enable debug logging.
func SetupFromEnv() {
	Setup(LevelFromEnv())
}
