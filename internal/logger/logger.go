// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Builds stderr loggers for the CLI and a debug.log file logger for the TUI.

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DebugLogName is the file the TUI logs to inside the config directory
const DebugLogName = "debug.log"

// New returns a logger writing to w.
// level: debug, info, warn, error (default: warn)
// format: text, json (default: text)
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Init configures the default slog logger and returns it.
func Init(w io.Writer, level, format string) *slog.Logger {
	l := New(w, level, format)
	slog.SetDefault(l)
	return l
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OpenFile opens <configDir>/debug.log for appending and returns a logger
// writing to it. The TUI owns the terminal, so its logs go here instead of
// stderr. Callers must Close the returned closer.
// If configDir is empty, logging is disabled.
func OpenFile(configDir, level, format string) (*slog.Logger, io.Closer, error) {
	if configDir == "" {
		return Discard(), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	logPath := filepath.Join(configDir, DebugLogName)
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", logPath, err)
	}

	return New(f, level, format), f, nil
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
