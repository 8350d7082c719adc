// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Provides Init() to configure default logger with level and format from environment.

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init configures the default slog logger based on environment variables.
// SKUMAP_LOG_LEVEL: debug, info, warn, error (default: info)
// SKUMAP_LOG_FORMAT: text, json (default: text)
// Output goes to w; TUI callers pass a file so the terminal stays clean.
func Init(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	level := parseLevel(os.Getenv("SKUMAP_LOG_LEVEL"))
	format := strings.ToLower(os.Getenv("SKUMAP_LOG_FORMAT"))

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
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
