// Package logging configures the process-wide log/slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Setup installs a default slog logger writing to w and returns it.
//
// Level values: "debug", "info", "warn", "error" (default: "warn").
// Format values: "text", "json" (default: "text").
//
// The CLI keeps stdout for its own result line, so callers normally pass
// os.Stderr.
func Setup(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// ParseLevel converts a level name to slog.Level. Unknown names map to warn,
// which keeps a successful run quiet.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// KnownLevel reports whether ParseLevel recognises level.
func KnownLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}
