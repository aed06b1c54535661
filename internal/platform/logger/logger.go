package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New returns the process logger. COMPLIA_LOG_FORMAT=json switches to JSON
// output; COMPLIA_LOG_LEVEL selects the minimum level (debug|info|warn|error).
func New() *slog.Logger {
	level := parseLevel(os.Getenv("COMPLIA_LOG_LEVEL"))
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv("COMPLIA_LOG_FORMAT"), "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
