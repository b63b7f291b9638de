package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// ParseLevel maps a config level name to a slog level, defaulting to info.
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

// New returns a logger writing JSON when format is "json" and colored text otherwise.
func New(level, format string, w io.Writer) *slog.Logger {
	logLevel := ParseLevel(level)

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel})
	} else {
		// Colors only when writing straight to a file such as os.Stdout.
		_, isFile := w.(*os.File)
		handler = tint.NewHandler(w, &tint.Options{Level: logLevel, NoColor: !isFile})
	}

	return slog.New(handler)
}
