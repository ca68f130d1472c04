package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/lmittmann/tint"
)

const (
	FormatAuto  = ""
	FormatText  = "text"
	FormatJSON  = "json"
	FormatCloud = "cloud"
)

// ParseLevel maps a level name to a slog level. Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// Initialize sets up the global slog logger on stderr.
// The auto format picks the colored console handler on terminals and JSON elsewhere.
func Initialize(level, format string) *slog.Logger {
	logger := slog.New(newHandler(os.Stderr, ParseLevel(level), format, lib.IsTerminal(os.Stderr)))
	slog.SetDefault(logger)
	slog.Debug("logger initialized", "level", level, "format", format)

	return logger
}

func newHandler(w io.Writer, level slog.Level, format string, tty bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case FormatJSON, FormatCloud:
		return slog.NewJSONHandler(w, opts)
	case FormatText:
		return tint.NewHandler(w, &tint.Options{Level: level, TimeFormat: time.TimeOnly, NoColor: !tty})
	}

	if tty {
		return tint.NewHandler(w, &tint.Options{Level: level, TimeFormat: time.TimeOnly})
	}
	return slog.NewJSONHandler(w, opts)
}
