package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// New creates a JSON logger writing to stdout.
func New(service, level string, loc *time.Location) *slog.Logger {
	return NewWithWriter(service, level, loc, os.Stdout)
}

// NewWithWriter creates a JSON logger writing one object per line to w.
// Timestamps are emitted under "ts" in RFC3339Nano, converted to loc.
func NewWithWriter(service, level string, loc *time.Location, w io.Writer) *slog.Logger {
	if loc == nil {
		loc = time.UTC
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			}
			return a
		},
	})

	l := slog.New(h)
	if service != "" {
		l = l.With(slog.String("service", service))
	}
	return l
}

// ParseLevel maps a textual level to slog.Level, defaulting to info.
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

// Discard returns a logger that drops every record. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
