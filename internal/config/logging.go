package config

import (
	"io"
	"log/slog"
	"os"

	"github.com/natefinch/lumberjack"
)

// NewLogger builds the process logger described by c. When a log file is
// configured, the returned closer releases it; otherwise it is a no-op.
func NewLogger(c LogConfig) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if c.File != "" {
		l := &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSizeMB, // megabytes
			MaxAge:     c.MaxAgeDays,
			MaxBackups: c.MaxBackups,
		}
		out, closer = l, l
	}

	return newLogger(c.Level, c.Format, out), closer
}

func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	return slog.New(handler)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
