// Package log sets up telemetry-core's structured logger: rotated-file output
// when a file is configured, otherwise stderr (through a go-colorable writer
// when stderr is a terminal). The text handler adds no color codes. The core is
// stdlib log/slog; color/tty-detection/rotation are layered on top the way
// go-ethereum's own log package wires mattn/go-colorable, mattn/go-isatty,
// and gopkg.in/natefinch/lumberjack.v2 around its handler (see DESIGN.md for
// why slog itself, rather than a third-party structured logger, is the
// core here).
package log

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Level string // debug, info, warn, error
	File  string // empty means stderr
}

// New builds the process-wide logger described by opts.
func New(opts Options) *slog.Logger {
	level := parseLevel(opts.Level)

	var w io.Writer
	switch {
	case opts.File != "":
		w = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
	case isatty.IsTerminal(os.Stderr.Fd()):
		w = colorable.NewColorableStderr()
	default:
		w = os.Stderr
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch s {
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
