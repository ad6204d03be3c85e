// Package logging builds the slog logger used by the binaries: a text handler
// writing to stdout and, optionally, to a size-rotated log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is one of DEBUG, INFO, WARN, ERROR (case-insensitive). Anything
	// else falls back to INFO.
	Level string
	// File is the path of the rotating log file. Empty disables it.
	File string
	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int
	// Backups is the number of rotated files kept.
	Backups int
	// Console receives a copy of every record. Defaults to os.Stdout.
	Console io.Writer
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates the logger described by opts. The returned closer releases the
// log file and must be called on shutdown.
func New(opts Options) (*slog.Logger, io.Closer) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	var (
		out              = console
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.Backups,
		}
		out = io.MultiWriter(console, file)
		closer = file
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})
	return slog.New(handler), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
