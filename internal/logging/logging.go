// Package logging sets up the process logger: text to stdout, and a rotating
// file under the log directory when one is configured.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName   = "linebot.log"
	maxFileSizeMB = 10
	maxBackups    = 5
)

// Options configures the logger
type Options struct {
	Level  string // debug, info, warn, error
	Dir    string // Empty disables file logging
	Stdout io.Writer
}

// New creates the process logger. The returned closer flushes and closes the log file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	var closer io.Closer = nopCloser{}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
		}
		file := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, logFileName),
			MaxSize:    maxFileSizeMB,
			MaxBackups: maxBackups,
		}
		out = io.MultiWriter(out, file)
		closer = file
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: ParseLevel(opts.Level)})
	return slog.New(handler).With("logger", "linebot"), closer, nil
}

// ParseLevel maps a level name to a slog level, defaulting to info
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

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
