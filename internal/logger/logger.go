// Package logger builds the slog.Logger every command injects into its components.
//
// Output is slog's text format on stdout. When a file path is given, the same
// lines are also written to that file, rotated by size through lumberjack.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the optional log file.
const (
	MaxFileSizeMB = 10
	MaxBackups    = 7
	MaxAgeDays    = 28
)

// New returns a logger at level ("debug", "info", "warn" or "error") writing to
// stdout, and also to file when file is not empty. The returned closer releases
// the file and must be called on exit; it is a no-op without a file.
func New(level, file string) (*slog.Logger, io.Closer, error) {
	return newLogger(os.Stdout, level, file)
}

func newLogger(stdout io.Writer, level, file string) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	var (
		out    = stdout
		closer io.Closer = nopCloser{}
	)
	if file != "" {
		rotator := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    MaxFileSizeMB,
			MaxBackups: MaxBackups,
			MaxAge:     MaxAgeDays,
		}
		out = io.MultiWriter(stdout, rotator)
		closer = rotator
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler), closer, nil
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logger: unknown level %q", level)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
