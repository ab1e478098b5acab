// Package logger builds the application's observability handle: a slog
// logger writing to the console and, optionally, to a rotating file.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FilePrefix names the log file inside the log directory
const FilePrefix = "vocab-flashcards"

// Options configures New
type Options struct {
	Level      string
	Dir        string // Empty disables the file sink
	MaxAgeDays int
	Console    io.Writer // Defaults to os.Stderr
}

// Logger is a slog.Logger that owns its file sink
type Logger struct {
	*slog.Logger
	file *lumberjack.Logger
}

// New creates a Logger. Close must be called on exit to flush the file sink.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	l := &Logger{}
	out := console
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		l.file = &lumberjack.Logger{
			Filename:  filepath.Join(opts.Dir, FilePrefix+".log"),
			MaxSize:   10, // megabytes
			MaxAge:    opts.MaxAgeDays,
			LocalTime: true,
		}
		out = io.MultiWriter(console, l.file)
	}

	l.Logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	l.Info("logger initialized",
		"level", level.String(),
		"log_dir", opts.Dir,
		"file_enabled", l.file != nil,
	)
	return l, nil
}

// Discard returns a Logger that drops everything
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// Close flushes and closes the file sink, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel maps debug/info/warn/error (any case) to a slog level.
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
