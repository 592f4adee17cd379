package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the log file created inside the logs directory.
const FileName = "designer.log"

// Logger is a structured logger that appends to logs/designer.log so users
// can inspect a session after the terminal is gone.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New opens (or reuses) the log file under logDir. Entries are JSON lines when
// jsonOutput is set and slog text otherwise.
func New(logDir string, level slog.Level, jsonOutput bool) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{
		Logger: slog.New(newHandler(f, level, jsonOutput)),
		file:   f,
	}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func newHandler(w io.Writer, level slog.Level, jsonOutput bool) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if jsonOutput {
		return slog.NewJSONHandler(w, options)
	}
	return slog.NewTextHandler(w, options)
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
