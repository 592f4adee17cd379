package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewAppendsToLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := New(dir, slog.LevelInfo, false)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("editing step", "step", "clone")
	logger.Debug("hidden")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "editing step") || !strings.Contains(string(data), "clone") {
		t.Fatalf("log missing entry: %q", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatalf("debug entry should be filtered: %q", data)
	}
}

func TestJSONLogFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir, slog.LevelDebug, true)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("dispatch", "verb", "back")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", data, err)
	}
	if entry["verb"] != "back" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestTextHandler(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newHandler(&buf, slog.LevelInfo, false)).Info("editing step", "step", "clone")
	if !strings.Contains(buf.String(), "step=clone") {
		t.Fatalf("expected text output, got %q", buf.String())
	}
}

func TestDiscardAndNilClose(t *testing.T) {
	Discard().Info("ignored")
	var l *Logger
	if err := l.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
	if err := Discard().Close(); err != nil {
		t.Fatalf("discard close: %v", err)
	}
}
