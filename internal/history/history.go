// Package history keeps the command lines typed into the editor so they can
// be recalled and suggested in later sessions.
package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultLimit bounds how many entries are kept in memory.
const DefaultLimit = 500

// History is an append-only command log backed by a plain text file, one
// entry per line. A History with an empty path only lives in memory.
type History struct {
	path    string
	limit   int
	mu      sync.Mutex
	entries []string
}

// Open loads the most recent entries from path, creating its directory. A
// file holding more than limit entries is rewritten with only the newest.
func Open(path string, limit int) (*History, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	h := &History{path: path, limit: limit}
	if path == "" {
		return h, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: ensure dir: %w", err)
	}
	entries, trimmed, err := h.tail()
	if err != nil {
		return nil, err
	}
	h.entries = entries
	if trimmed {
		if err := h.rewrite(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Path returns the file backing this history.
func (h *History) Path() string {
	if h == nil {
		return ""
	}
	return h.path
}

// Append records a command line. Blank lines and immediate repeats are
// skipped.
func (h *History) Append(line string) {
	if h == nil {
		return
	}
	line = strings.TrimSpace(line)
	if line == "" || strings.ContainsAny(line, "\r\n") {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	h.entries = append(h.entries, line)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	if h.path == "" {
		return
	}
	file, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(line + "\n")
}

// Entries returns the remembered lines, oldest first.
func (h *History) Entries() []string {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Recent returns up to n distinct lines, newest first.
func (h *History) Recent(n int) []string {
	entries := h.Entries()
	if n <= 0 {
		return nil
	}
	seen := make(map[string]struct{}, n)
	var out []string
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		if _, dup := seen[entries[i]]; dup {
			continue
		}
		seen[entries[i]] = struct{}{}
		out = append(out, entries[i])
	}
	return out
}

func (h *History) tail() ([]string, bool, error) {
	file, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("history: open %s: %w", h.path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("history: read %s: %w", h.path, err)
	}
	if len(lines) > h.limit {
		return lines[len(lines)-h.limit:], true, nil
	}
	return lines, false, nil
}

// rewrite replaces the file with the in-memory entries.
func (h *History) rewrite() error {
	tmp, err := os.CreateTemp(filepath.Dir(h.path), filepath.Base(h.path)+".*")
	if err != nil {
		return fmt.Errorf("history: compact %s: %w", h.path, err)
	}
	defer os.Remove(tmp.Name())
	w := bufio.NewWriter(tmp)
	for _, line := range h.entries {
		w.WriteString(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("history: compact %s: %w", h.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("history: compact %s: %w", h.path, err)
	}
	if err := os.Rename(tmp.Name(), h.path); err != nil {
		return fmt.Errorf("history: compact %s: %w", h.path, err)
	}
	return nil
}
