package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes and validates a layout document.
func Parse(data []byte) (*Layout, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("layout: document is empty")
	}
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("layout: decode: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks that step names are present and unique and that every key
// carries a keyid.
func (l *Layout) Validate() error {
	seen := make(map[string]struct{}, len(l.Steps))
	for i, step := range l.Steps {
		if step == nil || strings.TrimSpace(step.Name) == "" {
			return fmt.Errorf("layout: steps[%d]: name is required", i)
		}
		if _, dup := seen[step.Name]; dup {
			return fmt.Errorf("layout: step %s is declared more than once", step.Name)
		}
		seen[step.Name] = struct{}{}
	}
	for i, key := range l.Keys {
		if strings.TrimSpace(key.KeyID) == "" {
			return fmt.Errorf("layout: keys[%d]: keyid is required", i)
		}
	}
	return nil
}

// Load reads a layout file. A missing file yields an empty layout named after
// the file so new layouts can be started from the editor.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			base := filepath.Base(path)
			return &Layout{Name: strings.TrimSuffix(base, filepath.Ext(base))}, nil
		}
		return nil, fmt.Errorf("layout: read %s: %w", path, err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("layout: %s: %w", path, err)
	}
	return l, nil
}

// Save validates the layout and writes it to path.
func Save(path string, l *Layout) error {
	if l == nil {
		return fmt.Errorf("layout: nil layout")
	}
	if err := l.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("layout: ensure dir: %w", err)
	}
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("layout: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("layout: write %s: %w", path, err)
	}
	return nil
}
