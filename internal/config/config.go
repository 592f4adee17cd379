// internal/config/config.go
//
// This package handles configuration and the .designer directory structure.
// Every project that uses the designer gets a .designer/ folder in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DesignerDir is the name of the directory we create in each project
	DesignerDir = ".designer"

	defaultLayoutFile   = "layout.yaml"
	defaultPromptLabel  = "designer"
	defaultHistoryFile  = "state/history"
	defaultHistoryLimit = 500
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
)

const defaultProjectConfigYAML = `# layout designer project configuration
version: 1

# Layout file edited when --layout is not given. Relative to the project root.
layout: layout.yaml

prompt:
  # Text shown before the layout name in the prompt.
  label: designer

history:
  # Relative paths live under .designer/.
  file: state/history
  limit: 500

log:
  # debug, info, warn or error
  level: info
  # text or json
  format: text
`

// PromptConfig controls the editor prompt.
type PromptConfig struct {
	Label string `yaml:"label"`
}

// HistoryConfig controls where typed commands are remembered.
type HistoryConfig struct {
	File  string `yaml:"file"`
	Limit int    `yaml:"limit"`
}

// LogConfig controls the session log.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ProjectConfig models .designer/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	Layout  string        `yaml:"layout"`
	Prompt  PromptConfig  `yaml:"prompt"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
}

// envOverrides are read from the process environment after the file.
type envOverrides struct {
	Layout       string `env:"DESIGNER_LAYOUT"`
	HistoryLimit *int   `env:"DESIGNER_HISTORY_LIMIT"`
	LogLevel     string `env:"DESIGNER_LOG_LEVEL"`
	LogFormat    string `env:"DESIGNER_LOG_FORMAT"`
}

// Config holds the runtime configuration for the designer.
type Config struct {
	// ProjectDir is the directory the designer was started from
	ProjectDir string

	// DesignerProjectDir is ProjectDir/.designer
	DesignerProjectDir string

	Project ProjectConfig
}

// InitDesignerDir creates the .designer directory structure in the given
// project directory.
//
// Structure created:
// .designer/
// ├── config.yaml
// ├── logs/   <- session logs
// └── state/  <- command history
func InitDesignerDir(projectDir string) error {
	designerDir := filepath.Join(projectDir, DesignerDir)
	dirs := []string{
		filepath.Join(designerDir, "logs"),
		filepath.Join(designerDir, "state"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(designerDir, "config.yaml"))
}

// NewConfig loads .designer/config.yaml (defaults when missing) and applies
// environment overrides.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:         projectDir,
		DesignerProjectDir: filepath.Join(projectDir, DesignerDir),
		Project:            defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.DesignerProjectDir, "logs")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.DesignerProjectDir, "config.yaml")
}

// LayoutPath returns the absolute path of the default layout file.
func (c *Config) LayoutPath() string {
	return c.Project.Layout
}

// HistoryPath returns the absolute path of the history file.
func (c *Config) HistoryPath() string {
	return c.Project.History.File
}

// HistoryLimit returns how many history entries are kept.
func (c *Config) HistoryLimit() int {
	return c.Project.History.Limit
}

// PromptLabel returns the prompt label.
func (c *Config) PromptLabel() string {
	return c.Project.Prompt.Label
}

// LogJSON reports whether the session log is written as JSON lines.
func (c *Config) LogJSON() bool {
	return c.Project.Log.Format == "json"
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Project.Log.Level)
	return level
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Project.normalize(c.ProjectDir, c.DesignerProjectDir)
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir, c.DesignerProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	if overrides.Layout != "" {
		c.Project.Layout = resolvePath(c.ProjectDir, overrides.Layout)
	}
	if overrides.HistoryLimit != nil {
		c.Project.History.Limit = *overrides.HistoryLimit
	}
	if overrides.LogLevel != "" {
		c.Project.Log.Level = strings.ToLower(strings.TrimSpace(overrides.LogLevel))
	}
	if overrides.LogFormat != "" {
		c.Project.Log.Format = strings.ToLower(strings.TrimSpace(overrides.LogFormat))
	}
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Layout:  defaultLayoutFile,
		Prompt:  PromptConfig{Label: defaultPromptLabel},
		History: HistoryConfig{File: defaultHistoryFile, Limit: defaultHistoryLimit},
		Log:     LogConfig{Level: defaultLogLevel, Format: defaultLogFormat},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Layout) == "" {
		pc.Layout = defaultLayoutFile
	}
	if strings.TrimSpace(pc.Prompt.Label) == "" {
		pc.Prompt.Label = defaultPromptLabel
	}
	if strings.TrimSpace(pc.History.File) == "" {
		pc.History.File = defaultHistoryFile
	}
	if pc.History.Limit == 0 {
		pc.History.Limit = defaultHistoryLimit
	}
	if strings.TrimSpace(pc.Log.Level) == "" {
		pc.Log.Level = defaultLogLevel
	}
	if strings.TrimSpace(pc.Log.Format) == "" {
		pc.Log.Format = defaultLogFormat
	}
}

func (pc *ProjectConfig) normalize(projectDir, designerDir string) {
	pc.Layout = resolvePath(projectDir, pc.Layout)
	pc.History.File = resolvePath(designerDir, pc.History.File)
	pc.Prompt.Label = strings.TrimSpace(pc.Prompt.Label)
	pc.Log.Level = strings.ToLower(strings.TrimSpace(pc.Log.Level))
	pc.Log.Format = strings.ToLower(strings.TrimSpace(pc.Log.Format))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.History.Limit < 0 {
		return fmt.Errorf("history.limit must be >= 0")
	}
	if _, err := parseLevel(pc.Log.Level); err != nil {
		return err
	}
	if pc.Log.Format != "text" && pc.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json (got %q)", pc.Log.Format)
	}
	return nil
}

func parseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level must be debug, info, warn or error (got %q)", value)
	}
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}
