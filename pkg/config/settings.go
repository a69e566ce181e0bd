package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is sent with every download. Some dataset hosts reject
// requests carrying Go's default user agent.
const DefaultUserAgent = "Mozilla/5.0"

// Progress modes understood by the CLI.
const (
	ProgressLine = "line"
	ProgressBar  = "bar"
	ProgressNone = "none"
)

// Settings are user-tunable defaults read from the settings file.
// Command-line flags take precedence over them.
type Settings struct {
	DataDir   string `yaml:"data_dir,omitempty" json:"data_dir,omitempty"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	Progress  string `yaml:"progress" json:"progress"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		UserAgent: DefaultUserAgent,
		Progress:  ProgressLine,
		LogLevel:  "info",
	}
}

// Validate checks enumerated fields.
func (s Settings) Validate() error {
	switch s.Progress {
	case ProgressLine, ProgressBar, ProgressNone:
	default:
		return fmt.Errorf("invalid progress mode %q: expected line, bar or none", s.Progress)
	}
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", s.LogLevel)
	}
	if strings.TrimSpace(s.UserAgent) == "" {
		return fmt.Errorf("user_agent must not be empty")
	}
	return nil
}

// LoadSettings reads a YAML or JSON settings file on top of the defaults.
// A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read settings: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(b, &s); err != nil {
			return s, fmt.Errorf("invalid JSON settings file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &s); err != nil {
			return s, fmt.Errorf("invalid YAML settings file: %w", err)
		}
	}

	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes the settings as YAML, creating parent directories.
func SaveSettings(path string, s Settings) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, b, 0644)
}
