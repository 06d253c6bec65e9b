// Package config loads the qrelay client configuration. Files are accepted
// in YAML or JSON with the same keys as the legacy config.json layout, so
// existing configs keep working unchanged.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// DefaultTimeoutSeconds is applied when timeout_seconds is unset.
const DefaultTimeoutSeconds = 30

// DefaultJournalPath is the default relative path of the local result journal.
const DefaultJournalPath = ".qrelay/qrelay.db"

// BuildVersionField overrides the custom field used for build version
// properties on created test runs.
type BuildVersionField struct {
	ID        int64  `json:"id" yaml:"id"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Value     string `json:"value,omitempty" yaml:"value,omitempty"`
	ValueName string `json:"value_name,omitempty" yaml:"value_name,omitempty"`
}

// Config is the qrelay client configuration.
type Config struct {
	QTestURL          string             `json:"qtest_url" yaml:"qtest_url"`
	APIToken          string             `json:"api_token" yaml:"api_token"`
	ProjectID         int64              `json:"project_id" yaml:"project_id"`
	LogLevel          string             `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFormat         string             `json:"log_format,omitempty" yaml:"log_format,omitempty"`
	TimeoutSeconds    int                `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	JournalPath       string             `json:"journal_path,omitempty" yaml:"journal_path,omitempty"`
	BuildVersionField *BuildVersionField `json:"build_version_field,omitempty" yaml:"build_version_field,omitempty"`
}

// LoadFromPath reads a config file (YAML or JSON) and returns the parsed Config.
// Format is detected by extension (.yaml/.yml → YAML, .json → JSON) or by content (first non-whitespace char).
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses config from bytes. ext is the file extension (e.g. ".json", ".yaml") for format hint; empty = detect from content.
func Load(data []byte, ext string) (*Config, error) {
	cfg, err := parse(data, ext)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(data []byte, ext string) (*Config, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext == ".yaml" {
		var c Config
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
		return &c, nil
	}
	if ext == ".json" {
		var c Config
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
		return &c, nil
	}
	// Detect: try JSON first (starts with {), else YAML
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var c Config
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
		return &c, nil
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.JournalPath == "" {
		c.JournalPath = DefaultJournalPath
	}
}

// Validate reports the first missing required field.
func (c *Config) Validate() error {
	if c.QTestURL == "" {
		return fmt.Errorf("config: qtest_url is required")
	}
	if c.APIToken == "" {
		return fmt.Errorf("config: api_token is required")
	}
	if c.ProjectID <= 0 {
		return fmt.Errorf("config: project_id is required")
	}
	return nil
}

// Timeout returns the configured per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DefaultPath returns the first config file present among the conventional
// names, or "config.yaml" when none exists yet.
func DefaultPath() string {
	for _, name := range []string{"config.yaml", "config.yml", "config.json"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return "config.yaml"
}
