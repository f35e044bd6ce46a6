// Package config handles loading and managing application configuration
// from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values.
type Config struct {
	Port           int      `yaml:"port"`
	DataDir        string   `yaml:"data_dir"`
	LogLevel       string   `yaml:"log_level"`
	FaviconTimeout Duration `yaml:"favicon_timeout"`
	LogoTimeout    Duration `yaml:"logo_timeout"`
}

// Duration is a wrapper around time.Duration that supports YAML unmarshalling
// from human-readable strings like "3s", "500ms".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return &Config{
		Port:           8080,
		DataDir:        filepath.Join(homeDir, ".linkqr"),
		LogLevel:       "info",
		FaviconTimeout: Duration{3 * time.Second},
		LogoTimeout:    Duration{8 * time.Second},
	}
}

// Load reads configuration from the YAML file at path, falling back to
// defaults if the file does not exist. Environment variables with the
// LINKQR_ prefix override any file or default values.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// File doesn't exist — proceed with defaults.
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies LINKQR_* environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LINKQR_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("LINKQR_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LINKQR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LINKQR_FAVICON_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.FaviconTimeout = Duration{d}
		}
	}
	if v := os.Getenv("LINKQR_LOGO_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LogoTimeout = Duration{d}
		}
	}
}

// EnsureDataDir creates the DataDir and its uploads subdirectory if they
// do not already exist.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir %s: %w", c.DataDir, err)
	}
	uploadDir := filepath.Join(c.DataDir, "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return fmt.Errorf("creating upload dir %s: %w", uploadDir, err)
	}
	return nil
}

// UploadDir returns the directory where uploaded logo files are stored.
func (c *Config) UploadDir() string {
	return filepath.Join(c.DataDir, "uploads")
}

// DBPath returns the path of the SQLite database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "linkqr.db")
}
