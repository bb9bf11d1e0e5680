// Package config loads user settings from a JSON file with environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const appName = "rearchive"

// Theme values
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// Config holds the settings read once at startup.
type Config struct {
	Theme         string `json:"theme"`
	LastDirectory string `json:"last_directory"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	LogFile   string `json:"log_file"`

	// Prometheus textfile written on exit, empty disables it
	MetricsFile string `json:"metrics_file"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Theme:         ThemeSystem,
		LastDirectory: home,
		LogLevel:      "info",
		LogFormat:     "console",
		LogFile:       defaultLogFile(),
	}
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName+".log")
	}
	return filepath.Join(dir, appName, appName+".log")
}

// DefaultPath returns $XDG_CONFIG_HOME/rearchive/settings.json or its platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "settings.json")
}

// Load reads path (DefaultPath when empty), applies REARCHIVE_* overrides and validates.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read settings: %w", err)
		default:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
			}
		}
	}

	cfg.Theme = envOr("REARCHIVE_THEME", cfg.Theme)
	cfg.LastDirectory = envOr("REARCHIVE_LAST_DIRECTORY", cfg.LastDirectory)
	cfg.LogLevel = envOr("REARCHIVE_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("REARCHIVE_LOG_FORMAT", cfg.LogFormat)
	cfg.LogFile = envOr("REARCHIVE_LOG_FILE", cfg.LogFile)
	cfg.MetricsFile = envOr("REARCHIVE_METRICS_FILE", cfg.MetricsFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Theme {
	case ThemeSystem, ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("invalid theme %q: must be system, light or dark", c.Theme)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log_format %q: must be console or json", c.LogFormat)
	}
	return nil
}

// ResolveArchivePath makes a relative path absolute against LastDirectory.
func (c *Config) ResolveArchivePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.LastDirectory == "" {
		return p
	}
	return filepath.Join(c.LastDirectory, p)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
