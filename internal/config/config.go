package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmtree/internal/favicon"
	"github.com/nikbrunner/bmtree/internal/store"
)

// Config holds application configuration.
type Config struct {
	DefaultRootTitle   string   `json:"defaultRootTitle"`
	FetchIcons         bool     `json:"fetchIcons"`
	IconConcurrency    int      `json:"iconConcurrency"`
	IconTimeoutSeconds int      `json:"iconTimeoutSeconds"`
	IconSources        []string `json:"iconSources"`
	LogLevel           string   `json:"logLevel"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DefaultRootTitle:   store.DefaultRootTitle,
		FetchIcons:         false,
		IconConcurrency:    favicon.DefaultConcurrency,
		IconTimeoutSeconds: 10,
		IconSources:        append([]string(nil), favicon.DefaultSources...),
		LogLevel:           "info",
	}
}

// IconTimeout returns the per-request icon timeout.
func (c *Config) IconTimeout() time.Duration {
	return time.Duration(c.IconTimeoutSeconds) * time.Second
}

// SlogLevel maps LogLevel to a slog.Level. Unknown names are an error.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if config.DefaultRootTitle == "" {
		config.DefaultRootTitle = defaults.DefaultRootTitle
	}
	if config.IconConcurrency <= 0 {
		config.IconConcurrency = defaults.IconConcurrency
	}
	if config.IconTimeoutSeconds <= 0 {
		config.IconTimeoutSeconds = defaults.IconTimeoutSeconds
	}
	if config.IconSources == nil {
		config.IconSources = defaults.IconSources
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	return &config, nil
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path: ~/.config/bmtree/config.json
func DefaultConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmtree", "config.json"), nil
}
