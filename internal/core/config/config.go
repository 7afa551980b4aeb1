// Package config handles configuration loading and validation for toastq.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/toastq/internal/core/notify"
	"github.com/hay-kot/toastq/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	Toasts  ToastsConfig  `yaml:"toasts"`
	History HistoryConfig `yaml:"history"`
	Server  ServerConfig  `yaml:"server"`
	TUI     TUIConfig     `yaml:"tui"`
	DataDir string        `yaml:"-"` // set by caller, not from config file
}

// ToastsConfig configures the notification center.
type ToastsConfig struct {
	Capacity    int                               `yaml:"capacity"`
	RemoveDelay time.Duration                     `yaml:"remove_delay"`
	Durations   map[notify.Severity]time.Duration `yaml:"durations"`
}

// HistoryConfig configures the sqlite notification history.
type HistoryConfig struct {
	Enabled   bool `yaml:"enabled"`
	Retention int  `yaml:"retention"` // rows kept, 0 = unlimited
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

// TUIConfig configures the terminal demo.
type TUIConfig struct {
	Width int    `yaml:"width"` // toast width in cells
	Theme string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Toasts: ToastsConfig{
			Capacity:    notify.MaxNotifications,
			RemoveDelay: notify.DefaultRemoveDelay,
			Durations:   notify.DefaultDurations(),
		},
		History: HistoryConfig{
			Enabled:   true,
			Retention: 500,
		},
		Server: ServerConfig{
			Addr:    ":7878",
			Metrics: true,
		},
		TUI: TUIConfig{
			Width: 50,
			Theme: styles.DefaultTheme,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg, err := Read(configPath, dataDir)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Read is Load without validation.
func Read(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Set after Unmarshal so the file cannot override it
	cfg.DataDir = dataDir

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Toasts.Capacity == 0 {
		c.Toasts.Capacity = defaults.Toasts.Capacity
	}
	if c.Toasts.Durations == nil {
		c.Toasts.Durations = map[notify.Severity]time.Duration{}
	}
	for sev, d := range defaults.Toasts.Durations {
		if _, ok := c.Toasts.Durations[sev]; !ok {
			c.Toasts.Durations[sev] = d
		}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.TUI.Width == 0 {
		c.TUI.Width = defaults.TUI.Width
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// CenterOptions converts the toast settings into notify options.
func (c *Config) CenterOptions() []notify.Option {
	return []notify.Option{
		notify.WithCapacity(c.Toasts.Capacity),
		notify.WithRemoveDelay(c.Toasts.RemoveDelay),
		notify.WithDurations(notify.Durations(c.Toasts.Durations)),
	}
}
