// Package config loads the client configuration from YAML with sensible
// defaults, so the TUI runs against a local dev backend with no file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const appDirName = "workpulse-focus"

type Config struct {
	Server ServerConfig `yaml:"server"`
	Timer  TimerConfig  `yaml:"timer"`
	State  StateConfig  `yaml:"state"`
}

type ServerConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type TimerConfig struct {
	// PollInterval is the fixed period of the authoritative refresh.
	PollInterval time.Duration `yaml:"poll_interval"`
	// TickInterval is the period of the local display tick.
	TickInterval time.Duration `yaml:"tick_interval"`
	// DefaultDurationMinutes prefills the start form. 0 means untimed.
	DefaultDurationMinutes int `yaml:"default_duration_minutes"`
}

// UnmarshalYAML accepts durations in Go syntax ("30s", "1m"). Fields left
// out of the file keep whatever value the defaults put there.
func (t *TimerConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		PollInterval           string `yaml:"poll_interval"`
		TickInterval           string `yaml:"tick_interval"`
		DefaultDurationMinutes *int   `yaml:"default_duration_minutes"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.PollInterval != "" {
		d, err := time.ParseDuration(raw.PollInterval)
		if err != nil {
			return fmt.Errorf("poll_interval: %w", err)
		}
		t.PollInterval = d
	}
	if raw.TickInterval != "" {
		d, err := time.ParseDuration(raw.TickInterval)
		if err != nil {
			return fmt.Errorf("tick_interval: %w", err)
		}
		t.TickInterval = d
	}
	if raw.DefaultDurationMinutes != nil {
		t.DefaultDurationMinutes = *raw.DefaultDurationMinutes
	}
	return nil
}

type StateConfig struct {
	// Dir holds the timer slot file. Empty means the XDG state default.
	Dir string `yaml:"dir"`
	// HistoryPath is the SQLite session log. Empty means <state dir>/history.db.
	HistoryPath string `yaml:"history_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL: "http://127.0.0.1:8080",
		},
		Timer: TimerConfig{
			PollInterval:           time.Minute,
			TickInterval:           time.Second,
			DefaultDurationMinutes: 25,
		},
	}
}

// Load reads the config at path, overlaying the defaults. A missing file is
// not an error: the defaults are returned as-is. An empty path means the
// default location (DefaultPath).
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.Timer.PollInterval <= 0 {
		cfg.Timer.PollInterval = time.Minute
	}
	if cfg.Timer.TickInterval <= 0 {
		cfg.Timer.TickInterval = time.Second
	}

	return cfg, nil
}

// DefaultPath returns ~/.config/workpulse-focus/config.yaml, respecting
// XDG_CONFIG_HOME if set.
func DefaultPath() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, appDirName, "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", appDirName, "config.yaml")
}

// WSURL derives the WebSocket notification URL from the server URL.
func (c *Config) WSURL() string {
	u := c.Server.URL
	switch {
	case len(u) >= 8 && u[:8] == "https://":
		return "wss://" + u[8:] + "/ws"
	case len(u) >= 7 && u[:7] == "http://":
		return "ws://" + u[7:] + "/ws"
	default:
		return "ws://" + u + "/ws"
	}
}
