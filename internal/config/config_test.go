package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "http://127.0.0.1:8080" {
		t.Errorf("URL = %q", cfg.Server.URL)
	}
	if cfg.Timer.PollInterval != time.Minute {
		t.Errorf("PollInterval = %v, want 1m", cfg.Timer.PollInterval)
	}
	if cfg.Timer.TickInterval != time.Second {
		t.Errorf("TickInterval = %v, want 1s", cfg.Timer.TickInterval)
	}
	if cfg.Timer.DefaultDurationMinutes != 25 {
		t.Errorf("DefaultDurationMinutes = %d, want 25", cfg.Timer.DefaultDurationMinutes)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  url: https://hr.example.com
  token: secret
timer:
  poll_interval: 30s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "https://hr.example.com" {
		t.Errorf("URL = %q", cfg.Server.URL)
	}
	if cfg.Server.Token != "secret" {
		t.Errorf("Token = %q", cfg.Server.Token)
	}
	if cfg.Timer.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.Timer.PollInterval)
	}
	// Unset fields keep their defaults.
	if cfg.Timer.TickInterval != time.Second {
		t.Errorf("TickInterval = %v, want 1s", cfg.Timer.TickInterval)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\t not yaml ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want error for invalid yaml")
	}
}

func TestWSURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://127.0.0.1:8080", "ws://127.0.0.1:8080/ws"},
		{"https://hr.example.com", "wss://hr.example.com/ws"},
		{"127.0.0.1:9000", "ws://127.0.0.1:9000/ws"},
	}
	for _, tt := range tests {
		cfg := &Config{Server: ServerConfig{URL: tt.url}}
		if got := cfg.WSURL(); got != tt.want {
			t.Errorf("WSURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
