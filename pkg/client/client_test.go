package client

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("http://127.0.0.1:8000")

	if cfg.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, "http://127.0.0.1:8000")
	}
	if cfg.UserAgent == "" {
		t.Error("DefaultConfig() UserAgent is empty")
	}
	if cfg.MaxRPS != 18 {
		t.Errorf("MaxRPS = %d, want 18", cfg.MaxRPS)
	}
	if cfg.MaxConcurrent != 50 {
		t.Errorf("MaxConcurrent = %d, want 50", cfg.MaxConcurrent)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	if cfg.Policy.ServerErrorWait != 1*time.Second {
		t.Errorf("Policy.ServerErrorWait = %v, want 1s", cfg.Policy.ServerErrorWait)
	}
}

func TestNewValidation(t *testing.T) {
	valid := DefaultConfig("http://127.0.0.1:8000")

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"missing base url", func(c *Config) { c.BaseURL = "" }, true},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"zero rps", func(c *Config) { c.MaxRPS = 0 }, true},
		{"zero concurrency", func(c *Config) { c.MaxConcurrent = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := New(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewStartsIdle(t *testing.T) {
	c, err := New(DefaultConfig("http://127.0.0.1:8000"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if n := c.InFlight(); n != 0 {
		t.Errorf("InFlight() = %d, want 0", n)
	}
}
