package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Quality != "origin" {
		t.Errorf("default quality = %q, want origin", cfg.Quality)
	}
	if cfg.FetchTimeout != 15 {
		t.Errorf("default fetch_timeout = %d, want 15", cfg.FetchTimeout)
	}
	if cfg.CaptchaTimeout != 300 {
		t.Errorf("default captcha_timeout = %d, want 300", cfg.CaptchaTimeout)
	}
	if !cfg.History {
		t.Error("default history should be true")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"invalid quality", func(c *Config) { c.Quality = "4k" }, true},
		{"valid hd", func(c *Config) { c.Quality = "hd" }, false},
		{"valid best", func(c *Config) { c.Quality = "best" }, false},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }, true},
		{"negative captcha timeout", func(c *Config) { c.CaptchaTimeout = -1 }, true},
		{"zero check interval", func(c *Config) { c.CheckInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromTOML(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	appDir := filepath.Join(tmpDir, "douyinstream")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		t.Fatal(err)
	}

	content := `
rooms = ["https://live.douyin.com/123456"]
quality = "hd"
fetch_timeout = 10
history = false
`
	if err := os.WriteFile(filepath.Join(appDir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(cfg.Rooms) != 1 || cfg.Rooms[0] != "https://live.douyin.com/123456" {
		t.Errorf("rooms = %v, want one configured room", cfg.Rooms)
	}
	if cfg.Quality != "hd" {
		t.Errorf("quality = %q, want hd", cfg.Quality)
	}
	if cfg.FetchTimeout != 10 {
		t.Errorf("fetch_timeout = %d, want 10", cfg.FetchTimeout)
	}
	if cfg.History {
		t.Error("history should be false")
	}
	// Unset fields keep their defaults.
	if cfg.CheckInterval != 300 {
		t.Errorf("check_interval = %d, want default 300", cfg.CheckInterval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not error on missing file: %v", err)
	}
	if cfg.Quality != "origin" {
		t.Errorf("missing file should return defaults, got quality = %q", cfg.Quality)
	}
}

func TestDataPaths(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmpDir)

	cookiePath, err := CookiePath()
	if err != nil {
		t.Fatalf("CookiePath() error: %v", err)
	}
	if cookiePath != filepath.Join(tmpDir, "douyinstream", "cookies.json") {
		t.Errorf("cookie path = %q", cookiePath)
	}

	cachePath, err := CachePath()
	if err != nil {
		t.Fatalf("CachePath() error: %v", err)
	}
	if filepath.Base(cachePath) != "strategy_cache.json" {
		t.Errorf("cache path = %q", cachePath)
	}
}
