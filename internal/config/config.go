// Package config handles TOML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Rooms          []string `toml:"rooms"`           // monitored room URLs
	Quality        string   `toml:"quality"`         // preferred quality label
	FetchTimeout   int      `toml:"fetch_timeout"`   // seconds, per page fetch
	CaptchaTimeout int      `toml:"captcha_timeout"` // seconds, interactive resolution
	CheckInterval  int      `toml:"check_interval"`  // seconds between monitor sweeps
	History        bool     `toml:"history"`         // record checks to sqlite
	Debug          bool     `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Quality:        "origin",
		FetchTimeout:   15,
		CaptchaTimeout: 300,
		CheckInterval:  300,
		History:        true,
		Debug:          false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "douyinstream"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "douyinstream"), nil
}

// dataDir returns the XDG-compliant data directory.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "douyinstream"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "douyinstream"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CookiePath returns the path to the persisted cookie jar.
func CookiePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cookies.json"), nil
}

// CachePath returns the path to the adaptive strategy cache.
func CachePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "strategy_cache.json"), nil
}

// HistoryPath returns the path to the check-history database.
func HistoryPath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	validQualities := map[string]bool{
		"origin": true, "uhd": true, "hd": true, "ld": true, "sd": true, "best": true,
	}
	if !validQualities[c.Quality] {
		return fmt.Errorf("unsupported quality %q (valid: origin, uhd, hd, ld, sd, best)", c.Quality)
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %d", c.FetchTimeout)
	}
	if c.CaptchaTimeout <= 0 {
		return fmt.Errorf("captcha_timeout must be positive, got %d", c.CaptchaTimeout)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("check_interval must be positive, got %d", c.CheckInterval)
	}

	return nil
}
