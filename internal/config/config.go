// Package config holds user preferences for the storefront client,
// stored as YAML in the storefront home directory with environment
// overrides applied on load.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds client settings.
type Config struct {
	// APIBaseURL is the backend root including the /api prefix.
	APIBaseURL string `yaml:"api_base_url"`
	// Theme is "light", "dark" or "auto".
	Theme string `yaml:"theme"`
	// PageSize is the order-history page size.
	PageSize int `yaml:"page_size"`
	// RequestTimeout bounds every backend call.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// Debug enables category file logging under <home>/logs.
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the defaults used when no config file exists.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:     "http://localhost:8080/api",
		Theme:          "auto",
		PageSize:       10,
		RequestTimeout: 30 * time.Second,
	}
}

// DefaultPath returns the config file location inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file, fills unset fields with defaults and
// applies environment overrides. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config as YAML, creating the directory if needed.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnvOverrides lets the environment win over the file. Useful for
// pointing a one-off invocation at a different backend.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("STOREFRONT_API_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("STOREFRONT_THEME"); v != "" {
		c.Theme = v
	}
	if v := os.Getenv("STOREFRONT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RequestTimeout = d
		}
	}
	if v := os.Getenv("STOREFRONT_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
}

// Validate rejects configurations no call path could use.
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url must not be empty")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	switch c.Theme {
	case "light", "dark", "auto":
	default:
		return fmt.Errorf("theme must be light, dark or auto, got %q", c.Theme)
	}
	return nil
}
