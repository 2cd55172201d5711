// Package config loads the intake client configuration from YAML with
// environment overrides. Missing file means defaults: the client must run
// with zero configuration against the mock backend.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full intake client configuration.
type Config struct {
	// API is the loan-origination backend.
	API struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`

	// Storage is the durable state location.
	Storage struct {
		Dir string `yaml:"dir"`
	} `yaml:"storage"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the zero-configuration setup: mock-friendly base URL and
// a per-user state directory.
func Default() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:8080/api/v1"
	cfg.API.TimeoutSeconds = 30
	cfg.Storage.Dir = defaultStateDir()
	cfg.Log.Level = "info"
	return cfg
}

// Load reads the configuration from config/intake.yaml.
func Load() (*Config, error) {
	return LoadFromPath(filepath.Join("config", "intake.yaml"))
}

// LoadFromPath reads the configuration from a specific path, then applies
// environment overrides.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url is required")
	}
	return cfg, nil
}

// LoadOrDefault loads the config file or falls back to defaults (with env
// overrides) when it does not exist.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = Default()
		cfg.applyEnv()
	}
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("INTAKE_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("INTAKE_API_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.API.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("INTAKE_STORAGE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("INTAKE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".intake"
	}
	return filepath.Join(home, ".intake")
}
