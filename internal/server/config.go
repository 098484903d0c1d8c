package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server settings loaded from YAML. Timeouts are plain
// seconds in the file.
type Config struct {
	Addr                string `yaml:"addr"`
	LogLevel            string `yaml:"log_level"`
	DefaultTopK         int    `yaml:"default_top_k"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Addr:                ":8080",
		LogLevel:            "info",
		DefaultTopK:         10,
		ReadTimeoutSeconds:  30,
		WriteTimeoutSeconds: 60,
		IdleTimeoutSeconds:  120,
	}
}

// ReadTimeout returns the read timeout as a duration.
func (c Config) ReadTimeout() time.Duration { return time.Duration(c.ReadTimeoutSeconds) * time.Second }

// WriteTimeout returns the write timeout as a duration.
func (c Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// IdleTimeout returns the idle timeout as a duration.
func (c Config) IdleTimeout() time.Duration { return time.Duration(c.IdleTimeoutSeconds) * time.Second }

// LoadConfig reads a YAML config file and overlays it on the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("server: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("server: parse config: %w", err)
	}
	if cfg.DefaultTopK <= 0 {
		return cfg, fmt.Errorf("server: default_top_k must be positive, got %d", cfg.DefaultTopK)
	}
	if cfg.Addr == "" {
		return cfg, fmt.Errorf("server: addr must not be empty")
	}
	return cfg, nil
}
