// Package config provides configuration management for the SENTINEL console.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lvonguyen/sentinel-console/internal/api"
)

// Config holds all console configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	API       api.Config      `yaml:"api"`
	Cache     CacheConfig     `yaml:"cache"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// CacheConfig holds the Redis response cache settings.
type CacheConfig struct {
	Enabled bool            `yaml:"enabled"`
	Redis   api.CacheConfig `yaml:"redis"`
}

// DashboardConfig holds aggregation settings.
type DashboardConfig struct {
	PollInterval  time.Duration `yaml:"poll_interval"`
	TimelineLimit int           `yaml:"timeline_limit"`
	TopThreats    int           `yaml:"top_threats"`
}

// AuthConfig holds session persistence settings.
type AuthConfig struct {
	TokenFile string `yaml:"token_file"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Load reads configuration from a YAML file. SENTINEL_API_URL overrides
// the configured API origin when set.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		API: api.DefaultConfig(),
		Cache: CacheConfig{
			Enabled: false,
			Redis:   api.DefaultCacheConfig(),
		},
		Dashboard: DashboardConfig{
			PollInterval:  60 * time.Second,
			TimelineLimit: 50,
			TopThreats:    20,
		},
		Auth: AuthConfig{
			TokenFile: "sentinel_token",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func (c *Config) applyEnv() {
	if origin := os.Getenv("SENTINEL_API_URL"); origin != "" {
		c.API.BaseURL = origin
	}
}
