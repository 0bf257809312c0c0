// Package config loads and validates configuration at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
//
// Connection settings come from the environment. Tuning knobs have defaults
// and may be overridden by an optional YAML file named by LISTING_CONFIG.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"careers/listing-service/internal/listing"
)

// Config holds all runtime configuration for the listing service.
type Config struct {
	Port        string `yaml:"-"`
	GRPCPort    string `yaml:"-"`
	DatabaseURL string `yaml:"-"`
	RedisURL    string `yaml:"-"`

	DefaultPageSize int           `yaml:"default_page_size"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	SweepSpec       string        `yaml:"sweep_spec"`
	SearchDebounce  time.Duration `yaml:"search_debounce"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	MaxDBConns      int32         `yaml:"max_db_conns"`

	// ServerURL is where the browse command finds a running instance.
	ServerURL string `yaml:"server_url"`
}

// Defaults returns the tuning defaults.
func Defaults() Config {
	return Config{
		Port:            "8083",
		GRPCPort:        "9093",
		DefaultPageSize: listing.DefaultPageSize,
		CacheTTL:        30 * time.Second,
		SweepSpec:       "@every 1h",
		SearchDebounce:  300 * time.Millisecond,
		HTTPTimeout:     10 * time.Second,
	}
}

// Load reads environment variables, applies the optional YAML overlay and
// returns a validated Config.
func Load() (*Config, error) {
	cfg := Defaults()

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	cfg.Port = getEnv("LISTING_PORT", cfg.Port)
	cfg.GRPCPort = getEnv("LISTING_GRPC_PORT", cfg.GRPCPort)

	if path := os.Getenv("LISTING_CONFIG"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClient reads only what the browse command needs: the base URL of a
// running instance and the tuning file.
func LoadClient() (*Config, error) {
	cfg := Defaults()
	cfg.Port = getEnv("LISTING_PORT", cfg.Port)
	cfg.ServerURL = getEnv("LISTING_URL", "http://localhost:"+cfg.Port)
	if path := os.Getenv("LISTING_CONFIG"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) overlay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// Validate rejects tuning values the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.DefaultPageSize <= 0 || c.DefaultPageSize > listing.MaxPageSize:
		return fmt.Errorf("default_page_size must be in [1, %d], got %d", listing.MaxPageSize, c.DefaultPageSize)
	case c.CacheTTL < 0:
		return fmt.Errorf("cache_ttl must not be negative")
	case c.SweepSpec == "":
		return fmt.Errorf("sweep_spec is required")
	case c.SearchDebounce < 0:
		return fmt.Errorf("search_debounce must not be negative")
	case c.HTTPTimeout <= 0:
		return fmt.Errorf("http_timeout must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
