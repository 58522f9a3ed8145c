package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Remote    RemoteConfig
	// ViewFile is an optional TOML or YAML file with view settings.
	ViewFile string `envconfig:"MCPVIEW_CONFIG"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	// PublicURL is the externally visible base URL of the host. Empty means
	// it is derived from Host and Port.
	PublicURL string `envconfig:"PUBLIC_URL"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// URL returns the public URL of the host.
func (s ServerConfig) URL() string {
	if s.PublicURL != "" {
		return s.PublicURL
	}
	host := s.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return "http://" + host + ":" + s.Port
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// RemoteConfig holds settings for mediated remote fetches.
type RemoteConfig struct {
	Timeout           time.Duration `envconfig:"REMOTE_TIMEOUT" default:"30s"`
	RequestsPerSecond float64       `envconfig:"REMOTE_RPS" default:"0"`
	UserAgent         string        `envconfig:"REMOTE_USER_AGENT" default:"mcpview/1.0"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Remote: RemoteConfig{
			Timeout:   30 * time.Second,
			UserAgent: "mcpview/1.0",
		},
	}
}
