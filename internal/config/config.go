// Package config loads host-level configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig
	Bridge    BridgeConfig
	Runtime   RuntimeConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// BridgeConfig holds messaging channel configuration.
type BridgeConfig struct {
	AllowedOrigins  []string `envconfig:"BRIDGE_ALLOWED_ORIGINS" default:"http://localhost"`
	ThrottleMs      int      `envconfig:"BRIDGE_THROTTLE_MS" default:"150"`
	RequireSketchID bool     `envconfig:"BRIDGE_REQUIRE_SKETCH_ID" default:"false"`
}

// ThrottleWindow returns the resize throttle window as a duration.
func (b BridgeConfig) ThrottleWindow() time.Duration {
	return time.Duration(b.ThrottleMs) * time.Millisecond
}

// RuntimeConfig holds headless execution limits.
type RuntimeConfig struct {
	TimeoutMs    int `envconfig:"RUNTIME_TIMEOUT_MS" default:"5000"`
	MaxCallStack int `envconfig:"RUNTIME_MAX_CALL_STACK" default:"1024"`
}

// Timeout returns the execution timeout as a duration.
func (r RuntimeConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMs) * time.Millisecond
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
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
			Port: "8080",
			Host: "0.0.0.0",
		},
		Bridge: BridgeConfig{
			AllowedOrigins:  []string{"http://localhost"},
			ThrottleMs:      150,
			RequireSketchID: false,
		},
		Runtime: RuntimeConfig{
			TimeoutMs:    5000,
			MaxCallStack: 1024,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}
