// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration for the API server.
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	// AuthSecret signs session tokens. The server refuses to start
	// without it.
	AuthSecret string        `env:"AUTH_SECRET"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	DatabaseDSN string `env:"DATABASE_DSN"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// RedisAddr is optional; without it revocation falls back to a
	// process-local ledger, which does not survive restarts and does not
	// propagate across replicas.
	RedisAddr string `env:"REDIS_ADDR"`

	Minio MinioConfig `envPrefix:"MINIO_"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
	MaxBodyBytes   int64   `env:"MAX_BODY_BYTES" envDefault:"10485760"`

	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" envDefault:"10s"`
}

// MinioConfig configures optional object storage for product images.
// Image upload is disabled when Endpoint is empty.
type MinioConfig struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET" envDefault:"supernova"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// Enabled reports whether object storage is configured.
func (c MinioConfig) Enabled() bool { return c.Endpoint != "" }

// Load reads configuration from the environment and validates the fields the
// server cannot run without.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.AuthSecret == "" {
		return nil, errors.New("AUTH_SECRET is required")
	}
	if cfg.DatabaseDSN == "" {
		return nil, errors.New("DATABASE_DSN is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("SESSION_TTL must be positive")
	}
	return cfg, nil
}
