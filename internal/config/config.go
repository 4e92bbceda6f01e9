// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every knob the server reads from the environment.
type Config struct {
	Addr        string `env:"ADDR" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	// SessionSecret is hashed with SHA-256 to derive the 32-byte AEAD key.
	SessionSecret string `env:"SESSION_SECRET,notEmpty"`
	// SessionTimeoutMS is the session TTL in milliseconds.
	SessionTimeoutMS int64 `env:"SESSION_TIMEOUT" envDefault:"1800000"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	OIDCIssuer       string `env:"OIDC_ISSUER"`
	OIDCClientID     string `env:"OIDC_CLIENT_ID"`
	OIDCClientSecret string `env:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string `env:"OIDC_REDIRECT_URL"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionTimeoutMS <= 0 {
		return Config{}, fmt.Errorf("SESSION_TIMEOUT must be positive, got %d", cfg.SessionTimeoutMS)
	}
	return cfg, nil
}

// SessionTTL returns the configured session lifetime.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTimeoutMS) * time.Millisecond
}

// SSOEnabled reports whether OIDC login is configured.
func (c Config) SSOEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}
