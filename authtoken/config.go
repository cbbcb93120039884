package authtoken

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const minSecretLength = 32

// Config holds the configuration for token generation and verification.
//
// Access and refresh tokens use distinct signing secrets so that a leaked
// access-signing key cannot mint refresh tokens.
type Config struct {
	AccessToken  AccessConfig
	RefreshToken RefreshConfig
}

// AccessConfig holds configuration specific to access tokens.
//
// Fields:
//   - Secret: HMAC signing secret (min 32 bytes)
//   - TTL: Token validity duration
type AccessConfig struct {
	Secret string
	TTL    time.Duration
}

// RefreshConfig holds configuration specific to refresh tokens.
//
// Fields:
//   - Secret: HMAC signing secret (min 32 bytes), independent of the access secret
//   - TTL: Token validity duration
type RefreshConfig struct {
	Secret string
	TTL    time.Duration
}

// DefaultConfig returns a configuration with the given secrets and the
// standard lifetimes: 15 minutes for access tokens, 7 days for refresh
// tokens.
func DefaultConfig(accessSecret, refreshSecret string) Config {
	return Config{
		AccessToken: AccessConfig{
			Secret: accessSecret,
			TTL:    15 * time.Minute,
		},
		RefreshToken: RefreshConfig{
			Secret: refreshSecret,
			TTL:    7 * 24 * time.Hour,
		},
	}
}

type configEnv struct {
	AccessSecret  string        `env:"JWT_SECRET" envDefault:"dev-access-secret-key-change-in-prod-0000"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET" envDefault:"dev-refresh-secret-key-change-in-prod-00"`
	AccessTTL     time.Duration `env:"JWT_EXPIRES_IN" envDefault:"15m"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_EXPIRES_IN" envDefault:"168h"`
}

// LoadConfigFromEnv loads token configuration from environment variables.
//
// Variables (all optional, with development defaults):
//   - JWT_SECRET: access token signing secret
//   - JWT_REFRESH_SECRET: refresh token signing secret
//   - JWT_EXPIRES_IN: access token TTL (Go duration string)
//   - JWT_REFRESH_EXPIRES_IN: refresh token TTL (Go duration string)
//
// The default secrets exist so that a development instance starts without
// setup. They must never be used in a production deployment.
func LoadConfigFromEnv() (Config, error) {
	var raw configEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := Config{
		AccessToken: AccessConfig{
			Secret: raw.AccessSecret,
			TTL:    raw.AccessTTL,
		},
		RefreshToken: RefreshConfig{
			Secret: raw.RefreshSecret,
			TTL:    raw.RefreshTTL,
		},
	}

	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if len(config.AccessToken.Secret) < minSecretLength {
		return fmt.Errorf("access secret must be at least %d bytes", minSecretLength)
	}
	if len(config.RefreshToken.Secret) < minSecretLength {
		return fmt.Errorf("refresh secret must be at least %d bytes", minSecretLength)
	}
	if config.AccessToken.TTL <= 0 {
		return fmt.Errorf("access token TTL must be positive")
	}
	if config.RefreshToken.TTL <= 0 {
		return fmt.Errorf("refresh token TTL must be positive")
	}
	return nil
}
