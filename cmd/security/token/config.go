package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// minSecretBytes is the smallest accepted HMAC secret. Shorter secrets make
// HS256 signatures brute-forceable offline.
const minSecretBytes = 32

// Config defines runtime configuration for the token service.
type Config struct {
	// Issuer is the value set in the "iss" claim.
	Issuer string

	// TTL is the lifetime of issued tokens; expiry is fixed at issuance+TTL.
	TTL time.Duration

	// Secret is the HMAC signing key.
	Secret []byte
}

// envConfig holds raw env values before post-parse validation.
type envConfig struct {
	Issuer string        `env:"WARDEN_TOKEN_ISSUER" envDefault:"warden"`
	TTL    time.Duration `env:"WARDEN_TOKEN_TTL" envDefault:"24h"`
	Secret string        `env:"WARDEN_TOKEN_SECRET"`
}

// FromEnv loads token configuration from environment variables.
//
// Required:
//   - WARDEN_TOKEN_SECRET (>= 32 bytes)
//
// Optional:
//   - WARDEN_TOKEN_ISSUER
//   - WARDEN_TOKEN_TTL (Go duration string)
//
// Returns ErrConfig-wrapped errors so startup can fail fast.
func FromEnv() (Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	cfg := Config{
		Issuer: strings.TrimSpace(raw.Issuer),
		TTL:    raw.TTL,
		Secret: []byte(strings.TrimSpace(raw.Secret)),
	}
	if err := cfg.check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) check() error {
	if c.Issuer == "" {
		return fmt.Errorf("%w: issuer is required", ErrConfig)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("%w: ttl must be positive", ErrConfig)
	}
	if len(c.Secret) < minSecretBytes {
		return fmt.Errorf("%w: secret must be at least %d bytes", ErrConfig, minSecretBytes)
	}
	return nil
}
