package usersapi

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config controls users API behavior.
type Config struct {
	MaxBodyBytes int64 `env:"WARDEN_API_MAX_BODY_BYTES" envDefault:"1048576"`
}

// LoadConfigFromEnv loads API config from environment variables with safe defaults.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse api env: %w", err)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return cfg, nil
}
