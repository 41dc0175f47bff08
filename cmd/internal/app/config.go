package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string `env:"WARDEN_HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	LogLevel  string `env:"WARDEN_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"WARDEN_LOG_FORMAT" envDefault:"json"`

	ReadHeaderTimeout time.Duration `env:"WARDEN_HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `env:"WARDEN_HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"WARDEN_HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `env:"WARDEN_HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	MaxHeaderBytes    int           `env:"WARDEN_HTTP_MAX_HEADER_BYTES" envDefault:"1048576"`

	DatabaseURL string `env:"WARDEN_DATABASE_URL"`
	DBMaxConns  int32  `env:"WARDEN_DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"WARDEN_DB_MIN_CONNS" envDefault:"0"`
	DBSchema    string `env:"WARDEN_DB_SCHEMA" envDefault:"warden"`

	// If true, /readyz returns 503 unless the database is configured and reachable.
	ReadinessRequireDB bool `env:"WARDEN_READINESS_REQUIRE_DB" envDefault:"false"`

	// Optional seed account created at startup when all three values are set.
	// The step is idempotent: an existing account with the same email is left alone.
	BootstrapName     string `env:"WARDEN_BOOTSTRAP_NAME"`
	BootstrapEmail    string `env:"WARDEN_BOOTSTRAP_EMAIL"`
	BootstrapPassword string `env:"WARDEN_BOOTSTRAP_PASSWORD"`
}

// LoadConfig loads Config from environment variables with defaults,
// clamping values that would produce a broken server.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("app: parse config: %w", err)
	}
	cfg.clamp()
	if err := cfg.check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) clamp() {
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 15 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.MaxHeaderBytes <= 0 {
		c.MaxHeaderBytes = 1 << 20
	}
	if c.DBMaxConns <= 0 {
		c.DBMaxConns = 10
	}
	if c.DBMinConns < 0 {
		c.DBMinConns = 0
	}
	if c.DBMinConns > c.DBMaxConns {
		c.DBMinConns = c.DBMaxConns
	}
}

func (c Config) check() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("app: WARDEN_HTTP_ADDR must not be empty")
	}
	if c.ReadinessRequireDB && c.DatabaseURL == "" {
		return fmt.Errorf("app: WARDEN_READINESS_REQUIRE_DB=true but WARDEN_DATABASE_URL is not set")
	}

	// Bootstrap is all-or-nothing so a half-configured seed fails loudly
	// instead of silently skipping.
	set := 0
	for _, v := range []string{c.BootstrapName, c.BootstrapEmail, c.BootstrapPassword} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return fmt.Errorf("app: bootstrap requires WARDEN_BOOTSTRAP_NAME, WARDEN_BOOTSTRAP_EMAIL and WARDEN_BOOTSTRAP_PASSWORD together")
	}
	return nil
}

// BootstrapEnabled reports whether a seed account is configured.
func (c Config) BootstrapEnabled() bool {
	return c.BootstrapEmail != ""
}
