package app

import (
	"testing"
	"time"
)

func clearAppEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"WARDEN_HTTP_ADDR", "WARDEN_LOG_LEVEL", "WARDEN_LOG_FORMAT",
		"WARDEN_HTTP_READ_HEADER_TIMEOUT", "WARDEN_HTTP_READ_TIMEOUT",
		"WARDEN_HTTP_WRITE_TIMEOUT", "WARDEN_HTTP_IDLE_TIMEOUT",
		"WARDEN_HTTP_MAX_HEADER_BYTES",
		"WARDEN_DATABASE_URL", "WARDEN_DB_MAX_CONNS", "WARDEN_DB_MIN_CONNS",
		"WARDEN_DB_SCHEMA", "WARDEN_READINESS_REQUIRE_DB",
		"WARDEN_BOOTSTRAP_NAME", "WARDEN_BOOTSTRAP_EMAIL", "WARDEN_BOOTSTRAP_PASSWORD",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearAppEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.HTTPAddr != "0.0.0.0:8080" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("log config = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.ReadHeaderTimeout != 5*time.Second || cfg.IdleTimeout != 60*time.Second {
		t.Fatalf("timeouts = %v/%v", cfg.ReadHeaderTimeout, cfg.IdleTimeout)
	}
	if cfg.DBMaxConns != 10 || cfg.DBMinConns != 0 {
		t.Fatalf("db conns = %d/%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.DBSchema != "warden" {
		t.Fatalf("schema = %q", cfg.DBSchema)
	}
	if cfg.BootstrapEnabled() {
		t.Fatalf("bootstrap enabled without env")
	}
}

func TestLoadConfig_ClampsBrokenValues(t *testing.T) {
	clearAppEnv(t)
	t.Setenv("WARDEN_HTTP_READ_TIMEOUT", "-1s")
	t.Setenv("WARDEN_DB_MAX_CONNS", "-5")
	t.Setenv("WARDEN_DB_MIN_CONNS", "99")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.ReadTimeout != 15*time.Second {
		t.Fatalf("ReadTimeout = %v", cfg.ReadTimeout)
	}
	if cfg.DBMaxConns != 10 {
		t.Fatalf("DBMaxConns = %d", cfg.DBMaxConns)
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		t.Fatalf("DBMinConns %d > DBMaxConns %d", cfg.DBMinConns, cfg.DBMaxConns)
	}
}

func TestLoadConfig_ReadinessRequiresDatabaseURL(t *testing.T) {
	clearAppEnv(t)
	t.Setenv("WARDEN_READINESS_REQUIRE_DB", "true")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for readiness without database url")
	}
}

func TestLoadConfig_PartialBootstrapRejected(t *testing.T) {
	clearAppEnv(t)
	t.Setenv("WARDEN_BOOTSTRAP_EMAIL", "admin@example.com")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for half-configured bootstrap")
	}
}

func TestLoadConfig_FullBootstrap(t *testing.T) {
	clearAppEnv(t)
	t.Setenv("WARDEN_BOOTSTRAP_NAME", "Admin")
	t.Setenv("WARDEN_BOOTSTRAP_EMAIL", "admin@example.com")
	t.Setenv("WARDEN_BOOTSTRAP_PASSWORD", "Aa1!aaaa")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if !cfg.BootstrapEnabled() {
		t.Fatalf("bootstrap should be enabled")
	}
}
