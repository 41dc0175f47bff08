package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"warden/cmd/identity"
	"warden/cmd/security/password"
	"warden/cmd/security/token"
)

func newBootstrapManager(t *testing.T) (*identity.Manager, *identity.MemoryStore) {
	t.Helper()

	hasher := password.DefaultConfig()
	hasher.Params.MemoryKiB = 8 * 1024
	hasher.Params.Iterations = 1

	tokens, err := token.NewManager(token.Config{
		Issuer: "warden-test",
		TTL:    time.Hour,
		Secret: []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("token.NewManager error: %v", err)
	}

	store := identity.NewMemoryStore()
	manager, err := identity.NewManager(store, hasher, tokens)
	if err != nil {
		t.Fatalf("identity.NewManager error: %v", err)
	}
	return manager, store
}

func TestBootstrap_Idempotent(t *testing.T) {
	manager, store := newBootstrapManager(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := Config{
		BootstrapName:     "Admin",
		BootstrapEmail:    "admin@example.com",
		BootstrapPassword: "Aa1!aaaa",
	}

	ctx := context.Background()
	if err := Bootstrap(ctx, log, manager, cfg); err != nil {
		t.Fatalf("first bootstrap error: %v", err)
	}
	exists, err := store.ExistsByEmail(ctx, "admin@example.com")
	if err != nil || !exists {
		t.Fatalf("seed account missing: exists=%v err=%v", exists, err)
	}

	// Second run sees the account and does nothing.
	if err := Bootstrap(ctx, log, manager, cfg); err != nil {
		t.Fatalf("second bootstrap error: %v", err)
	}
}

func TestBootstrap_Disabled(t *testing.T) {
	manager, store := newBootstrapManager(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx := context.Background()
	if err := Bootstrap(ctx, log, manager, Config{}); err != nil {
		t.Fatalf("disabled bootstrap error: %v", err)
	}
	exists, err := store.ExistsByEmail(ctx, "admin@example.com")
	if err != nil || exists {
		t.Fatalf("unexpected account: exists=%v err=%v", exists, err)
	}
}

func TestBootstrap_BadPasswordFails(t *testing.T) {
	manager, _ := newBootstrapManager(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := Config{
		BootstrapName:     "Admin",
		BootstrapEmail:    "admin@example.com",
		BootstrapPassword: "weak",
	}

	if err := Bootstrap(context.Background(), log, manager, cfg); err == nil {
		t.Fatalf("expected error for policy-violating seed password")
	}
}

func TestRun_BootstrapFailureStopsStartup(t *testing.T) {
	t.Setenv("WARDEN_TOKEN_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("WARDEN_ARGON2_MEMORY_KIB", "8192")
	t.Setenv("WARDEN_ARGON2_ITERATIONS", "1")

	cfg := Config{
		HTTPAddr:          "127.0.0.1:0",
		BootstrapName:     "Admin",
		BootstrapEmail:    "admin@example.com",
		BootstrapPassword: "weak",
	}
	cfg.clamp()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := New(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	// Run must fail before the listener starts: the seed password violates
	// policy, and the early return releases resources instead of serving.
	if err := a.Run(context.Background()); err == nil {
		t.Fatalf("expected Run to fail on bootstrap")
	}
}
