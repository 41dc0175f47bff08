package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		Issuer: "warden-test",
		TTL:    time.Hour,
		Secret: []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	return m
}

func TestIssueAndVerify_OK(t *testing.T) {
	m := testManager(t)
	now := time.Now().UTC().Truncate(time.Second)

	tok, exp, err := m.Issue("01ARZ3NDEKTSV4RRFFQ69G5FAV", now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if tok == "" {
		t.Fatalf("expected non-empty token")
	}
	if !exp.Equal(now.Add(time.Hour)) {
		t.Fatalf("expiry = %v, want %v", exp, now.Add(time.Hour))
	}

	claims, err := m.Verify(tok, now)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Subject != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Fatalf("subject = %q", claims.Subject)
	}
	if claims.Issuer != "warden-test" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Fatalf("claims expiry = %v, want %v", claims.ExpiresAt, exp)
	}
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	m := testManager(t)
	now := time.Now().UTC().Truncate(time.Second)

	tok, _, err := m.Issue("subject", now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// Just before expiry: still valid.
	if _, err := m.Verify(tok, now.Add(time.Hour-time.Second)); err != nil {
		t.Fatalf("expected valid before expiry, got %v", err)
	}

	// Just after expiry: expired, and distinguishable from invalid.
	_, err = m.Verify(tok, now.Add(time.Hour+time.Second))
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expired must not also match ErrTokenInvalid")
	}
}

func TestVerify_Tampered(t *testing.T) {
	m := testManager(t)
	now := time.Now().UTC()

	tok, _, err := m.Issue("subject", now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// Flip a character in the payload segment.
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := m.Verify(tampered, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	m := testManager(t)
	other, err := NewManager(Config{
		Issuer: "warden-test",
		TTL:    time.Hour,
		Secret: []byte("ffffffffffffffffffffffffffffffff"),
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	now := time.Now().UTC()
	tok, _, err := other.Issue("subject", now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := m.Verify(tok, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerify_WrongIssuer(t *testing.T) {
	m := testManager(t)
	other, err := NewManager(Config{
		Issuer: "someone-else",
		TTL:    time.Hour,
		Secret: []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	now := time.Now().UTC()
	tok, _, err := other.Issue("subject", now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := m.Verify(tok, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	m := testManager(t)
	now := time.Now().UTC()

	for _, bad := range []string{"", "not.a.jwt", strings.Repeat("x", 5000)} {
		if _, err := m.Verify(bad, now); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("token %q: expected ErrTokenInvalid, got %v", bad, err)
		}
	}
}

func TestIssue_EmptySubject(t *testing.T) {
	m := testManager(t)
	if _, _, err := m.Issue("  ", time.Now().UTC()); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestConfig_FailsFast(t *testing.T) {
	cases := []Config{
		{Issuer: "", TTL: time.Hour, Secret: []byte(strings.Repeat("a", 32))},
		{Issuer: "warden", TTL: 0, Secret: []byte(strings.Repeat("a", 32))},
		{Issuer: "warden", TTL: time.Hour, Secret: []byte("short")},
	}
	for i, cfg := range cases {
		if _, err := NewManager(cfg); !errors.Is(err, ErrConfig) {
			t.Fatalf("case %d: expected ErrConfig, got %v", i, err)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("WARDEN_TOKEN_SECRET", strings.Repeat("s", 32))
	t.Setenv("WARDEN_TOKEN_TTL", "15m")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.TTL != 15*time.Minute {
		t.Fatalf("ttl = %v", cfg.TTL)
	}
	if cfg.Issuer != "warden" {
		t.Fatalf("issuer = %q", cfg.Issuer)
	}
}

func TestFromEnv_MissingSecret(t *testing.T) {
	t.Setenv("WARDEN_TOKEN_SECRET", "")
	if _, err := FromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
