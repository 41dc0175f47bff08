package password

import "testing"

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.Policy.MinLength != 8 || cfg.Policy.MaxLength != 255 {
		t.Fatalf("unexpected policy defaults: %+v", cfg.Policy)
	}
	if cfg.Policy.SpecialChars != DefaultSpecialChars {
		t.Fatalf("unexpected special set: %q", cfg.Policy.SpecialChars)
	}
	if cfg.Params.MemoryKiB != 64*1024 || cfg.Params.Iterations != 3 {
		t.Fatalf("unexpected params defaults: %+v", cfg.Params)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("WARDEN_PASSWORD_MIN_LEN", "10")
	t.Setenv("WARDEN_ARGON2_MEMORY_KIB", "16384")
	t.Setenv("WARDEN_ARGON2_ITERATIONS", "2")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.Policy.MinLength != 10 {
		t.Fatalf("min length override not applied: %d", cfg.Policy.MinLength)
	}
	if cfg.Params.MemoryKiB != 16384 || cfg.Params.Iterations != 2 {
		t.Fatalf("param overrides not applied: %+v", cfg.Params)
	}
}

func TestFromEnv_InvalidFailsFast(t *testing.T) {
	t.Setenv("WARDEN_ARGON2_MEMORY_KIB", "1")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for out-of-range memory")
	}
}

func TestFromEnv_MinAboveMax(t *testing.T) {
	t.Setenv("WARDEN_PASSWORD_MIN_LEN", "300")
	t.Setenv("WARDEN_PASSWORD_MAX_LEN", "255")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error when min_len > max_len")
	}
}
