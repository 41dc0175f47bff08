package password

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy controls password validation.
//
// SpecialChars is the fixed set of accepted symbols; at least one of them,
// one lowercase letter, one uppercase letter, and one digit are required.
type Policy struct {
	MinLength    int
	MaxLength    int
	SpecialChars string
}

// Config is the single configuration surface for this package.
type Config struct {
	Params Argon2idParams
	Policy Policy
}

// envConfig holds raw env values before post-parse validation.
type envConfig struct {
	MinLength   int    `env:"WARDEN_PASSWORD_MIN_LEN" envDefault:"8"`
	MaxLength   int    `env:"WARDEN_PASSWORD_MAX_LEN" envDefault:"255"`
	MemoryKiB   uint32 `env:"WARDEN_ARGON2_MEMORY_KIB" envDefault:"65536"`
	Iterations  uint32 `env:"WARDEN_ARGON2_ITERATIONS" envDefault:"3"`
	Parallelism uint8  `env:"WARDEN_ARGON2_PARALLELISM"`
	SaltLength  uint32 `env:"WARDEN_ARGON2_SALT_LEN" envDefault:"16"`
	KeyLength   uint32 `env:"WARDEN_ARGON2_KEY_LEN" envDefault:"32"`
}

// DefaultSpecialChars is the accepted symbol set for the composition rule.
const DefaultSpecialChars = "@$!%*?&"

// DefaultConfig returns a strong baseline suitable for interactive logins.
// Values can be overridden via env; see FromEnv.
func DefaultConfig() Config {
	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024, // 64 MiB
			Iterations:  3,
			Parallelism: defaultParallelism(),
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{
			MinLength:    8,
			MaxLength:    255,
			SpecialChars: DefaultSpecialChars,
		},
	}
}

// defaultParallelism is CPU-aware but clamped to [1..4] to keep resource usage
// predictable in containers.
func defaultParallelism() uint8 {
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}
	return uint8(threads) // #nosec G115 -- clamped to [1..4] above; safe conversion.
}

// FromEnv loads config from environment variables.
//
// Env surface:
//   - WARDEN_PASSWORD_MIN_LEN
//   - WARDEN_PASSWORD_MAX_LEN
//   - WARDEN_ARGON2_MEMORY_KIB
//   - WARDEN_ARGON2_ITERATIONS
//   - WARDEN_ARGON2_PARALLELISM
//   - WARDEN_ARGON2_SALT_LEN
//   - WARDEN_ARGON2_KEY_LEN
//
// Invalid values error here, at startup, never per hash call.
func FromEnv() (Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse password env: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Policy.MinLength = raw.MinLength
	cfg.Policy.MaxLength = raw.MaxLength
	cfg.Params.MemoryKiB = raw.MemoryKiB
	cfg.Params.Iterations = raw.Iterations
	cfg.Params.SaltLength = raw.SaltLength
	cfg.Params.KeyLength = raw.KeyLength
	if raw.Parallelism > 0 {
		cfg.Params.Parallelism = raw.Parallelism
	}

	if err := cfg.check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// check validates cost and policy bounds. Bounds mirror what Verify will later
// accept, so a config that passes here never produces hashes it cannot verify.
func (c Config) check() error {
	var problems []string

	if c.Policy.MinLength < 1 || c.Policy.MinLength > 1024 {
		problems = append(problems, "min_len out of range [1..1024]")
	}
	if c.Policy.MaxLength < 1 || c.Policy.MaxLength > 4096 {
		problems = append(problems, "max_len out of range [1..4096]")
	}
	if c.Policy.MinLength > c.Policy.MaxLength {
		problems = append(problems, fmt.Sprintf("min_len(%d) > max_len(%d)", c.Policy.MinLength, c.Policy.MaxLength))
	}
	if c.Params.MemoryKiB < 8*1024 || c.Params.MemoryKiB > 1024*1024 {
		problems = append(problems, "memory_kib out of range [8192..1048576]")
	}
	if c.Params.Iterations < 1 || c.Params.Iterations > 20 {
		problems = append(problems, "iterations out of range [1..20]")
	}
	if c.Params.Parallelism < 1 {
		problems = append(problems, "parallelism must be >= 1")
	}
	if c.Params.SaltLength < 8 || c.Params.SaltLength > 64 {
		problems = append(problems, "salt_len out of range [8..64]")
	}
	if c.Params.KeyLength < 16 || c.Params.KeyLength > 128 {
		problems = append(problems, "key_len out of range [16..128]")
	}

	if len(problems) > 0 {
		return fmt.Errorf("password config invalid: %s", strings.Join(problems, "; "))
	}
	return nil
}
