package identity

import (
	"context"
	"time"
)

// Account is Warden's persisted identity record.
// IMPORTANT: PasswordHash is the encoded Argon2id string; the plaintext is
// never stored, and this struct is never serialized directly to clients.
type Account struct {
	ID    string
	Name  string
	Email string

	// EmailNorm is the canonical lowercase form; uniqueness is enforced on it.
	EmailNorm string

	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the credential persistence boundary.
//
// Concurrency contract: Save must enforce email uniqueness atomically
// (unique index, not an application-level lock), so that of two concurrent
// registrations with the same email at most one succeeds and the loser
// surfaces a ConflictError.
type Store interface {
	// FindByEmail loads an account by normalized email. NotFound if absent.
	FindByEmail(ctx context.Context, email string) (Account, error)

	// FindByID loads an account by ID. NotFound if absent.
	FindByID(ctx context.Context, id string) (Account, error)

	// ExistsByEmail reports whether an account with this email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Save upserts an account keyed by ID. A unique-violation on the
	// normalized email surfaces as ConflictError{Field: "email"}.
	// The write is atomic: the row is never left half-updated.
	Save(ctx context.Context, a Account) (Account, error)
}
