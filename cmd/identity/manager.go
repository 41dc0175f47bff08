package identity

import (
	"context"
	"fmt"
	"time"

	"warden/cmd/identity/ids"
	"warden/cmd/security/password"
	"warden/cmd/security/token"
)

// Manager implements the credential lifecycle operations against a Store,
// the password hasher, and the token service.
//
// Each operation performs at most one Save, so a failed operation leaves the
// store untouched and a successful one applies its mutation in a single
// atomic write.
type Manager struct {
	store  Store
	hasher password.Config
	tokens *token.Manager

	now func() time.Time

	// dummyHash is verified against when a login email is unknown, so the
	// unknown-email and wrong-password paths cost the same.
	dummyHash string
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if m == nil || now == nil {
			return
		}
		m.now = now
	}
}

// NewManager constructs a Manager. The dummy hash for timing-resistant logins
// is precomputed here so the per-request cost is a single verify either way.
func NewManager(store Store, hasher password.Config, tokens *token.Manager, opts ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("identity: nil store")
	}
	if tokens == nil {
		return nil, fmt.Errorf("identity: nil token manager")
	}

	dummy, err := hasher.DummyHash()
	if err != nil {
		return nil, fmt.Errorf("identity: dummy hash: %w", err)
	}

	m := &Manager{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		now:       func() time.Time { return time.Now().UTC() },
		dummyHash: dummy,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m, nil
}

// Register creates a new account. The email must not be taken; two concurrent
// registers with the same email are arbitrated by the store's unique index,
// so the loser still sees a conflict here, never a generic failure.
func (m *Manager) Register(ctx context.Context, name, email, plaintext string) (Account, error) {
	const op = "identity.Register"

	name, email, err := validateRegistration(name, email, plaintext, m.hasher)
	if err != nil {
		return Account{}, err
	}

	exists, err := m.store.ExistsByEmail(ctx, email)
	if err != nil {
		return Account{}, err
	}
	if exists {
		return Account{}, ConflictError{Op: op, Field: "email"}
	}

	hash, err := m.hasher.Hash(plaintext)
	if err != nil {
		return Account{}, err
	}

	now := m.now()
	id, err := ids.NewULID(now)
	if err != nil {
		return Account{}, err
	}

	acc := Account{
		ID:           id,
		Name:         name,
		Email:        email,
		EmailNorm:    NormalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return m.store.Save(ctx, acc)
}

// Login verifies credentials and issues a bearer token.
//
// Enumeration resistance: unknown email and wrong password return the same
// ErrInvalidCredentials kind, and the unknown-email path still pays for one
// password verify (against the dummy hash) to keep timing comparable.
func (m *Manager) Login(ctx context.Context, email, plaintext string) (string, Account, error) {
	const op = "identity.Login"

	acc, err := m.store.FindByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			_, _ = m.hasher.Verify(m.dummyHash, plaintext)
			return "", Account{}, OpError{Op: op, Kind: ErrInvalidCredentials}
		}
		return "", Account{}, err
	}

	ok, err := m.hasher.Verify(acc.PasswordHash, plaintext)
	if err != nil || !ok {
		return "", Account{}, OpError{Op: op, Kind: ErrInvalidCredentials}
	}

	tok, _, err := m.tokens.Issue(acc.ID, m.now())
	if err != nil {
		return "", Account{}, err
	}
	return tok, acc, nil
}

// ChangePassword rotates the password after re-verifying the current one.
// The account may have been deleted since the token was issued; that race
// surfaces as NotFound rather than being assumed away. Previously issued
// tokens stay valid until their natural expiry.
func (m *Manager) ChangePassword(ctx context.Context, accountID, current, next string) error {
	const op = "identity.ChangePassword"

	acc, err := m.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	ok, err := m.hasher.Verify(acc.PasswordHash, current)
	if err != nil || !ok {
		return OpError{Op: op, Kind: ErrInvalidPassword}
	}

	if perr := m.hasher.Validate(next); perr != nil {
		msg, _ := policyMessage(perr, m.hasher.Policy)
		return OpError{Op: op, Kind: ErrPolicyViolation, Msg: msg}
	}

	hash, err := m.hasher.Hash(next)
	if err != nil {
		return err
	}

	acc.PasswordHash = hash
	acc.UpdatedAt = m.now()
	_, err = m.store.Save(ctx, acc)
	return err
}

// UpdateProfile applies name and email. Changing the email to one owned by a
// different account is a conflict; re-submitting the current email is not.
func (m *Manager) UpdateProfile(ctx context.Context, accountID, name, email string) (Account, error) {
	const op = "identity.UpdateProfile"

	name, email, err := validateProfile(name, email)
	if err != nil {
		return Account{}, err
	}

	acc, err := m.store.FindByID(ctx, accountID)
	if err != nil {
		return Account{}, err
	}

	norm := NormalizeEmail(email)
	if norm != acc.EmailNorm {
		taken, err := m.store.ExistsByEmail(ctx, email)
		if err != nil {
			return Account{}, err
		}
		if taken {
			return Account{}, ConflictError{Op: op, Field: "email"}
		}
	}

	acc.Name = name
	acc.Email = email
	acc.EmailNorm = norm
	acc.UpdatedAt = m.now()

	return m.store.Save(ctx, acc)
}

// GetProfile loads the account for a validated identity.
func (m *Manager) GetProfile(ctx context.Context, accountID string) (Account, error) {
	return m.store.FindByID(ctx, accountID)
}
