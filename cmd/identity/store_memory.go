package identity

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store used in dev mode (no database configured)
// and in unit tests. Safe for concurrent use; a single mutex covers both
// indexes so the email uniqueness check and the write are one atomic step.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]Account
	byEmail map[string]string // email_norm -> account id
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]Account),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (Account, error) {
	const op = "identity.FindByEmail"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}
	return s.byID[id], nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id string) (Account, error) {
	const op = "identity.FindByID"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}
	return a, nil
}

func (s *MemoryStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byEmail[NormalizeEmail(email)]
	return ok, nil
}

func (s *MemoryStore) Save(ctx context.Context, a Account) (Account, error) {
	const op = "identity.Save"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	if a.ID == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing id"}
	}
	if a.EmailNorm == "" {
		a.EmailNorm = NormalizeEmail(a.Email)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Uniqueness check and write under one lock: the register race loser
	// sees a conflict, never a half-applied state.
	if owner, ok := s.byEmail[a.EmailNorm]; ok && owner != a.ID {
		return Account{}, ConflictError{Op: op, Field: "email"}
	}

	if prev, ok := s.byID[a.ID]; ok && prev.EmailNorm != a.EmailNorm {
		delete(s.byEmail, prev.EmailNorm)
	}
	s.byID[a.ID] = a
	s.byEmail[a.EmailNorm] = a.ID

	return a, nil
}
