package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over PostgreSQL.
//
// Design notes:
//   - The pgx pool is owned by the caller; this store must NOT close it.
//   - Schema/table identifiers are safely quoted to avoid SQL injection via identifiers.
//   - Email uniqueness rides on the uq_accounts_email_norm unique index; the
//     concurrent-register race is closed by the database, not by app locks.
//   - It does NOT run migrations; schema management is handled externally.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "warden").
// The schema name is validated to be a legal PostgreSQL identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with secure defaults.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "warden",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

const accountColumns = "id, name, email, email_norm, password_hash, created_at, updated_at"

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (Account, error) {
	const op = "identity.FindByEmail"

	accounts := pgIdent(s.schema, "accounts")
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM `+accounts+` WHERE email_norm = $1`,
		NormalizeEmail(email),
	)
	return scanAccount(op, row)
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Account, error) {
	const op = "identity.FindByID"

	accounts := pgIdent(s.schema, "accounts")
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM `+accounts+` WHERE id = $1`,
		id,
	)
	return scanAccount(op, row)
}

func (s *PostgresStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	accounts := pgIdent(s.schema, "accounts")

	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+accounts+` WHERE email_norm = $1)`,
		NormalizeEmail(email),
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Save upserts the account row. Insert and update are a single statement, so
// the write is atomic and the unique index arbitrates concurrent registers.
func (s *PostgresStore) Save(ctx context.Context, a Account) (Account, error) {
	const op = "identity.Save"

	if a.ID == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing id"}
	}
	if a.EmailNorm == "" {
		a.EmailNorm = NormalizeEmail(a.Email)
	}

	accounts := pgIdent(s.schema, "accounts")

	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+accounts+` (`+accountColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   email = EXCLUDED.email,
		   email_norm = EXCLUDED.email_norm,
		   password_hash = EXCLUDED.password_hash,
		   updated_at = EXCLUDED.updated_at`,
		a.ID, a.Name, a.Email, a.EmailNorm, a.PasswordHash, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return Account{}, ConflictError{Op: op, Field: field}
		}
		return Account{}, err
	}
	return a, nil
}

func scanAccount(op string, row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.EmailNorm, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, NotFoundError{Op: op, Resource: "account"}
		}
		return Account{}, err
	}
	return a, nil
}

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable schema constraint names. Fall back to heuristic substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))

	switch {
	case c == "uq_accounts_email_norm":
		return "email", true
	case strings.Contains(c, "email"):
		return "email", true
	default:
		return "unique", true
	}
}
