package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity envelope carried by a validated token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Issuer    string
}

// Manager issues and verifies bearer tokens.
type Manager struct {
	cfg Config
}

// NewManager constructs a Manager, validating configuration up front.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg}, nil
}

// TTL reports the configured token lifetime.
func (m *Manager) TTL() time.Duration { return m.cfg.TTL }

// Issue signs a token for subject with expiry fixed at now+TTL.
func (m *Manager) Issue(subject string, now time.Time) (string, time.Time, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", time.Time{}, ErrTokenInvalid
	}

	exp := now.Add(m.cfg.TTL)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    m.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature, issuer, and expiry against now.
//
// Expiry is only reported as ErrTokenExpired when the signature is good;
// everything else collapses into ErrTokenInvalid so a forged token cannot
// probe claim contents.
func (m *Manager) Verify(tokenStr string, now time.Time) (Claims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	// Basic sanity bounds to avoid pathological inputs.
	if tokenStr == "" || len(tokenStr) > 4096 {
		return Claims{}, ErrTokenInvalid
	}

	var parsed jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenStr, &parsed, func(t *jwt.Token) (any, error) {
		return m.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}

	sub := strings.TrimSpace(parsed.Subject)
	if sub == "" {
		return Claims{}, ErrTokenInvalid
	}

	out := Claims{
		Subject: sub,
		Issuer:  parsed.Issuer,
	}
	if parsed.IssuedAt != nil {
		out.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		out.ExpiresAt = parsed.ExpiresAt.Time
	}
	return out, nil
}
