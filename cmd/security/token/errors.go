package token

import "errors"

var (
	// ErrTokenInvalid is returned for a malformed token, a bad signature,
	// a wrong issuer, or a missing subject.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned for a well-signed token past its expiry.
	// It is distinct from ErrTokenInvalid so callers can message it separately.
	ErrTokenExpired = errors.New("token expired")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid token config")
)
