package password

import "errors"

// Public, stable errors for callers.
var (
	ErrPasswordTooShort  = errors.New("password too short")
	ErrPasswordTooLong   = errors.New("password too long")
	ErrPasswordTooSimple = errors.New("password missing required character classes")
	ErrInvalidHash       = errors.New("invalid password hash")
)
