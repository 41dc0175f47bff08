package identity

import "errors"

// Sentinel error kinds (stable for errors.Is and for mapping to API status codes).
var (
	ErrInvalidInput = errors.New("invalid_input")
	ErrNotFound     = errors.New("not_found")
	ErrConflict     = errors.New("conflict")

	// ErrInvalidCredentials covers both unknown email and wrong password at
	// login. They are deliberately the same kind so failed logins do not
	// reveal whether an email is registered.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInvalidPassword is the change-password current-password mismatch.
	// Distinct from the login case: identity is already proven via token.
	ErrInvalidPassword = errors.New("invalid_password")

	// ErrPolicyViolation is a new password failing the composition policy.
	ErrPolicyViolation = errors.New("policy_violation")
)
