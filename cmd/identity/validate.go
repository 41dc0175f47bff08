package identity

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"warden/cmd/security/password"
)

const (
	nameMinLen  = 2
	nameMaxLen  = 255
	emailMaxLen = 255
)

func validateName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < nameMinLen || n > nameMaxLen {
		return "", false
	}
	return name, true
}

func validateEmail(email string) (string, bool) {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > emailMaxLen {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", false
	}
	// Reject display-name forms like `Alice <a@x.com>`: the parsed address
	// must be exactly the input.
	if addr.Address != email {
		return "", false
	}
	return email, true
}

// validateRegistration checks name, email and password together so the caller
// gets every field problem in a single ValidationError.
func validateRegistration(name, email, plaintext string, policy password.Config) (string, string, error) {
	fields := make(map[string]string)

	name, ok := validateName(name)
	if !ok {
		fields["name"] = "name must be between 2 and 255 characters"
	}
	email, ok = validateEmail(email)
	if !ok {
		fields["email"] = "email must be a valid address of at most 255 characters"
	}
	if msg, ok := policyMessage(policy.Validate(plaintext), policy.Policy); !ok {
		fields["password"] = msg
	}

	if len(fields) > 0 {
		return "", "", ValidationError{Fields: fields}
	}
	return name, email, nil
}

func validateProfile(name, email string) (string, string, error) {
	fields := make(map[string]string)

	name, ok := validateName(name)
	if !ok {
		fields["name"] = "name must be between 2 and 255 characters"
	}
	email, ok = validateEmail(email)
	if !ok {
		fields["email"] = "email must be a valid address of at most 255 characters"
	}

	if len(fields) > 0 {
		return "", "", ValidationError{Fields: fields}
	}
	return name, email, nil
}

// policyMessage maps password policy errors to user-facing field messages.
func policyMessage(err error, p password.Policy) (string, bool) {
	special := p.SpecialChars
	if special == "" {
		special = password.DefaultSpecialChars
	}
	switch err {
	case nil:
		return "", true
	case password.ErrPasswordTooShort, password.ErrPasswordTooLong:
		return fmt.Sprintf("password must be between %d and %d characters", p.MinLength, p.MaxLength), false
	case password.ErrPasswordTooSimple:
		return "password must contain at least one lowercase letter, one uppercase letter, one digit, and one of " + special, false
	default:
		return "password is not acceptable", false
	}
}
