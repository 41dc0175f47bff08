// Package password implements Warden's password hashing and password policy.
//
// Hashing is Argon2id with PHC-style encoded output. The policy enforces the
// length and character-class rules applied on registration and password change.
//
// This package is intentionally dependency-light and security-first.
package password
