// Package identity implements Warden's credential lifecycle core.
//
// It contains the Account model, the Store persistence boundary (Postgres and
// in-memory implementations), and the Manager that orchestrates registration,
// login, password change, and profile operations against the password hasher
// and the token service.
package identity
