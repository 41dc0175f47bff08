package identity

import "strings"

// NormalizeEmail performs case-insensitive canonicalization.
// Uniqueness and lookups both go through the normalized form, so
// "Alice@X.com" and "alice@x.com" are the same identity.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
