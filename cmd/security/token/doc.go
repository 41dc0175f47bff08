// Package token implements Warden's stateless bearer tokens.
//
// Tokens are HS256-signed JWTs carrying the account ID as subject, an
// issued-at, and a fixed-TTL expiry. Validity is computed from the token
// itself; there is no server-side session table and no early revocation.
package token
