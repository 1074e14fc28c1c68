// Package service provides technical services for account authentication.
//
// This package implements password hashing and opaque token generation using
// industry-standard cryptographic practices.
package service

// PasswordService defines operations for password hashing and verification.
// Implementations must use an industry-standard password hashing algorithm
// (e.g., argon2id) with constant-time comparison.
type PasswordService interface {
	// Hash hashes a plain text password for storage as a verifier.
	Hash(plainPassword string) (hashedPassword string, err error)

	// Compare compares a plain text password against a stored verifier.
	// Returns true if the password matches, false otherwise.
	Compare(plainPassword string, hashedPassword string) bool
}

// TokenService defines operations for opaque token generation and hashing.
// Tokens back sessions, reset codes, and pending finalize handshakes; only
// their SHA-256 hashes are ever persisted.
type TokenService interface {
	// GenerateToken creates a new cryptographically secure random token.
	// Returns both the plain text token (to be shared with the client exactly
	// once) and the hashed version (to be stored in the database).
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken hashes a plain text token using SHA-256.
	// Used for token validation by comparing hashes.
	HashToken(plainToken string) string
}
