package service

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
)

// pbkdf2Iterations is fixed at 100,000. Changing it silently would change
// every derived key and orphan previously wrapped data; any future increase
// has to be rolled out as a rewrap, not a constant bump.
const pbkdf2Iterations = 100_000

// PBKDF2Deriver implements KeyDeriver using PBKDF2 with HMAC-SHA-256.
//
// The derivation is deterministic by design: the same password and salt must
// reproduce the same key across logins, otherwise previously wrapped content
// keys (and, for legacy accounts, the documents themselves) become
// unreadable.
type PBKDF2Deriver struct{}

// NewPBKDF2Deriver creates a new PBKDF2Deriver.
func NewPBKDF2Deriver() *PBKDF2Deriver {
	return &PBKDF2Deriver{}
}

// Derive returns a 32-byte key from the secret and salt.
// Empty inputs are rejected before any derivation work runs.
func (d *PBKDF2Deriver) Derive(secret string, salt []byte) ([]byte, error) {
	if secret == "" {
		return nil, cryptoDomain.ErrEmptySecret
	}
	if len(salt) == 0 {
		return nil, cryptoDomain.ErrEmptySalt
	}

	key := pbkdf2.Key([]byte(secret), salt, pbkdf2Iterations, cryptoDomain.KeySize, sha256.New)
	return key, nil
}
