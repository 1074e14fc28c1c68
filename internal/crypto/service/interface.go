// Package service provides the cryptographic primitives for the key
// lifecycle: password-based key derivation, authenticated key wrapping, and
// recovery phrase generation. The account and document use cases are built
// entirely on these three interfaces.
package service

import (
	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
)

// KeyDeriver turns a low-entropy secret (password or normalized recovery
// phrase) plus a per-account salt into a fixed-length symmetric key.
type KeyDeriver interface {
	// Derive returns a 32-byte key. Deterministic: identical inputs always
	// yield identical output. Empty secret or salt is rejected.
	Derive(secret string, salt []byte) ([]byte, error)
}

// KeyWrapper performs authenticated encryption of one value under a key,
// producing a self-contained storable blob. It is used both to wrap keys
// under derived keys and to encrypt document contents under content keys;
// the blob layout is identical in both cases.
type KeyWrapper interface {
	// Wrap encrypts plaintext under a 32-byte wrapping key with a fresh
	// random IV. IVs are never reused.
	Wrap(plaintext, wrappingKey []byte) (cryptoDomain.WrappedBlob, error)

	// Unwrap decrypts a wrapped blob. It fails closed: any tag mismatch,
	// truncation, or tampering yields ErrUnwrapFailed, never partial
	// plaintext.
	Unwrap(blob cryptoDomain.WrappedBlob, wrappingKey []byte) ([]byte, error)
}

// PhraseGenerator produces high-entropy, human-transcribable recovery
// phrases. A generated phrase is shown to the user exactly once; the server
// never reconstructs or re-displays a previously issued phrase.
type PhraseGenerator interface {
	// Generate returns 12 words drawn independently and uniformly from a
	// fixed 2048-word list, joined by single spaces (~132 bits of entropy).
	Generate() (string, error)
}
