package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
)

// AESGCMWrapper implements the KeyWrapper interface using AES-256-GCM.
//
// GCM is constructed with a 16-byte nonce to match the stored blob layout
// (IV 16 || Tag 16 || Ciphertext); the Go default of 12 bytes would be
// incompatible with every blob already at rest. The instance is stateless
// and safe for concurrent use; each Wrap call generates its IV
// independently from crypto/rand.
type AESGCMWrapper struct{}

// NewAESGCMWrapper creates a new AESGCMWrapper.
func NewAESGCMWrapper() *AESGCMWrapper {
	return &AESGCMWrapper{}
}

// newAEAD builds the AES-256-GCM cipher for a 32-byte key with the 16-byte
// nonce size the blob format requires.
func (w *AESGCMWrapper) newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	return cipher.NewGCMWithNonceSize(block, cryptoDomain.IVSize)
}

// Wrap encrypts plaintext under the wrapping key with a fresh random 16-byte
// IV and returns the self-contained blob.
func (w *AESGCMWrapper) Wrap(plaintext, wrappingKey []byte) (cryptoDomain.WrappedBlob, error) {
	aead, err := w.newAEAD(wrappingKey)
	if err != nil {
		return cryptoDomain.WrappedBlob{}, err
	}

	iv := make([]byte, cryptoDomain.IVSize)
	if _, err := rand.Read(iv); err != nil {
		return cryptoDomain.WrappedBlob{}, err
	}

	// Seal returns ciphertext || tag; the blob stores tag before ciphertext.
	sealed := aead.Seal(nil, iv, plaintext, nil)
	split := len(sealed) - cryptoDomain.TagSize

	return cryptoDomain.WrappedBlob{
		IV:         iv,
		Tag:        sealed[split:],
		Ciphertext: sealed[:split],
	}, nil
}

// Unwrap authenticates and decrypts a wrapped blob. Any integrity failure
// collapses to ErrUnwrapFailed; no partial plaintext is ever returned.
func (w *AESGCMWrapper) Unwrap(
	blob cryptoDomain.WrappedBlob,
	wrappingKey []byte,
) ([]byte, error) {
	aead, err := w.newAEAD(wrappingKey)
	if err != nil {
		return nil, err
	}

	if len(blob.IV) != cryptoDomain.IVSize || len(blob.Tag) != cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrUnwrapFailed
	}

	sealed := make([]byte, 0, len(blob.Ciphertext)+cryptoDomain.TagSize)
	sealed = append(sealed, blob.Ciphertext...)
	sealed = append(sealed, blob.Tag...)

	plaintext, err := aead.Open(nil, blob.IV, sealed, nil)
	if err != nil {
		return nil, cryptoDomain.ErrUnwrapFailed
	}

	return plaintext, nil
}
