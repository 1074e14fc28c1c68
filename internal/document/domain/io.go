package domain

import (
	"github.com/allisson/docvault/internal/errors"
)

// ErrSessionKeyUnavailable indicates the server has no cached content key for
// the account. The client must log in again to repopulate the cache.
var ErrSessionKeyUnavailable = errors.Wrap(errors.ErrAuthenticationFailure, "session key unavailable, log in again")

// UploadInput contains the parameters for a document upload.
//
// For legacy and key-wrapped accounts Data is the plaintext and the server
// encrypts it under the cached content key. For zero-knowledge accounts Data
// is an already-encoded ciphertext blob produced by the client; the server
// only checks its shape.
type UploadInput struct {
	Name string
	Data []byte
}

// DownloadOutput contains a downloaded document.
//
// Ciphertext reports whether Data is still encrypted: true for zero-knowledge
// accounts (the client decrypts locally), false when the server decrypted.
type DownloadOutput struct {
	Name       string
	Data       []byte
	Ciphertext bool
}
