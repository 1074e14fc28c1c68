// Package domain defines the document domain model.
//
// A document is a relational metadata row plus a ciphertext blob in the blob
// store under FileID. The plaintext is recoverable only with the owning
// account's current content key; the server never stores plaintext.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/docvault/internal/errors"
)

// ErrDocumentNotFound indicates a document with the specified ID was not found.
var ErrDocumentNotFound = errors.Wrap(errors.ErrNotFound, "document not found")

// Document represents an encrypted user document.
type Document struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Name      string
	FileID    string // blob store key of the ciphertext
	Size      int64  // plaintext size in bytes, used for storage accounting
	CreatedAt time.Time
	UpdatedAt time.Time
}
