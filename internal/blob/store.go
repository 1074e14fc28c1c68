// Package blob provides ciphertext blob storage for documents. The store
// only ever sees opaque encrypted bytes; encryption happens in the document
// and migration use cases before anything reaches it.
package blob

import (
	"context"

	"github.com/allisson/docvault/internal/errors"
)

// ErrBlobNotFound indicates the requested blob does not exist in the store.
var ErrBlobNotFound = errors.Wrap(errors.ErrNotFound, "blob not found")

// Store defines the blob storage interface.
type Store interface {
	// Upload stores data under fileID, overwriting any existing blob.
	Upload(ctx context.Context, fileID string, data []byte) error

	// Download returns the blob stored under fileID.
	Download(ctx context.Context, fileID string) ([]byte, error)

	// Delete removes the blob stored under fileID. Deleting an absent blob
	// is not an error; deletes are retried best-effort by callers.
	Delete(ctx context.Context, fileID string) error
}
