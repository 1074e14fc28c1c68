// Package usecase implements document storage over the blob store: uploads
// and downloads are encrypted and decrypted server-side for legacy and
// key-wrapped accounts, and passed through as opaque ciphertext for
// zero-knowledge accounts.
package usecase

import (
	"context"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	documentDomain "github.com/allisson/docvault/internal/document/domain"
)

// DocumentRepository defines persistence operations for documents.
type DocumentRepository interface {
	// Create stores a new document row.
	Create(ctx context.Context, document *documentDomain.Document) error

	// Get retrieves a document by ID. Returns ErrDocumentNotFound if not found.
	Get(ctx context.Context, documentID uuid.UUID) (*documentDomain.Document, error)

	// List returns the account's documents, newest first.
	List(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*documentDomain.Document, error)

	// Delete removes a document row. Returns ErrDocumentNotFound if not found.
	Delete(ctx context.Context, documentID uuid.UUID) error
}

// AccountRepository defines the account operations document storage needs for
// storage accounting.
type AccountRepository interface {
	// Get retrieves an account by ID.
	Get(ctx context.Context, accountID uuid.UUID) (*accountDomain.Account, error)

	// Update modifies an existing account.
	Update(ctx context.Context, account *accountDomain.Account) error
}

// DocumentUseCase defines the document operations exposed to the HTTP layer.
// Every operation is scoped to the authenticated account; documents owned by
// other accounts are indistinguishable from absent ones.
type DocumentUseCase interface {
	// Upload stores a document for the account.
	Upload(
		ctx context.Context,
		account *accountDomain.Account,
		input *documentDomain.UploadInput,
	) (*documentDomain.Document, error)

	// Download returns a document's contents.
	Download(
		ctx context.Context,
		account *accountDomain.Account,
		documentID uuid.UUID,
	) (*documentDomain.DownloadOutput, error)

	// List returns the account's document metadata, newest first.
	List(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*documentDomain.Document, error)

	// Delete removes a document and its blob.
	Delete(ctx context.Context, account *accountDomain.Account, documentID uuid.UUID) error
}
