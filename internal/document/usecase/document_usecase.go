package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	"github.com/allisson/docvault/internal/blob"
	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	cryptoService "github.com/allisson/docvault/internal/crypto/service"
	"github.com/allisson/docvault/internal/database"
	documentDomain "github.com/allisson/docvault/internal/document/domain"
	"github.com/allisson/docvault/internal/keycache"
)

// documentUseCase implements DocumentUseCase.
type documentUseCase struct {
	txManager    database.TxManager
	documentRepo DocumentRepository
	accountRepo  AccountRepository
	blobStore    blob.Store
	keyCache     keycache.Cache
	wrapper      cryptoService.KeyWrapper
	logger       *slog.Logger
}

// Upload stores a document for the account.
//
// When the server holds the content key (legacy and key-wrapped accounts) the
// input is plaintext and is encrypted under the cached key; a cache miss means
// the client has to log in again. Zero-knowledge accounts submit ciphertext
// blobs the server only shape-checks.
func (d *documentUseCase) Upload(
	ctx context.Context,
	account *accountDomain.Account,
	input *documentDomain.UploadInput,
) (*documentDomain.Document, error) {
	var encoded string

	if account.Generation.ServerHoldsKey() {
		contentKey, ok := d.keyCache.Get(account.ID)
		if !ok {
			return nil, documentDomain.ErrSessionKeyUnavailable
		}
		encrypted, err := d.wrapper.Wrap(input.Data, contentKey)
		cryptoDomain.Zero(contentKey)
		if err != nil {
			return nil, err
		}
		encoded = encrypted.Encode()
	} else {
		if _, err := cryptoDomain.DecodeWrappedBlob(string(input.Data)); err != nil {
			return nil, err
		}
		encoded = string(input.Data)
	}

	timestamp := time.Now().UTC()
	document := &documentDomain.Document{
		ID:        uuid.Must(uuid.NewV7()),
		AccountID: account.ID,
		Name:      input.Name,
		FileID:    uuid.Must(uuid.NewV7()).String(),
		Size:      int64(len(input.Data)),
		CreatedAt: timestamp,
		UpdatedAt: timestamp,
	}

	if err := d.blobStore.Upload(ctx, document.FileID, []byte(encoded)); err != nil {
		return nil, err
	}

	err := d.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := d.documentRepo.Create(ctx, document); err != nil {
			return err
		}
		current, err := d.accountRepo.Get(ctx, account.ID)
		if err != nil {
			return err
		}
		current.StorageUsed += document.Size
		current.UpdatedAt = timestamp
		return d.accountRepo.Update(ctx, current)
	})
	if err != nil {
		if deleteErr := d.blobStore.Delete(ctx, document.FileID); deleteErr != nil {
			d.logger.Warn("failed to delete orphaned blob",
				slog.String("file_id", document.FileID),
				slog.Any("error", deleteErr),
			)
		}
		return nil, err
	}

	return document, nil
}

// Download returns a document's contents, decrypting server-side when the
// server holds the content key.
func (d *documentUseCase) Download(
	ctx context.Context,
	account *accountDomain.Account,
	documentID uuid.UUID,
) (*documentDomain.DownloadOutput, error) {
	document, err := d.getOwned(ctx, account.ID, documentID)
	if err != nil {
		return nil, err
	}

	data, err := d.blobStore.Download(ctx, document.FileID)
	if err != nil {
		return nil, err
	}

	if !account.Generation.ServerHoldsKey() {
		return &documentDomain.DownloadOutput{
			Name:       document.Name,
			Data:       data,
			Ciphertext: true,
		}, nil
	}

	contentKey, ok := d.keyCache.Get(account.ID)
	if !ok {
		return nil, documentDomain.ErrSessionKeyUnavailable
	}
	defer cryptoDomain.Zero(contentKey)

	decoded, err := cryptoDomain.DecodeWrappedBlob(string(data))
	if err != nil {
		return nil, err
	}
	plaintext, err := d.wrapper.Unwrap(decoded, contentKey)
	if err != nil {
		return nil, err
	}

	return &documentDomain.DownloadOutput{
		Name: document.Name,
		Data: plaintext,
	}, nil
}

// List returns the account's document metadata, newest first.
func (d *documentUseCase) List(
	ctx context.Context,
	accountID uuid.UUID,
	offset, limit int,
) ([]*documentDomain.Document, error) {
	return d.documentRepo.List(ctx, accountID, offset, limit)
}

// Delete removes a document row and its blob. The row goes first; a blob
// orphaned by a failed delete only leaks storage.
func (d *documentUseCase) Delete(
	ctx context.Context,
	account *accountDomain.Account,
	documentID uuid.UUID,
) error {
	document, err := d.getOwned(ctx, account.ID, documentID)
	if err != nil {
		return err
	}

	timestamp := time.Now().UTC()
	err = d.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := d.documentRepo.Delete(ctx, document.ID); err != nil {
			return err
		}
		current, err := d.accountRepo.Get(ctx, account.ID)
		if err != nil {
			return err
		}
		current.StorageUsed -= document.Size
		if current.StorageUsed < 0 {
			current.StorageUsed = 0
		}
		current.UpdatedAt = timestamp
		return d.accountRepo.Update(ctx, current)
	})
	if err != nil {
		return err
	}

	if err := d.blobStore.Delete(ctx, document.FileID); err != nil {
		d.logger.Warn("failed to delete document blob",
			slog.String("file_id", document.FileID),
			slog.Any("error", err),
		)
	}

	return nil
}

// getOwned loads a document and verifies ownership. A document owned by
// another account is reported as not found.
func (d *documentUseCase) getOwned(
	ctx context.Context,
	accountID, documentID uuid.UUID,
) (*documentDomain.Document, error) {
	document, err := d.documentRepo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if document.AccountID != accountID {
		return nil, documentDomain.ErrDocumentNotFound
	}
	return document, nil
}

// NewDocumentUseCase creates a new DocumentUseCase with the provided dependencies.
func NewDocumentUseCase(
	txManager database.TxManager,
	documentRepo DocumentRepository,
	accountRepo AccountRepository,
	blobStore blob.Store,
	keyCache keycache.Cache,
	wrapper cryptoService.KeyWrapper,
	logger *slog.Logger,
) DocumentUseCase {
	return &documentUseCase{
		txManager:    txManager,
		documentRepo: documentRepo,
		accountRepo:  accountRepo,
		blobStore:    blobStore,
		keyCache:     keyCache,
		wrapper:      wrapper,
		logger:       logger,
	}
}
