package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	apperrors "github.com/allisson/docvault/internal/errors"
)

// stagedBlob tracks a re-encrypted document during migration: the old blob
// reference to delete on success and the new one to delete on rollback.
type stagedBlob struct {
	documentID uuid.UUID
	oldFileID  string
	newFileID  string
}

// migrationResult is the outcome of a successful legacy migration. The caller
// owns contentKey and must zero it when done.
type migrationResult struct {
	contentKey     []byte
	recoveryPhrase string
}

// migrateLegacyAccount runs the Legacy -> KeyWrapped migration:
//
//  1. Derive the legacy key from the password and the existing salt.
//  2. Generate a fresh random content key, wrap it under the password and
//     under a new recovery phrase.
//  3. Re-encrypt every document blob under the new content key, uploading each
//     under a fresh file ID so the old blob stays intact until commit.
//  4. Commit the account wraps and all file ID repoints in one transaction.
//  5. Delete the superseded blobs best-effort.
//
// Any failure before the commit rolls back the staged blobs and returns an
// error wrapping ErrMigrationFailed; the account is left untouched and fully
// usable in Legacy.
//
// On success the account struct is updated in place (wraps, salts, generation,
// unacknowledged recovery phrase) and the new content key plus phrase are
// returned for the caller to cache and surface.
func (a *accountUseCase) migrateLegacyAccount(
	ctx context.Context,
	account *accountDomain.Account,
	password string,
) (*migrationResult, error) {
	legacyKey, err := a.deriver.Derive(password, account.EncryptionSalt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMigrationFailed, err.Error())
	}
	defer cryptoDomain.Zero(legacyKey)

	material, err := a.generateServerKeyMaterial(password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMigrationFailed, err.Error())
	}

	documents, err := a.documentRepo.ListByAccount(ctx, account.ID)
	if err != nil {
		cryptoDomain.Zero(material.contentKey)
		return nil, apperrors.Wrap(apperrors.ErrMigrationFailed, err.Error())
	}

	staged := make([]stagedBlob, 0, len(documents))
	for _, document := range documents {
		newFileID, err := a.reencryptBlob(ctx, document.FileID, legacyKey, material.contentKey)
		if err != nil {
			a.rollbackStagedBlobs(ctx, staged)
			cryptoDomain.Zero(material.contentKey)
			return nil, apperrors.Wrap(apperrors.ErrMigrationFailed, err.Error())
		}
		staged = append(staged, stagedBlob{
			documentID: document.ID,
			oldFileID:  document.FileID,
			newFileID:  newFileID,
		})
	}

	now := time.Now().UTC()
	account.EncryptionSalt = material.encryptionSalt
	account.WrappedContentKey = &material.wrappedContentKey
	account.RecoverySalt = material.recoverySalt
	account.WrappedRecoveryKey = &material.wrappedRecoveryKey
	account.Generation = accountDomain.GenerationKeyWrapped
	account.RecoveryPhraseAcknowledged = false
	account.UpdatedAt = now

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		for _, s := range staged {
			if err := a.documentRepo.UpdateFileID(ctx, s.documentID, s.newFileID, now); err != nil {
				return err
			}
		}
		return a.accountRepo.Update(ctx, account)
	})
	if err != nil {
		a.rollbackStagedBlobs(ctx, staged)
		cryptoDomain.Zero(material.contentKey)
		// Restore the in-place mutations so the caller's fallback path sees
		// the pre-migration account.
		restored, getErr := a.accountRepo.Get(ctx, account.ID)
		if getErr == nil {
			*account = *restored
		}
		return nil, apperrors.Wrap(apperrors.ErrMigrationFailed, err.Error())
	}

	// The old ciphertexts are unreachable after commit; deletion failures only
	// leak storage, never data.
	for _, s := range staged {
		if err := a.blobStore.Delete(ctx, s.oldFileID); err != nil {
			a.logger.Warn("failed to delete superseded blob",
				slog.String("file_id", s.oldFileID),
				slog.Any("error", err),
			)
		}
	}

	a.logger.Info("legacy account migrated",
		slog.String("account_id", account.ID.String()),
		slog.Int("documents", len(staged)),
	)

	return &migrationResult{
		contentKey:     material.contentKey,
		recoveryPhrase: material.recoveryPhrase,
	}, nil
}

// reencryptBlob downloads a document blob, decrypts it with oldKey, encrypts
// it with newKey, and uploads the result under a fresh file ID. The original
// blob is left untouched.
func (a *accountUseCase) reencryptBlob(
	ctx context.Context,
	fileID string,
	oldKey, newKey []byte,
) (string, error) {
	data, err := a.blobStore.Download(ctx, fileID)
	if err != nil {
		return "", err
	}

	encoded, err := cryptoDomain.DecodeWrappedBlob(string(data))
	if err != nil {
		return "", err
	}

	plaintext, err := a.wrapper.Unwrap(encoded, oldKey)
	if err != nil {
		return "", err
	}
	defer cryptoDomain.Zero(plaintext)

	rewrapped, err := a.wrapper.Wrap(plaintext, newKey)
	if err != nil {
		return "", err
	}

	newFileID := uuid.Must(uuid.NewV7()).String()
	if err := a.blobStore.Upload(ctx, newFileID, []byte(rewrapped.Encode())); err != nil {
		return "", err
	}

	return newFileID, nil
}

// rollbackStagedBlobs deletes the blobs uploaded by an aborted migration.
// Best-effort: a leftover blob is unreferenced ciphertext, not a correctness
// problem.
func (a *accountUseCase) rollbackStagedBlobs(ctx context.Context, staged []stagedBlob) {
	for _, s := range staged {
		if err := a.blobStore.Delete(ctx, s.newFileID); err != nil {
			a.logger.Warn("failed to delete staged blob during rollback",
				slog.String("file_id", s.newFileID),
				slog.Any("error", err),
			)
		}
	}
}
