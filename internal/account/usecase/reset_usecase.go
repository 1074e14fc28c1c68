package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	cryptoService "github.com/allisson/docvault/internal/crypto/service"
	apperrors "github.com/allisson/docvault/internal/errors"
)

// RequestReset issues a single-use reset code for the account and returns the
// plain code for out-of-band delivery.
//
// Security note: an unknown username returns ErrInvalidCredentials rather
// than ErrAccountNotFound to prevent enumeration through the reset endpoint.
func (a *accountUseCase) RequestReset(ctx context.Context, username string) (string, error) {
	account, err := a.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, accountDomain.ErrAccountNotFound) {
			return "", accountDomain.ErrInvalidCredentials
		}
		return "", err
	}

	plainCode, codeHash, err := a.tokenService.GenerateToken()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	resetCode := &accountDomain.ResetCode{
		ID:        uuid.Must(uuid.NewV7()),
		CodeHash:  codeHash,
		AccountID: account.ID,
		ExpiresAt: now.Add(a.config.ResetCodeExpiration),
		CreatedAt: now,
	}
	if err := a.resetCodeRepo.Create(ctx, resetCode); err != nil {
		return "", err
	}

	a.logger.Info("reset code issued",
		slog.String("account_id", account.ID.String()),
	)

	return plainCode, nil
}

// ResetWithRecovery performs a non-destructive password reset. The content
// key survives, so every document remains readable afterwards.
//
// For server-side accounts the recovery phrase unwraps the content key, which
// is then rewrapped under the new password and a freshly generated phrase.
// Zero-knowledge accounts must instead supply ClientWraps produced by a local
// unwrap/rewrap; the server cannot perform the recovery for them.
func (a *accountUseCase) ResetWithRecovery(
	ctx context.Context,
	input *accountDomain.ResetWithRecoveryInput,
) (*accountDomain.ResetWithRecoveryOutput, error) {
	account, resetCode, err := a.consumeResetCode(ctx, input.ResetCode)
	if err != nil {
		return nil, err
	}

	output := &accountDomain.ResetWithRecoveryOutput{}
	now := time.Now().UTC()

	switch account.Generation {
	case accountDomain.GenerationZeroKnowledge:
		if input.ClientWraps == nil {
			return nil, accountDomain.ErrClientRewrapRequired
		}
		if err := applyClientWraps(account, input.ClientWraps); err != nil {
			return nil, err
		}

	case accountDomain.GenerationKeyWrapped:
		if !account.HasRecoveryWrap() {
			return nil, accountDomain.ErrRecoveryNotConfigured
		}

		contentKey, err := a.unwrapWithRecoveryPhrase(account, input.RecoveryPhrase)
		if err != nil {
			return nil, err
		}

		newSalt, newWrap, err := a.wrapUnderSecret(contentKey, input.NewPassword)
		if err != nil {
			cryptoDomain.Zero(contentKey)
			return nil, err
		}

		phrase, err := a.phraseGenerator.Generate()
		if err != nil {
			cryptoDomain.Zero(contentKey)
			return nil, err
		}
		newRecoverySalt, newRecoveryWrap, err := a.wrapUnderSecret(
			contentKey, cryptoService.NormalizePhrase(phrase),
		)
		cryptoDomain.Zero(contentKey)
		if err != nil {
			return nil, err
		}

		account.EncryptionSalt = newSalt
		account.WrappedContentKey = &newWrap
		account.RecoverySalt = newRecoverySalt
		account.WrappedRecoveryKey = &newRecoveryWrap
		account.RecoveryPhraseAcknowledged = false
		output.RecoveryPhrase = phrase

	case accountDomain.GenerationLegacy:
		// Legacy accounts have no recoverable wrapped key; only the
		// destructive reset can help them.
		return nil, accountDomain.ErrRecoveryNotConfigured
	}

	verifier, err := a.passwordService.Hash(input.NewPassword)
	if err != nil {
		return nil, err
	}
	account.PasswordVerifier = verifier
	account.ClearPendingFinalize()
	account.UpdatedAt = now

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.accountRepo.Update(ctx, account); err != nil {
			return err
		}
		if err := a.resetCodeRepo.MarkUsed(ctx, resetCode.ID, now); err != nil {
			return err
		}
		return a.sessionRepo.RevokeAllForAccount(ctx, account.ID, now)
	})
	if err != nil {
		return nil, err
	}

	a.keyCache.Evict(account.ID)

	a.logger.Info("recovery reset completed",
		slog.String("account_id", account.ID.String()),
		slog.String("generation", account.Generation.String()),
	)

	return output, nil
}

// ResetDestructive permanently deletes every document and starts the account
// over with a brand-new content key. The resulting generation follows the
// requesting client's capability: ClientWraps present yields ZeroKnowledge,
// otherwise the server generates the key material and the account lands in
// KeyWrapped. Past generation is deliberately not consulted.
func (a *accountUseCase) ResetDestructive(
	ctx context.Context,
	input *accountDomain.ResetDestructiveInput,
) (*accountDomain.ResetDestructiveOutput, error) {
	account, resetCode, err := a.consumeResetCode(ctx, input.ResetCode)
	if err != nil {
		return nil, err
	}

	documents, err := a.documentRepo.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	output := &accountDomain.ResetDestructiveOutput{}
	now := time.Now().UTC()

	if input.ClientWraps != nil {
		if err := applyClientWraps(account, input.ClientWraps); err != nil {
			return nil, err
		}
		account.Generation = accountDomain.GenerationZeroKnowledge
		account.RecoveryPhraseAcknowledged = true
	} else {
		material, err := a.generateServerKeyMaterial(input.NewPassword)
		if err != nil {
			return nil, err
		}
		cryptoDomain.Zero(material.contentKey)

		account.EncryptionSalt = material.encryptionSalt
		account.WrappedContentKey = &material.wrappedContentKey
		account.RecoverySalt = material.recoverySalt
		account.WrappedRecoveryKey = &material.wrappedRecoveryKey
		account.Generation = accountDomain.GenerationKeyWrapped
		account.RecoveryPhraseAcknowledged = false
		output.RecoveryPhrase = material.recoveryPhrase
	}

	verifier, err := a.passwordService.Hash(input.NewPassword)
	if err != nil {
		return nil, err
	}
	account.PasswordVerifier = verifier
	account.PinWrappedContentKey = nil
	account.PinSalt = nil
	account.StorageUsed = 0
	account.ClearPendingFinalize()
	account.UpdatedAt = now

	var deleted int64
	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		deleted, err = a.documentRepo.DeleteAllForAccount(ctx, account.ID)
		if err != nil {
			return err
		}
		if err := a.accountRepo.Update(ctx, account); err != nil {
			return err
		}
		if err := a.resetCodeRepo.MarkUsed(ctx, resetCode.ID, now); err != nil {
			return err
		}
		return a.sessionRepo.RevokeAllForAccount(ctx, account.ID, now)
	})
	if err != nil {
		return nil, err
	}

	a.keyCache.Evict(account.ID)

	// Blob deletion happens after commit; the rows are already gone, so a
	// failed delete only leaks unreferenced ciphertext.
	for _, document := range documents {
		if err := a.blobStore.Delete(ctx, document.FileID); err != nil {
			a.logger.Warn("failed to delete document blob",
				slog.String("file_id", document.FileID),
				slog.Any("error", err),
			)
		}
	}

	output.DocumentsDeleted = int(deleted)

	a.logger.Info("destructive reset completed",
		slog.String("account_id", account.ID.String()),
		slog.String("generation", account.Generation.String()),
		slog.Int64("documents_deleted", deleted),
	)

	return output, nil
}

// consumeResetCode validates a plain reset code and loads its account. The
// code is not marked used here; the caller does that inside its transaction
// so a failed reset leaves the code valid for retry.
func (a *accountUseCase) consumeResetCode(
	ctx context.Context,
	plainCode string,
) (*accountDomain.Account, *accountDomain.ResetCode, error) {
	codeHash := a.tokenService.HashToken(plainCode)

	resetCode, err := a.resetCodeRepo.GetByCodeHash(ctx, codeHash)
	if err != nil {
		if errors.Is(err, accountDomain.ErrResetCodeNotFound) {
			return nil, nil, accountDomain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !resetCode.IsValid(time.Now().UTC()) {
		return nil, nil, accountDomain.ErrInvalidCredentials
	}

	account, err := a.accountRepo.Get(ctx, resetCode.AccountID)
	if err != nil {
		return nil, nil, err
	}

	return account, resetCode, nil
}

// unwrapWithRecoveryPhrase unwraps the recovery wrap with the normalized
// phrase. A failed unwrap is terminal for recovery (ErrRecoveryExhausted
// family): the phrase is either wrong or was invalidated by a later rotation.
func (a *accountUseCase) unwrapWithRecoveryPhrase(
	account *accountDomain.Account,
	phrase string,
) ([]byte, error) {
	recoveryKey, err := a.deriver.Derive(
		cryptoService.NormalizePhrase(phrase), account.RecoverySalt,
	)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(recoveryKey)

	blob, err := cryptoDomain.DecodeWrappedBlob(*account.WrappedRecoveryKey)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRecoveryExhausted, "stored recovery wrap is corrupt")
	}

	contentKey, err := a.wrapper.Unwrap(blob, recoveryKey)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRecoveryExhausted, "recovery phrase does not unwrap the content key")
	}

	return contentKey, nil
}
