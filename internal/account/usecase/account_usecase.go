package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	accountService "github.com/allisson/docvault/internal/account/service"
	"github.com/allisson/docvault/internal/blob"
	"github.com/allisson/docvault/internal/config"
	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	cryptoService "github.com/allisson/docvault/internal/crypto/service"
	"github.com/allisson/docvault/internal/database"
	apperrors "github.com/allisson/docvault/internal/errors"
	"github.com/allisson/docvault/internal/keycache"
)

// saltSize is the size in bytes of every freshly generated salt.
const saltSize = 16

// accountUseCase implements AccountUseCase.
type accountUseCase struct {
	config          *config.Config
	txManager       database.TxManager
	accountRepo     AccountRepository
	sessionRepo     SessionRepository
	resetCodeRepo   ResetCodeRepository
	documentRepo    DocumentRepository
	blobStore       blob.Store
	keyCache        keycache.Cache
	passwordService accountService.PasswordService
	tokenService    accountService.TokenService
	deriver         cryptoService.KeyDeriver
	wrapper         cryptoService.KeyWrapper
	phraseGenerator cryptoService.PhraseGenerator
	logger          *slog.Logger
}

// serverKeyMaterial holds a freshly generated content key and both of its
// server-side wraps. The content key must be zeroed by the caller once it is
// no longer needed.
type serverKeyMaterial struct {
	contentKey         []byte
	encryptionSalt     []byte
	wrappedContentKey  string
	recoverySalt       []byte
	wrappedRecoveryKey string
	recoveryPhrase     string
}

// Register creates a new account.
//
// With ClientWraps the client generated the content key and performed both
// wraps locally; the account starts directly in ZeroKnowledge and the server
// never sees a usable key. Otherwise the server generates the content key,
// wraps it under the password- and recovery-derived keys, and returns the
// recovery phrase exactly once.
func (a *accountUseCase) Register(
	ctx context.Context,
	input *accountDomain.RegisterInput,
) (*accountDomain.RegisterOutput, error) {
	verifier, err := a.passwordService.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &accountDomain.Account{
		ID:               uuid.Must(uuid.NewV7()),
		Username:         input.Username,
		PasswordVerifier: verifier,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	output := &accountDomain.RegisterOutput{AccountID: account.ID}

	if input.ClientWraps != nil {
		if err := applyClientWraps(account, input.ClientWraps); err != nil {
			return nil, err
		}
		account.Generation = accountDomain.GenerationZeroKnowledge
		// The client generated and displayed the phrase itself.
		account.RecoveryPhraseAcknowledged = true
	} else {
		material, err := a.generateServerKeyMaterial(input.Password)
		if err != nil {
			return nil, err
		}
		cryptoDomain.Zero(material.contentKey)

		account.EncryptionSalt = material.encryptionSalt
		account.WrappedContentKey = &material.wrappedContentKey
		account.RecoverySalt = material.recoverySalt
		account.WrappedRecoveryKey = &material.wrappedRecoveryKey
		account.Generation = accountDomain.GenerationKeyWrapped
		output.RecoveryPhrase = material.recoveryPhrase
	}

	if err := a.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	a.logger.Info("account registered",
		slog.String("account_id", account.ID.String()),
		slog.String("generation", account.Generation.String()),
	)

	return output, nil
}

// Login authenticates the account, migrates Legacy accounts, and issues a
// session token.
//
// Security notes:
//   - A missing account and a wrong password both return ErrInvalidCredentials
//     to prevent username enumeration.
//   - The one-time MigrationKeyMaterial for KeyWrapped accounts is never
//     logged and never persisted beyond the session key cache.
func (a *accountUseCase) Login(
	ctx context.Context,
	input *accountDomain.LoginInput,
) (*accountDomain.LoginOutput, error) {
	account, err := a.accountRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, accountDomain.ErrAccountNotFound) {
			return nil, accountDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !a.passwordService.Compare(input.Password, account.PasswordVerifier) {
		return nil, accountDomain.ErrInvalidCredentials
	}

	output := &accountDomain.LoginOutput{}
	now := time.Now().UTC()

	switch account.Generation {
	case accountDomain.GenerationLegacy:
		result, err := a.migrateLegacyAccount(ctx, account, input.Password)
		if err != nil {
			if !errors.Is(err, apperrors.ErrMigrationFailed) {
				return nil, err
			}
			// Availability over strict consistency: the login proceeds with
			// the directly derived legacy key and the account stays Legacy
			// for retry on the next login.
			a.logger.Warn("key migration failed, falling back to legacy key",
				slog.String("account_id", account.ID.String()),
				slog.Any("error", err),
			)
			legacyKey, deriveErr := a.deriver.Derive(input.Password, account.EncryptionSalt)
			if deriveErr != nil {
				return nil, deriveErr
			}
			a.keyCache.Put(account.ID, legacyKey)
			cryptoDomain.Zero(legacyKey)
			break
		}
		a.keyCache.Put(account.ID, result.contentKey)
		cryptoDomain.Zero(result.contentKey)
		output.RecoveryPhrase = result.recoveryPhrase

	case accountDomain.GenerationKeyWrapped:
		contentKey, err := a.unwrapContentKey(account, input.Password)
		if err != nil {
			return nil, err
		}
		a.keyCache.Put(account.ID, contentKey)

		// Offer the zero-knowledge finalize: hand the plaintext key to the
		// client exactly once, guarded by a resumable pending-finalize token.
		finalizeToken, finalizeHash, err := a.tokenService.GenerateToken()
		if err != nil {
			cryptoDomain.Zero(contentKey)
			return nil, err
		}
		expiresAt := now.Add(a.config.PendingFinalizeTTL)
		account.PendingFinalizeTokenHash = &finalizeHash
		account.PendingFinalizeExpiresAt = &expiresAt
		account.UpdatedAt = now
		if err := a.accountRepo.Update(ctx, account); err != nil {
			cryptoDomain.Zero(contentKey)
			return nil, err
		}

		output.MigrationKeyMaterial = contentKey
		output.FinalizeToken = finalizeToken
		output.RequiresClientFinalize = true

	case accountDomain.GenerationZeroKnowledge:
		// The server never unwraps for zero-knowledge accounts; the client
		// fetches the wrapped key material and unwraps locally.
	}

	sessionToken, err := a.createSession(ctx, account.ID, now)
	if err != nil {
		return nil, err
	}
	output.SessionToken = sessionToken

	a.logger.Info("login succeeded",
		slog.String("account_id", account.ID.String()),
		slog.String("generation", account.Generation.String()),
	)

	return output, nil
}

// Authenticate validates a session token and returns the account.
// Token not found, expired, and revoked all collapse to ErrInvalidCredentials.
func (a *accountUseCase) Authenticate(
	ctx context.Context,
	plainToken string,
) (*accountDomain.Account, error) {
	tokenHash := a.tokenService.HashToken(plainToken)

	session, err := a.sessionRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, accountDomain.ErrSessionNotFound) {
			return nil, accountDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !session.IsValid(time.Now().UTC()) {
		return nil, accountDomain.ErrInvalidCredentials
	}

	account, err := a.accountRepo.Get(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, accountDomain.ErrAccountNotFound) {
			return nil, accountDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	return account, nil
}

// FinalizeZeroKnowledge completes the KeyWrapped -> ZeroKnowledge transition.
// Only valid while a pending finalize issued at login is active; the finalize
// token is single-use and the cache entry is evicted so no server-resident
// usable key remains.
func (a *accountUseCase) FinalizeZeroKnowledge(
	ctx context.Context,
	accountID uuid.UUID,
	input *accountDomain.FinalizeInput,
) error {
	account, err := a.accountRepo.Get(ctx, accountID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if account.Generation != accountDomain.GenerationKeyWrapped || !account.HasPendingFinalize(now) {
		return apperrors.ErrStaleFinalize
	}
	if a.tokenService.HashToken(input.FinalizeToken) != *account.PendingFinalizeTokenHash {
		return apperrors.ErrStaleFinalize
	}

	wraps := &accountDomain.ClientWraps{
		WrappedContentKey:  input.WrappedContentKey,
		WrappedRecoveryKey: input.WrappedRecoveryKey,
		EncryptionSalt:     input.EncryptionSalt,
		RecoverySalt:       input.RecoverySalt,
	}
	if err := applyClientWraps(account, wraps); err != nil {
		return err
	}

	account.Generation = accountDomain.GenerationZeroKnowledge
	account.RecoveryPhraseAcknowledged = true
	account.ClearPendingFinalize()
	account.UpdatedAt = now

	if err := a.accountRepo.Update(ctx, account); err != nil {
		return err
	}

	a.keyCache.Evict(accountID)

	a.logger.Info("zero-knowledge finalize completed",
		slog.String("account_id", accountID.String()),
	)

	return nil
}

// ChangePassword rotates the password-derived wrap. The content key itself is
// never changed here, so no document is touched; rotation is O(1) in account
// size.
func (a *accountUseCase) ChangePassword(
	ctx context.Context,
	accountID uuid.UUID,
	input *accountDomain.ChangePasswordInput,
) (*accountDomain.ChangePasswordOutput, error) {
	account, err := a.accountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if !a.passwordService.Compare(input.CurrentPassword, account.PasswordVerifier) {
		return nil, accountDomain.ErrInvalidCredentials
	}

	output := &accountDomain.ChangePasswordOutput{}
	now := time.Now().UTC()

	// For Legacy accounts the content key IS the password-derived key, so a
	// password change would silently re-key every document. Migrate to
	// KeyWrapped first; unlike login there is no fallback, because changing
	// the password under the old derived key would strand the documents.
	if account.Generation == accountDomain.GenerationLegacy {
		result, err := a.migrateLegacyAccount(ctx, account, input.CurrentPassword)
		if err != nil {
			return nil, err
		}
		cryptoDomain.Zero(result.contentKey)
		output.RecoveryPhrase = result.recoveryPhrase
	}

	switch account.Generation {
	case accountDomain.GenerationKeyWrapped:
		contentKey, err := a.unwrapContentKey(account, input.CurrentPassword)
		if err != nil {
			return nil, err
		}

		newSalt, wrapped, err := a.wrapUnderSecret(contentKey, input.NewPassword)
		cryptoDomain.Zero(contentKey)
		if err != nil {
			return nil, err
		}
		account.EncryptionSalt = newSalt
		account.WrappedContentKey = &wrapped

	case accountDomain.GenerationZeroKnowledge:
		if input.ClientRewrap == nil {
			return nil, accountDomain.ErrClientRewrapRequired
		}
		if _, err := cryptoDomain.DecodeWrappedBlob(input.ClientRewrap.WrappedContentKey); err != nil {
			return nil, err
		}
		if len(input.ClientRewrap.EncryptionSalt) == 0 {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "encryption salt must not be empty")
		}
		account.EncryptionSalt = input.ClientRewrap.EncryptionSalt
		account.WrappedContentKey = &input.ClientRewrap.WrappedContentKey
	}

	verifier, err := a.passwordService.Hash(input.NewPassword)
	if err != nil {
		return nil, err
	}
	account.PasswordVerifier = verifier
	account.UpdatedAt = now

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.accountRepo.Update(ctx, account); err != nil {
			return err
		}
		return a.sessionRepo.RevokeAllForAccount(ctx, account.ID, now)
	})
	if err != nil {
		return nil, err
	}

	a.keyCache.Evict(account.ID)

	a.logger.Info("password changed",
		slog.String("account_id", account.ID.String()),
		slog.String("generation", account.Generation.String()),
	)

	return output, nil
}

// AcknowledgeRecoveryPhrase records that the user confirmed seeing the
// current recovery phrase.
func (a *accountUseCase) AcknowledgeRecoveryPhrase(ctx context.Context, accountID uuid.UUID) error {
	account, err := a.accountRepo.Get(ctx, accountID)
	if err != nil {
		return err
	}

	account.RecoveryPhraseAcknowledged = true
	account.UpdatedAt = time.Now().UTC()

	return a.accountRepo.Update(ctx, account)
}

// GetWrappedKeyMaterial returns the wrapped content key and the salt a client
// needs to unwrap it locally. PIN accounts receive their PIN wrap, every
// other account its password wrap. Legacy accounts have no wrapped key.
func (a *accountUseCase) GetWrappedKeyMaterial(
	ctx context.Context,
	accountID uuid.UUID,
) (*accountDomain.KeyMaterialOutput, error) {
	account, err := a.accountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if account.IsPinAccount() {
		return &accountDomain.KeyMaterialOutput{
			WrappedKey: *account.PinWrappedContentKey,
			Salt:       account.PinSalt,
		}, nil
	}

	if account.WrappedContentKey == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "account has no wrapped key material")
	}

	return &accountDomain.KeyMaterialOutput{
		WrappedKey: *account.WrappedContentKey,
		Salt:       account.EncryptionSalt,
	}, nil
}

// createSession issues a session token and persists its hash.
func (a *accountUseCase) createSession(
	ctx context.Context,
	accountID uuid.UUID,
	now time.Time,
) (string, error) {
	plainToken, tokenHash, err := a.tokenService.GenerateToken()
	if err != nil {
		return "", err
	}

	session := &accountDomain.Session{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: tokenHash,
		AccountID: accountID,
		ExpiresAt: now.Add(a.config.SessionExpiration),
		CreatedAt: now,
	}
	if err := a.sessionRepo.Create(ctx, session); err != nil {
		return "", err
	}

	return plainToken, nil
}

// unwrapContentKey unwraps the account's content key with the password.
// The caller must zero the returned key when done.
func (a *accountUseCase) unwrapContentKey(
	account *accountDomain.Account,
	password string,
) ([]byte, error) {
	if account.WrappedContentKey == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "account has no wrapped content key")
	}

	wrappingKey, err := a.deriver.Derive(password, account.EncryptionSalt)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(wrappingKey)

	blob, err := cryptoDomain.DecodeWrappedBlob(*account.WrappedContentKey)
	if err != nil {
		return nil, err
	}

	return a.wrapper.Unwrap(blob, wrappingKey)
}

// wrapUnderSecret wraps key under a key derived from secret and a fresh salt.
func (a *accountUseCase) wrapUnderSecret(key []byte, secret string) ([]byte, string, error) {
	salt, err := randomBytes(saltSize)
	if err != nil {
		return nil, "", err
	}

	wrappingKey, err := a.deriver.Derive(secret, salt)
	if err != nil {
		return nil, "", err
	}
	defer cryptoDomain.Zero(wrappingKey)

	wrapped, err := a.wrapper.Wrap(key, wrappingKey)
	if err != nil {
		return nil, "", err
	}

	return salt, wrapped.Encode(), nil
}

// generateServerKeyMaterial creates a brand-new content key, wraps it under
// the password and under a freshly generated recovery phrase, and returns
// everything needed to persist the wraps. The caller owns the content key.
func (a *accountUseCase) generateServerKeyMaterial(password string) (*serverKeyMaterial, error) {
	contentKey, err := randomBytes(cryptoDomain.KeySize)
	if err != nil {
		return nil, err
	}

	encryptionSalt, wrappedContentKey, err := a.wrapUnderSecret(contentKey, password)
	if err != nil {
		cryptoDomain.Zero(contentKey)
		return nil, err
	}

	phrase, err := a.phraseGenerator.Generate()
	if err != nil {
		cryptoDomain.Zero(contentKey)
		return nil, err
	}

	recoverySalt, wrappedRecoveryKey, err := a.wrapUnderSecret(
		contentKey, cryptoService.NormalizePhrase(phrase),
	)
	if err != nil {
		cryptoDomain.Zero(contentKey)
		return nil, err
	}

	return &serverKeyMaterial{
		contentKey:         contentKey,
		encryptionSalt:     encryptionSalt,
		wrappedContentKey:  wrappedContentKey,
		recoverySalt:       recoverySalt,
		wrappedRecoveryKey: wrappedRecoveryKey,
		recoveryPhrase:     phrase,
	}, nil
}

// applyClientWraps validates client-submitted wraps and salts and applies
// them to the account. The blobs are opaque to the server; only their shape
// is checked.
func applyClientWraps(account *accountDomain.Account, wraps *accountDomain.ClientWraps) error {
	if _, err := cryptoDomain.DecodeWrappedBlob(wraps.WrappedContentKey); err != nil {
		return err
	}
	if _, err := cryptoDomain.DecodeWrappedBlob(wraps.WrappedRecoveryKey); err != nil {
		return err
	}
	if len(wraps.EncryptionSalt) == 0 || len(wraps.RecoverySalt) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "salts must not be empty")
	}

	account.EncryptionSalt = wraps.EncryptionSalt
	account.WrappedContentKey = &wraps.WrappedContentKey
	account.RecoverySalt = wraps.RecoverySalt
	account.WrappedRecoveryKey = &wraps.WrappedRecoveryKey
	return nil
}

// randomBytes returns n cryptographically secure random bytes.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate random bytes")
	}
	return b, nil
}

// NewAccountUseCase creates a new AccountUseCase with the provided dependencies.
func NewAccountUseCase(
	cfg *config.Config,
	txManager database.TxManager,
	accountRepo AccountRepository,
	sessionRepo SessionRepository,
	resetCodeRepo ResetCodeRepository,
	documentRepo DocumentRepository,
	blobStore blob.Store,
	keyCache keycache.Cache,
	passwordService accountService.PasswordService,
	tokenService accountService.TokenService,
	deriver cryptoService.KeyDeriver,
	wrapper cryptoService.KeyWrapper,
	phraseGenerator cryptoService.PhraseGenerator,
	logger *slog.Logger,
) AccountUseCase {
	return &accountUseCase{
		config:          cfg,
		txManager:       txManager,
		accountRepo:     accountRepo,
		sessionRepo:     sessionRepo,
		resetCodeRepo:   resetCodeRepo,
		documentRepo:    documentRepo,
		blobStore:       blobStore,
		keyCache:        keyCache,
		passwordService: passwordService,
		tokenService:    tokenService,
		deriver:         deriver,
		wrapper:         wrapper,
		phraseGenerator: phraseGenerator,
		logger:          logger,
	}
}
