// Package repository implements data persistence for account entities.
//
// Provides PostgreSQL implementations with transaction support via database.GetTx().
// The generation tagged union is converted to and from the persisted flag pair
// (key_migrated, e2e_migrated) exclusively at this boundary.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	"github.com/allisson/docvault/internal/database"
	apperrors "github.com/allisson/docvault/internal/errors"
)

// PostgreSQLAccountRepository implements Account persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAccountRepository struct {
	db *sql.DB
}

const accountColumns = `id, username, password_verifier, encryption_salt,
	wrapped_content_key, recovery_salt, wrapped_recovery_key,
	pin_wrapped_content_key, pin_salt, recovery_phrase_acknowledged,
	key_migrated, e2e_migrated, pending_finalize_token_hash,
	pending_finalize_expires_at, storage_used, created_at, updated_at`

// Create inserts a new Account into the PostgreSQL database.
// Returns ErrUsernameTaken if the username is already registered.
func (p *PostgreSQLAccountRepository) Create(ctx context.Context, account *accountDomain.Account) error {
	querier := database.GetTx(ctx, p.db)

	keyMigrated, e2eMigrated := account.Generation.Flags()

	query := `INSERT INTO accounts (` + accountColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := querier.ExecContext(
		ctx,
		query,
		account.ID,
		account.Username,
		account.PasswordVerifier,
		account.EncryptionSalt,
		account.WrappedContentKey,
		account.RecoverySalt,
		account.WrappedRecoveryKey,
		account.PinWrappedContentKey,
		account.PinSalt,
		account.RecoveryPhraseAcknowledged,
		keyMigrated,
		e2eMigrated,
		account.PendingFinalizeTokenHash,
		account.PendingFinalizeExpiresAt,
		account.StorageUsed,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return accountDomain.ErrUsernameTaken
		}
		return apperrors.Wrap(err, "failed to create account")
	}
	return nil
}

// Update modifies an existing Account in the PostgreSQL database.
func (p *PostgreSQLAccountRepository) Update(ctx context.Context, account *accountDomain.Account) error {
	querier := database.GetTx(ctx, p.db)

	keyMigrated, e2eMigrated := account.Generation.Flags()

	query := `UPDATE accounts
			  SET username = $1,
				  password_verifier = $2,
				  encryption_salt = $3,
				  wrapped_content_key = $4,
				  recovery_salt = $5,
				  wrapped_recovery_key = $6,
				  pin_wrapped_content_key = $7,
				  pin_salt = $8,
				  recovery_phrase_acknowledged = $9,
				  key_migrated = $10,
				  e2e_migrated = $11,
				  pending_finalize_token_hash = $12,
				  pending_finalize_expires_at = $13,
				  storage_used = $14,
				  updated_at = $15
			  WHERE id = $16`

	_, err := querier.ExecContext(
		ctx,
		query,
		account.Username,
		account.PasswordVerifier,
		account.EncryptionSalt,
		account.WrappedContentKey,
		account.RecoverySalt,
		account.WrappedRecoveryKey,
		account.PinWrappedContentKey,
		account.PinSalt,
		account.RecoveryPhraseAcknowledged,
		keyMigrated,
		e2eMigrated,
		account.PendingFinalizeTokenHash,
		account.PendingFinalizeExpiresAt,
		account.StorageUsed,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update account")
	}

	return nil
}

// Get retrieves an Account by ID from the PostgreSQL database.
// Returns ErrAccountNotFound if the account doesn't exist.
func (p *PostgreSQLAccountRepository) Get(
	ctx context.Context,
	accountID uuid.UUID,
) (*accountDomain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return p.scanAccount(ctx, query, accountID)
}

// GetByUsername retrieves an Account by username from the PostgreSQL database.
// Returns ErrAccountNotFound if the account doesn't exist.
func (p *PostgreSQLAccountRepository) GetByUsername(
	ctx context.Context,
	username string,
) (*accountDomain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return p.scanAccount(ctx, query, username)
}

func (p *PostgreSQLAccountRepository) scanAccount(
	ctx context.Context,
	query string,
	arg any,
) (*accountDomain.Account, error) {
	querier := database.GetTx(ctx, p.db)

	var account accountDomain.Account
	var keyMigrated, e2eMigrated bool

	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordVerifier,
		&account.EncryptionSalt,
		&account.WrappedContentKey,
		&account.RecoverySalt,
		&account.WrappedRecoveryKey,
		&account.PinWrappedContentKey,
		&account.PinSalt,
		&account.RecoveryPhraseAcknowledged,
		&keyMigrated,
		&e2eMigrated,
		&account.PendingFinalizeTokenHash,
		&account.PendingFinalizeExpiresAt,
		&account.StorageUsed,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountDomain.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get account")
	}

	generation, err := accountDomain.GenerationFromFlags(keyMigrated, e2eMigrated)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decode account generation")
	}
	account.Generation = generation

	return &account, nil
}

// NewPostgreSQLAccountRepository creates a new PostgreSQL Account repository.
func NewPostgreSQLAccountRepository(db *sql.DB) *PostgreSQLAccountRepository {
	return &PostgreSQLAccountRepository{db: db}
}
