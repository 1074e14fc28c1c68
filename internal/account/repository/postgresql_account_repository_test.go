package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	apperrors "github.com/allisson/docvault/internal/errors"
)

var accountColumnNames = []string{
	"id", "username", "password_verifier", "encryption_salt",
	"wrapped_content_key", "recovery_salt", "wrapped_recovery_key",
	"pin_wrapped_content_key", "pin_salt", "recovery_phrase_acknowledged",
	"key_migrated", "e2e_migrated", "pending_finalize_token_hash",
	"pending_finalize_expires_at", "storage_used", "created_at", "updated_at",
}

func newTestAccount() *accountDomain.Account {
	wrap := "d3JhcHBlZC1rZXk="
	now := time.Now().UTC()
	return &accountDomain.Account{
		ID:                 uuid.Must(uuid.NewV7()),
		Username:           "alice",
		PasswordVerifier:   "$argon2id$hash",
		EncryptionSalt:     []byte("encryption-salt!"),
		WrappedContentKey:  &wrap,
		RecoverySalt:       []byte("recovery-salt!!!"),
		WrappedRecoveryKey: &wrap,
		Generation:         accountDomain.GenerationKeyWrapped,
		StorageUsed:        1024,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestPostgreSQLAccountRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAccountRepository(db)
	account := newTestAccount()

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(
			account.ID, account.Username, account.PasswordVerifier, account.EncryptionSalt,
			account.WrappedContentKey, account.RecoverySalt, account.WrappedRecoveryKey,
			nil, nil, false,
			true, false, nil, nil,
			account.StorageUsed, account.CreatedAt, account.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), account)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAccountRepository_Create_DuplicateUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAccountRepository(db)
	account := newTestAccount()

	mock.ExpectExec("INSERT INTO accounts").
		WillReturnError(apperrors.New(`pq: duplicate key value violates unique constraint "accounts_username_key"`))

	err = repo.Create(context.Background(), account)
	assert.ErrorIs(t, err, accountDomain.ErrUsernameTaken)
}

func TestPostgreSQLAccountRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAccountRepository(db)
	account := newTestAccount()

	rows := sqlmock.NewRows(accountColumnNames).AddRow(
		account.ID.String(), account.Username, account.PasswordVerifier, account.EncryptionSalt,
		*account.WrappedContentKey, account.RecoverySalt, *account.WrappedRecoveryKey,
		nil, nil, account.RecoveryPhraseAcknowledged,
		true, false, nil, nil,
		account.StorageUsed, account.CreatedAt, account.UpdatedAt,
	)
	mock.ExpectQuery("FROM accounts WHERE id").
		WithArgs(account.ID).
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), account.ID)
	require.NoError(t, err)

	assert.Equal(t, account.ID, got.ID)
	assert.Equal(t, account.Username, got.Username)
	assert.Equal(t, accountDomain.GenerationKeyWrapped, got.Generation)
	assert.Equal(t, account.EncryptionSalt, got.EncryptionSalt)
	require.NotNil(t, got.WrappedContentKey)
	assert.Equal(t, *account.WrappedContentKey, *got.WrappedContentKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAccountRepository_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAccountRepository(db)
	accountID := uuid.Must(uuid.NewV7())

	mock.ExpectQuery("FROM accounts WHERE id").
		WithArgs(accountID).
		WillReturnRows(sqlmock.NewRows(accountColumnNames))

	_, err = repo.Get(context.Background(), accountID)
	assert.ErrorIs(t, err, accountDomain.ErrAccountNotFound)
}

func TestPostgreSQLAccountRepository_Get_InconsistentFlags(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAccountRepository(db)
	account := newTestAccount()

	rows := sqlmock.NewRows(accountColumnNames).AddRow(
		account.ID.String(), account.Username, account.PasswordVerifier, account.EncryptionSalt,
		nil, nil, nil,
		nil, nil, false,
		false, true, nil, nil, // e2e_migrated without key_migrated
		int64(0), account.CreatedAt, account.UpdatedAt,
	)
	mock.ExpectQuery("FROM accounts WHERE id").
		WithArgs(account.ID).
		WillReturnRows(rows)

	_, err = repo.Get(context.Background(), account.ID)
	assert.ErrorIs(t, err, accountDomain.ErrInconsistentGenerationFlags)
}

func TestPostgreSQLAccountRepository_GetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAccountRepository(db)
	account := newTestAccount()

	rows := sqlmock.NewRows(accountColumnNames).AddRow(
		account.ID.String(), account.Username, account.PasswordVerifier, account.EncryptionSalt,
		nil, nil, nil,
		nil, nil, false,
		false, false, nil, nil,
		int64(0), account.CreatedAt, account.UpdatedAt,
	)
	mock.ExpectQuery("FROM accounts WHERE username").
		WithArgs("alice").
		WillReturnRows(rows)

	got, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, accountDomain.GenerationLegacy, got.Generation)
	assert.Nil(t, got.WrappedContentKey)
}

func TestPostgreSQLAccountRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAccountRepository(db)
	account := newTestAccount()
	account.Generation = accountDomain.GenerationZeroKnowledge

	mock.ExpectExec("UPDATE accounts").
		WithArgs(
			account.Username, account.PasswordVerifier, account.EncryptionSalt,
			account.WrappedContentKey, account.RecoverySalt, account.WrappedRecoveryKey,
			nil, nil, account.RecoveryPhraseAcknowledged,
			true, true, nil, nil,
			account.StorageUsed, account.UpdatedAt, account.ID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(context.Background(), account)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
