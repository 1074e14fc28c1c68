package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	"github.com/allisson/docvault/internal/database"
	apperrors "github.com/allisson/docvault/internal/errors"
)

// PostgreSQLResetCodeRepository implements ResetCode persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLResetCodeRepository struct {
	db *sql.DB
}

// Create inserts a new ResetCode into the PostgreSQL database.
func (p *PostgreSQLResetCodeRepository) Create(ctx context.Context, resetCode *accountDomain.ResetCode) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO reset_codes (id, code_hash, account_id, expires_at, used_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		resetCode.ID,
		resetCode.CodeHash,
		resetCode.AccountID,
		resetCode.ExpiresAt,
		resetCode.UsedAt,
		resetCode.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create reset code")
	}
	return nil
}

// GetByCodeHash retrieves a ResetCode by its code hash.
// Returns ErrResetCodeNotFound if the code doesn't exist.
func (p *PostgreSQLResetCodeRepository) GetByCodeHash(
	ctx context.Context,
	codeHash string,
) (*accountDomain.ResetCode, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, code_hash, account_id, expires_at, used_at, created_at
			  FROM reset_codes WHERE code_hash = $1`

	var resetCode accountDomain.ResetCode

	err := querier.QueryRowContext(ctx, query, codeHash).Scan(
		&resetCode.ID,
		&resetCode.CodeHash,
		&resetCode.AccountID,
		&resetCode.ExpiresAt,
		&resetCode.UsedAt,
		&resetCode.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountDomain.ErrResetCodeNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get reset code")
	}

	return &resetCode, nil
}

// MarkUsed records the reset code as consumed. Codes are single-use.
func (p *PostgreSQLResetCodeRepository) MarkUsed(
	ctx context.Context,
	resetCodeID uuid.UUID,
	usedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE reset_codes SET used_at = $1 WHERE id = $2`

	_, err := querier.ExecContext(ctx, query, usedAt, resetCodeID)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark reset code used")
	}
	return nil
}

// NewPostgreSQLResetCodeRepository creates a new PostgreSQL ResetCode repository.
func NewPostgreSQLResetCodeRepository(db *sql.DB) *PostgreSQLResetCodeRepository {
	return &PostgreSQLResetCodeRepository{db: db}
}
