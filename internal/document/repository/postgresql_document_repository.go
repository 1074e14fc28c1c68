// Package repository provides PostgreSQL persistence for documents.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/docvault/internal/database"
	documentDomain "github.com/allisson/docvault/internal/document/domain"
)

const documentColumns = "id, account_id, name, file_id, size, created_at, updated_at"

// PostgreSQLDocumentRepository implements document persistence using PostgreSQL.
type PostgreSQLDocumentRepository struct {
	db *sql.DB
}

// Create stores a new document row.
func (p *PostgreSQLDocumentRepository) Create(ctx context.Context, document *documentDomain.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	querier := database.GetTx(ctx, p.db)
	_, err := querier.ExecContext(ctx, query,
		document.ID,
		document.AccountID,
		document.Name,
		document.FileID,
		document.Size,
		document.CreatedAt,
		document.UpdatedAt,
	)
	return err
}

// Get retrieves a document by ID.
func (p *PostgreSQLDocumentRepository) Get(ctx context.Context, documentID uuid.UUID) (*documentDomain.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1
	`

	querier := database.GetTx(ctx, p.db)
	return scanDocument(querier.QueryRowContext(ctx, query, documentID))
}

// List returns the account's documents ordered by creation time, newest first.
func (p *PostgreSQLDocumentRepository) List(
	ctx context.Context,
	accountID uuid.UUID,
	offset, limit int,
) ([]*documentDomain.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE account_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`

	querier := database.GetTx(ctx, p.db)
	rows, err := querier.QueryContext(ctx, query, accountID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// ListByAccount returns every document owned by the account. Used by the
// migration engine and the destructive reset, which must see all rows.
func (p *PostgreSQLDocumentRepository) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
) ([]*documentDomain.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE account_id = $1
		ORDER BY created_at
	`

	querier := database.GetTx(ctx, p.db)
	rows, err := querier.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// UpdateFileID repoints a document row at a new blob reference.
func (p *PostgreSQLDocumentRepository) UpdateFileID(
	ctx context.Context,
	documentID uuid.UUID,
	fileID string,
	updatedAt time.Time,
) error {
	query := `
		UPDATE documents
		SET file_id = $1, updated_at = $2
		WHERE id = $3
	`

	querier := database.GetTx(ctx, p.db)
	result, err := querier.ExecContext(ctx, query, fileID, updatedAt, documentID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return documentDomain.ErrDocumentNotFound
	}
	return nil
}

// Delete removes a document row.
func (p *PostgreSQLDocumentRepository) Delete(ctx context.Context, documentID uuid.UUID) error {
	query := `
		DELETE FROM documents
		WHERE id = $1
	`

	querier := database.GetTx(ctx, p.db)
	result, err := querier.ExecContext(ctx, query, documentID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return documentDomain.ErrDocumentNotFound
	}
	return nil
}

// DeleteAllForAccount deletes every document row for the account and returns
// the number of rows removed.
func (p *PostgreSQLDocumentRepository) DeleteAllForAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	query := `
		DELETE FROM documents
		WHERE account_id = $1
	`

	querier := database.GetTx(ctx, p.db)
	result, err := querier.ExecContext(ctx, query, accountID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*documentDomain.Document, error) {
	var document documentDomain.Document
	err := row.Scan(
		&document.ID,
		&document.AccountID,
		&document.Name,
		&document.FileID,
		&document.Size,
		&document.CreatedAt,
		&document.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, documentDomain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &document, nil
}

// collectDocuments scans all rows from a multi-row query.
func collectDocuments(rows *sql.Rows) ([]*documentDomain.Document, error) {
	var documents []*documentDomain.Document
	for rows.Next() {
		var document documentDomain.Document
		err := rows.Scan(
			&document.ID,
			&document.AccountID,
			&document.Name,
			&document.FileID,
			&document.Size,
			&document.CreatedAt,
			&document.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		documents = append(documents, &document)
	}
	return documents, rows.Err()
}

// NewPostgreSQLDocumentRepository creates a PostgreSQL-backed document repository.
func NewPostgreSQLDocumentRepository(db *sql.DB) *PostgreSQLDocumentRepository {
	return &PostgreSQLDocumentRepository{db: db}
}
