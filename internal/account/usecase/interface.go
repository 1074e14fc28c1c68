// Package usecase implements the key lifecycle business logic: registration,
// login, generation migration, zero-knowledge finalize, password change, and
// the recovery and reset flows.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	documentDomain "github.com/allisson/docvault/internal/document/domain"
)

// AccountRepository defines persistence operations for accounts.
// Implementations must support transaction-aware operations via context propagation.
type AccountRepository interface {
	// Create stores a new account. Returns ErrUsernameTaken on duplicate username.
	Create(ctx context.Context, account *accountDomain.Account) error

	// Update modifies an existing account.
	Update(ctx context.Context, account *accountDomain.Account) error

	// Get retrieves an account by ID. Returns ErrAccountNotFound if not found.
	Get(ctx context.Context, accountID uuid.UUID) (*accountDomain.Account, error)

	// GetByUsername retrieves an account by username. Returns ErrAccountNotFound if not found.
	GetByUsername(ctx context.Context, username string) (*accountDomain.Account, error)
}

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *accountDomain.Session) error

	// GetByTokenHash retrieves a session by token hash. Returns ErrSessionNotFound if not found.
	GetByTokenHash(ctx context.Context, tokenHash string) (*accountDomain.Session, error)

	// RevokeAllForAccount revokes every active session for the account.
	RevokeAllForAccount(ctx context.Context, accountID uuid.UUID, revokedAt time.Time) error
}

// ResetCodeRepository defines persistence operations for reset codes.
type ResetCodeRepository interface {
	// Create stores a new reset code.
	Create(ctx context.Context, resetCode *accountDomain.ResetCode) error

	// GetByCodeHash retrieves a reset code by hash. Returns ErrResetCodeNotFound if not found.
	GetByCodeHash(ctx context.Context, codeHash string) (*accountDomain.ResetCode, error)

	// MarkUsed records the reset code as consumed.
	MarkUsed(ctx context.Context, resetCodeID uuid.UUID, usedAt time.Time) error
}

// DocumentRepository defines the document persistence operations the key
// lifecycle needs: enumerating an account's documents for migration,
// repointing blob references, and the destructive wipe.
type DocumentRepository interface {
	// ListByAccount returns all documents owned by the account.
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*documentDomain.Document, error)

	// UpdateFileID repoints a document row at a new blob reference.
	UpdateFileID(ctx context.Context, documentID uuid.UUID, fileID string, updatedAt time.Time) error

	// DeleteAllForAccount deletes every document row for the account and
	// returns the number of rows removed.
	DeleteAllForAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// AccountUseCase defines the key lifecycle operations exposed to the HTTP layer.
type AccountUseCase interface {
	// Register creates a new account. With ClientWraps the account starts
	// directly in the ZeroKnowledge generation using the client-generated
	// wraps; otherwise the server generates the content key, both wraps, and
	// a recovery phrase that is returned exactly once.
	Register(ctx context.Context, input *accountDomain.RegisterInput) (*accountDomain.RegisterOutput, error)

	// Login authenticates the account and issues a session token.
	//
	// Legacy accounts are migrated to KeyWrapped on the spot; if the
	// migration fails the login still succeeds using the directly derived
	// legacy key and the account stays Legacy for retry on the next login.
	// KeyWrapped accounts additionally receive the one-time plaintext content
	// key and a finalize token so the client can complete the zero-knowledge
	// transition.
	Login(ctx context.Context, input *accountDomain.LoginInput) (*accountDomain.LoginOutput, error)

	// Authenticate validates a session token and returns the account.
	Authenticate(ctx context.Context, plainToken string) (*accountDomain.Account, error)

	// FinalizeZeroKnowledge completes the KeyWrapped -> ZeroKnowledge
	// transition with client-generated wraps. Valid once per pending
	// finalize; returns ErrStaleFinalize otherwise. Clears the session key
	// cache entry for the account.
	FinalizeZeroKnowledge(ctx context.Context, accountID uuid.UUID, input *accountDomain.FinalizeInput) error

	// ChangePassword rotates the password-derived wrap without changing the
	// content key. Zero-knowledge accounts must supply ClientRewrap; its
	// absence is an error and stored wraps are left untouched. All sessions
	// are revoked and the cache entry evicted.
	ChangePassword(
		ctx context.Context,
		accountID uuid.UUID,
		input *accountDomain.ChangePasswordInput,
	) (*accountDomain.ChangePasswordOutput, error)

	// AcknowledgeRecoveryPhrase records that the user confirmed seeing the
	// current recovery phrase.
	AcknowledgeRecoveryPhrase(ctx context.Context, accountID uuid.UUID) error

	// GetWrappedKeyMaterial returns the wrapped content key and salt a
	// zero-knowledge or PIN client needs for a local unwrap. The server never
	// performs the unwrap for these accounts.
	GetWrappedKeyMaterial(ctx context.Context, accountID uuid.UUID) (*accountDomain.KeyMaterialOutput, error)

	// RequestReset issues a single-use reset code for the account. Delivery
	// of the code is external to this service.
	RequestReset(ctx context.Context, username string) (string, error)

	// ResetWithRecovery performs a non-destructive password reset using the
	// recovery phrase (or client-side rewrap for zero-knowledge accounts).
	// Documents are preserved; the old recovery phrase is invalidated.
	ResetWithRecovery(
		ctx context.Context,
		input *accountDomain.ResetWithRecoveryInput,
	) (*accountDomain.ResetWithRecoveryOutput, error)

	// ResetDestructive permanently deletes every document, generates a brand
	// new content key, and wraps it per the requesting client's capability.
	ResetDestructive(
		ctx context.Context,
		input *accountDomain.ResetDestructiveInput,
	) (*accountDomain.ResetDestructiveOutput, error)
}
