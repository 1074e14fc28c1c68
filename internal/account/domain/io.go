package domain

import (
	"github.com/google/uuid"
)

// ClientWraps carries client-generated key material for direct zero-knowledge
// registration or destructive reset. The client generated the content key,
// performed both wraps locally, and the server only stores the opaque blobs.
type ClientWraps struct {
	WrappedContentKey  string // base64 blob, content key under password-derived key
	WrappedRecoveryKey string // base64 blob, content key under recovery-derived key
	EncryptionSalt     []byte
	RecoverySalt       []byte
}

// ClientRewrap carries a client-side rewrap of the existing content key under
// a new password-derived key. Mandatory for zero-knowledge password changes.
type ClientRewrap struct {
	WrappedContentKey string
	EncryptionSalt    []byte
}

// RegisterInput contains the parameters for creating a new account.
// ClientWraps present means the client is zero-knowledge capable and the
// account starts directly in that generation.
type RegisterInput struct {
	Username    string
	Password    string
	ClientWraps *ClientWraps
}

// RegisterOutput contains the result of a registration. RecoveryPhrase is set
// only for server-side registrations and is returned exactly once.
type RegisterOutput struct {
	AccountID      uuid.UUID
	RecoveryPhrase string
}

// LoginInput contains login credentials.
type LoginInput struct {
	Username string
	Password string
}

// LoginOutput contains the session token and, depending on the account's
// generation, one-time key material.
//
// MigrationKeyMaterial is the plaintext content key handed exactly once to a
// KeyWrapped client so it can finalize the zero-knowledge transition. It is
// never logged and never persisted beyond the session key cache.
type LoginOutput struct {
	SessionToken           string
	RecoveryPhrase         string // set once when a legacy migration just ran
	MigrationKeyMaterial   []byte
	FinalizeToken          string
	RequiresClientFinalize bool
}

// FinalizeInput contains the client-generated wraps that complete the
// KeyWrapped -> ZeroKnowledge transition.
type FinalizeInput struct {
	FinalizeToken      string
	WrappedContentKey  string
	WrappedRecoveryKey string
	EncryptionSalt     []byte
	RecoverySalt       []byte
}

// ChangePasswordInput contains the parameters for a password change.
// ClientRewrap is mandatory for zero-knowledge accounts.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ClientRewrap    *ClientRewrap
}

// ChangePasswordOutput contains the result of a password change.
// RecoveryPhrase is set only when the change ran a legacy migration first and
// a fresh recovery phrase was generated as part of it.
type ChangePasswordOutput struct {
	RecoveryPhrase string
}

// ResetWithRecoveryInput contains the parameters for a non-destructive reset.
// Either RecoveryPhrase (server-side accounts) or ClientWraps (zero-knowledge
// accounts, where the unwrap/rewrap happened on the client) must be present.
type ResetWithRecoveryInput struct {
	ResetCode      string
	NewPassword    string
	RecoveryPhrase string
	ClientWraps    *ClientWraps
}

// ResetWithRecoveryOutput contains the freshly generated recovery phrase for
// server-side accounts; empty when the client supplied its own wraps.
type ResetWithRecoveryOutput struct {
	RecoveryPhrase string
}

// ResetDestructiveInput contains the parameters for a destructive reset.
// ClientWraps present decides the resulting generation explicitly; capability
// is never inferred from past account state.
type ResetDestructiveInput struct {
	ResetCode   string
	NewPassword string
	ClientWraps *ClientWraps
}

// ResetDestructiveOutput reports how many documents were permanently deleted,
// plus the new recovery phrase for server-side accounts.
type ResetDestructiveOutput struct {
	DocumentsDeleted int
	RecoveryPhrase   string
}

// KeyMaterialOutput is the wrapped key material a zero-knowledge or PIN client
// needs to perform a local unwrap.
type KeyMaterialOutput struct {
	WrappedKey string
	Salt       []byte
}
