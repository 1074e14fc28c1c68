// Package domain defines account domain models for the key lifecycle engine.
//
// An account owns a single content key that encrypts all of its documents.
// Depending on the account's generation the key is derived directly from the
// password (Legacy), held wrapped under password- and recovery-derived keys
// (KeyWrapped), or managed exclusively by the client (ZeroKnowledge).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a user account and its key material at rest.
//
// Wrapped key fields hold the base64 text encoding of the fixed blob layout
// (IV || tag || ciphertext) and are nil until the corresponding wrap exists.
// Legacy accounts have no wrapped content key at all.
type Account struct {
	ID               uuid.UUID
	Username         string
	PasswordVerifier string // argon2id hash, never a plaintext password
	EncryptionSalt   []byte

	WrappedContentKey  *string
	RecoverySalt       []byte
	WrappedRecoveryKey *string

	// PIN wraps exist only for accounts authenticated through a third-party
	// identity provider, which have no password to derive a wrapping key from.
	PinWrappedContentKey *string
	PinSalt              []byte

	RecoveryPhraseAcknowledged bool
	Generation                 Generation

	// Pending finalize state for the KeyWrapped -> ZeroKnowledge transition.
	// The unwrap-at-login and the client's rewrap submission are not atomic;
	// this token makes the intermediate condition explicit and resumable.
	PendingFinalizeTokenHash *string
	PendingFinalizeExpiresAt *time.Time

	StorageUsed int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPendingFinalize reports whether a zero-knowledge finalize is pending and
// not yet expired at the given time.
func (a *Account) HasPendingFinalize(now time.Time) bool {
	return a.PendingFinalizeTokenHash != nil &&
		a.PendingFinalizeExpiresAt != nil &&
		now.Before(*a.PendingFinalizeExpiresAt)
}

// ClearPendingFinalize removes any pending finalize state.
func (a *Account) ClearPendingFinalize() {
	a.PendingFinalizeTokenHash = nil
	a.PendingFinalizeExpiresAt = nil
}

// HasRecoveryWrap reports whether the account has a recovery-phrase wrap of
// its content key.
func (a *Account) HasRecoveryWrap() bool {
	return a.WrappedRecoveryKey != nil && len(a.RecoverySalt) > 0
}

// IsPinAccount reports whether the account uses a PIN wrap in place of a
// password wrap.
func (a *Account) IsPinAccount() bool {
	return a.PinWrappedContentKey != nil && len(a.PinSalt) > 0
}

// Session is an authenticated session backed by an opaque bearer token.
// Only the SHA-256 hash of the token is persisted.
type Session struct {
	ID        uuid.UUID
	TokenHash string
	AccountID uuid.UUID
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// IsValid reports whether the session is usable at the given time.
func (s *Session) IsValid(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// ResetCode is a single-use, short-lived code authorizing a password reset.
// Only the SHA-256 hash of the code is persisted; delivery is external.
type ResetCode struct {
	ID        uuid.UUID
	CodeHash  string
	AccountID uuid.UUID
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// IsValid reports whether the reset code is usable at the given time.
func (r *ResetCode) IsValid(now time.Time) bool {
	return r.UsedAt == nil && now.Before(r.ExpiresAt)
}
