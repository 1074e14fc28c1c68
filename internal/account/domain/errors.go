package domain

import (
	"github.com/allisson/docvault/internal/errors"
)

// Account domain errors.
var (
	// ErrAccountNotFound indicates an account with the specified ID or username was not found.
	ErrAccountNotFound = errors.Wrap(errors.ErrNotFound, "account not found")

	// ErrUsernameTaken indicates a registration attempt with an existing username.
	ErrUsernameTaken = errors.Wrap(errors.ErrConflict, "username already taken")

	// ErrSessionNotFound indicates a session with the specified token was not found.
	ErrSessionNotFound = errors.Wrap(errors.ErrNotFound, "session not found")

	// ErrResetCodeNotFound indicates a reset code was not found.
	ErrResetCodeNotFound = errors.Wrap(errors.ErrNotFound, "reset code not found")

	// ErrInvalidCredentials indicates a wrong username/password pair or an
	// expired reset code. Deliberately indistinguishable from an unwrap
	// integrity failure in client-facing responses.
	ErrInvalidCredentials = errors.Wrap(errors.ErrAuthenticationFailure, "invalid credentials")

	// ErrClientRewrapRequired indicates a zero-knowledge account operation
	// that changes the password-derived wrapping key was attempted without a
	// client-side rewrap. The client must re-login and retry with one; the
	// server never falls back to wrapping on the client's behalf.
	ErrClientRewrapRequired = errors.Wrap(errors.ErrInvalidInput, "client rewrap required")

	// ErrRecoveryNotConfigured indicates a recovery-phrase reset was attempted
	// on an account that has no recovery wrap.
	ErrRecoveryNotConfigured = errors.Wrap(errors.ErrRecoveryExhausted, "recovery not configured")
)
