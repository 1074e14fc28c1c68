package domain

import (
	"github.com/allisson/docvault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors.
// Cryptographic failures never bubble raw library errors to callers; they
// collapse into this small stable set so client-facing messages cannot leak
// which byte failed or whether a credential versus a blob was at fault.
var (
	// ErrInvalidKeySize indicates a key of incorrect length was supplied.
	// Every key in the system is exactly 32 bytes (256 bits).
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrEmptySecret indicates key derivation was attempted with an empty
	// password or recovery phrase.
	ErrEmptySecret = errors.Wrap(errors.ErrInvalidInput, "empty secret")

	// ErrEmptySalt indicates key derivation was attempted with an empty salt.
	ErrEmptySalt = errors.Wrap(errors.ErrInvalidInput, "empty salt")

	// ErrMalformedBlob indicates a wrapped blob could not be parsed. Rejected
	// before any crypto runs.
	ErrMalformedBlob = errors.Wrap(errors.ErrInvalidInput, "malformed wrapped blob")

	// ErrUnwrapFailed indicates an unwrap failed its integrity check: wrong
	// wrapping key, tampered ciphertext, or truncated blob. The cause is not
	// disclosed; callers treat this identically to a wrong credential.
	ErrUnwrapFailed = errors.Wrap(errors.ErrAuthenticationFailure, "unwrap failed")
)
