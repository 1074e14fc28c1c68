package domain

import (
	apperrors "github.com/allisson/docvault/internal/errors"
)

// Generation identifies which of the three successive security architectures
// an account is in. It is a closed tagged union derived from the two persisted
// booleans (key_migrated, e2e_migrated) at the repository boundary; business
// logic never branches on the raw flags.
type Generation int

const (
	// GenerationLegacy means the content key equals the password-derived key
	// directly. Changing the password changes the content key, so every
	// document must be re-encrypted on migration.
	GenerationLegacy Generation = iota

	// GenerationKeyWrapped means the account has a stable random content key
	// wrapped under password- and recovery-derived keys, unwrapped server-side
	// at login.
	GenerationKeyWrapped

	// GenerationZeroKnowledge means the same wrap shape as KeyWrapped, but all
	// wrap and unwrap operations happen on the client. The server only ever
	// stores opaque blobs and ciphertext.
	GenerationZeroKnowledge
)

// ErrInconsistentGenerationFlags indicates a persisted flag combination that
// does not map to any generation (e2e_migrated without key_migrated).
var ErrInconsistentGenerationFlags = apperrors.Wrap(
	apperrors.ErrInvalidInput, "inconsistent generation flags",
)

// GenerationFromFlags converts the persisted flag pair into a Generation.
// ZeroKnowledge requires both flags, KeyWrapped only the first. The pair
// (key_migrated=false, e2e_migrated=true) is unrepresentable and rejected.
func GenerationFromFlags(keyMigrated, e2eMigrated bool) (Generation, error) {
	switch {
	case keyMigrated && e2eMigrated:
		return GenerationZeroKnowledge, nil
	case keyMigrated:
		return GenerationKeyWrapped, nil
	case e2eMigrated:
		return GenerationLegacy, ErrInconsistentGenerationFlags
	default:
		return GenerationLegacy, nil
	}
}

// Flags converts a Generation back into the persisted flag pair.
func (g Generation) Flags() (keyMigrated, e2eMigrated bool) {
	switch g {
	case GenerationZeroKnowledge:
		return true, true
	case GenerationKeyWrapped:
		return true, false
	default:
		return false, false
	}
}

// String returns the generation name used in logs and metrics labels.
func (g Generation) String() string {
	switch g {
	case GenerationZeroKnowledge:
		return "zero_knowledge"
	case GenerationKeyWrapped:
		return "key_wrapped"
	default:
		return "legacy"
	}
}

// ServerHoldsKey reports whether the server is allowed to hold this account's
// unwrapped content key in the session key cache.
func (g Generation) ServerHoldsKey() bool {
	return g != GenerationZeroKnowledge
}
