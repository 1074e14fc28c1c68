package dto

import (
	"encoding/base64"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
)

// RegisterResponse contains the result of creating an account.
// SECURITY: the recovery phrase is returned exactly once and never again.
type RegisterResponse struct {
	AccountID      string `json:"account_id"`
	RecoveryPhrase string `json:"recovery_phrase,omitempty"`
}

// MapRegisterToResponse converts a domain register output to an API response.
func MapRegisterToResponse(output *accountDomain.RegisterOutput) RegisterResponse {
	return RegisterResponse{
		AccountID:      output.AccountID.String(),
		RecoveryPhrase: output.RecoveryPhrase,
	}
}

// LoginResponse contains the session token plus any one-time key material.
// SECURITY: migration_key_material is the plaintext content key, handed out
// exactly once so a key-wrapped client can finalize the zero-knowledge
// transition. It is never persisted in plaintext anywhere.
type LoginResponse struct {
	SessionToken           string `json:"session_token"`
	RecoveryPhrase         string `json:"recovery_phrase,omitempty"`
	MigrationKeyMaterial   string `json:"migration_key_material,omitempty"`
	FinalizeToken          string `json:"finalize_token,omitempty"`
	RequiresClientFinalize bool   `json:"requires_client_finalize"`
}

// MapLoginToResponse converts a domain login output to an API response.
func MapLoginToResponse(output *accountDomain.LoginOutput) LoginResponse {
	response := LoginResponse{
		SessionToken:           output.SessionToken,
		RecoveryPhrase:         output.RecoveryPhrase,
		FinalizeToken:          output.FinalizeToken,
		RequiresClientFinalize: output.RequiresClientFinalize,
	}
	if len(output.MigrationKeyMaterial) > 0 {
		response.MigrationKeyMaterial = base64.StdEncoding.EncodeToString(output.MigrationKeyMaterial)
	}
	return response
}

// ChangePasswordResponse contains the result of a password change.
type ChangePasswordResponse struct {
	RecoveryPhrase string `json:"recovery_phrase,omitempty"`
}

// ResetRequestResponse contains the issued reset code. Delivery of the code
// to the user is external to this service.
type ResetRequestResponse struct {
	ResetCode string `json:"reset_code"`
}

// ResetRecoveryResponse contains the result of a non-destructive reset.
type ResetRecoveryResponse struct {
	RecoveryPhrase string `json:"recovery_phrase,omitempty"`
}

// ResetDestructiveResponse contains the result of a destructive reset.
type ResetDestructiveResponse struct {
	DocumentsDeleted int    `json:"documents_deleted"`
	RecoveryPhrase   string `json:"recovery_phrase,omitempty"`
}

// KeyMaterialResponse contains the wrapped key material for a local unwrap.
type KeyMaterialResponse struct {
	WrappedKey string `json:"wrapped_key"`
	Salt       string `json:"salt"`
}

// MapKeyMaterialToResponse converts a domain key material output to an API response.
func MapKeyMaterialToResponse(output *accountDomain.KeyMaterialOutput) KeyMaterialResponse {
	return KeyMaterialResponse{
		WrappedKey: output.WrappedKey,
		Salt:       base64.StdEncoding.EncodeToString(output.Salt),
	}
}
