// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	customValidation "github.com/allisson/docvault/internal/validation"
)

// passwordRule is the strength policy applied to every new password.
var passwordRule = customValidation.PasswordStrength{
	MinLength:     8,
	RequireUpper:  true,
	RequireLower:  true,
	RequireNumber: true,
}

// ClientWrapsRequest carries client-generated key material. Salts travel as
// standard base64; the wrapped keys are already base64 blob encodings.
type ClientWrapsRequest struct {
	WrappedContentKey  string `json:"wrapped_content_key"`
	WrappedRecoveryKey string `json:"wrapped_recovery_key"`
	EncryptionSalt     string `json:"encryption_salt"`
	RecoverySalt       string `json:"recovery_salt"`
}

// Validate checks if the client wraps are structurally valid.
func (r *ClientWrapsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.WrappedContentKey, validation.Required, customValidation.Base64),
		validation.Field(&r.WrappedRecoveryKey, validation.Required, customValidation.Base64),
		validation.Field(&r.EncryptionSalt, validation.Required, customValidation.Base64),
		validation.Field(&r.RecoverySalt, validation.Required, customValidation.Base64),
	)
}

// ToDomain converts the request to domain client wraps.
func (r *ClientWrapsRequest) ToDomain() (*accountDomain.ClientWraps, error) {
	encryptionSalt, err := base64.StdEncoding.DecodeString(r.EncryptionSalt)
	if err != nil {
		return nil, err
	}
	recoverySalt, err := base64.StdEncoding.DecodeString(r.RecoverySalt)
	if err != nil {
		return nil, err
	}
	return &accountDomain.ClientWraps{
		WrappedContentKey:  r.WrappedContentKey,
		WrappedRecoveryKey: r.WrappedRecoveryKey,
		EncryptionSalt:     encryptionSalt,
		RecoverySalt:       recoverySalt,
	}, nil
}

// RegisterRequest contains the parameters for creating a new account.
type RegisterRequest struct {
	Username    string              `json:"username"`
	Password    string              `json:"password"`
	ClientWraps *ClientWrapsRequest `json:"client_wraps,omitempty"`
}

// Validate checks if the register request is valid.
func (r *RegisterRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Username,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(3, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
			passwordRule,
		),
	)
	if err != nil {
		return err
	}
	if r.ClientWraps != nil {
		return r.ClientWraps.Validate()
	}
	return nil
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Password, validation.Required),
	)
}

// FinalizeRequest contains the client wraps completing the zero-knowledge
// transition.
type FinalizeRequest struct {
	FinalizeToken      string `json:"finalize_token"`
	WrappedContentKey  string `json:"wrapped_content_key"`
	WrappedRecoveryKey string `json:"wrapped_recovery_key"`
	EncryptionSalt     string `json:"encryption_salt"`
	RecoverySalt       string `json:"recovery_salt"`
}

// Validate checks if the finalize request is valid.
func (r *FinalizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FinalizeToken, validation.Required, customValidation.NotBlank),
		validation.Field(&r.WrappedContentKey, validation.Required, customValidation.Base64),
		validation.Field(&r.WrappedRecoveryKey, validation.Required, customValidation.Base64),
		validation.Field(&r.EncryptionSalt, validation.Required, customValidation.Base64),
		validation.Field(&r.RecoverySalt, validation.Required, customValidation.Base64),
	)
}

// ToDomain converts the request to a domain finalize input.
func (r *FinalizeRequest) ToDomain() (*accountDomain.FinalizeInput, error) {
	encryptionSalt, err := base64.StdEncoding.DecodeString(r.EncryptionSalt)
	if err != nil {
		return nil, err
	}
	recoverySalt, err := base64.StdEncoding.DecodeString(r.RecoverySalt)
	if err != nil {
		return nil, err
	}
	return &accountDomain.FinalizeInput{
		FinalizeToken:      r.FinalizeToken,
		WrappedContentKey:  r.WrappedContentKey,
		WrappedRecoveryKey: r.WrappedRecoveryKey,
		EncryptionSalt:     encryptionSalt,
		RecoverySalt:       recoverySalt,
	}, nil
}

// ClientRewrapRequest carries a client-side rewrap of the content key.
type ClientRewrapRequest struct {
	WrappedContentKey string `json:"wrapped_content_key"`
	EncryptionSalt    string `json:"encryption_salt"`
}

// Validate checks if the client rewrap is structurally valid.
func (r *ClientRewrapRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.WrappedContentKey, validation.Required, customValidation.Base64),
		validation.Field(&r.EncryptionSalt, validation.Required, customValidation.Base64),
	)
}

// ToDomain converts the request to a domain client rewrap.
func (r *ClientRewrapRequest) ToDomain() (*accountDomain.ClientRewrap, error) {
	encryptionSalt, err := base64.StdEncoding.DecodeString(r.EncryptionSalt)
	if err != nil {
		return nil, err
	}
	return &accountDomain.ClientRewrap{
		WrappedContentKey: r.WrappedContentKey,
		EncryptionSalt:    encryptionSalt,
	}, nil
}

// ChangePasswordRequest contains the parameters for a password change.
// ClientRewrap is mandatory for zero-knowledge accounts.
type ChangePasswordRequest struct {
	CurrentPassword string               `json:"current_password"`
	NewPassword     string               `json:"new_password"`
	ClientRewrap    *ClientRewrapRequest `json:"client_rewrap,omitempty"`
}

// Validate checks if the change password request is valid.
func (r *ChangePasswordRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, passwordRule),
	)
	if err != nil {
		return err
	}
	if r.ClientRewrap != nil {
		return r.ClientRewrap.Validate()
	}
	return nil
}

// ResetRequestRequest contains the parameters for requesting a reset code.
type ResetRequestRequest struct {
	Username string `json:"username"`
}

// Validate checks if the reset request is valid.
func (r *ResetRequestRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username, validation.Required, customValidation.NotBlank),
	)
}

// ResetRecoveryRequest contains the parameters for a non-destructive reset.
// RecoveryPhrase serves server-side accounts; ClientWraps serves zero-knowledge
// accounts that performed the recovery locally.
type ResetRecoveryRequest struct {
	ResetCode      string              `json:"reset_code"`
	NewPassword    string              `json:"new_password"`
	RecoveryPhrase string              `json:"recovery_phrase,omitempty"`
	ClientWraps    *ClientWrapsRequest `json:"client_wraps,omitempty"`
}

// Validate checks if the recovery reset request is valid.
func (r *ResetRecoveryRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.ResetCode, validation.Required, customValidation.NotBlank),
		validation.Field(&r.NewPassword, validation.Required, passwordRule),
		validation.Field(&r.RecoveryPhrase,
			validation.When(r.ClientWraps == nil, validation.Required, customValidation.RecoveryPhrase),
		),
	)
	if err != nil {
		return err
	}
	if r.ClientWraps != nil {
		return r.ClientWraps.Validate()
	}
	return nil
}

// ResetDestructiveRequest contains the parameters for a destructive reset.
type ResetDestructiveRequest struct {
	ResetCode   string              `json:"reset_code"`
	NewPassword string              `json:"new_password"`
	ClientWraps *ClientWrapsRequest `json:"client_wraps,omitempty"`
}

// Validate checks if the destructive reset request is valid.
func (r *ResetDestructiveRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.ResetCode, validation.Required, customValidation.NotBlank),
		validation.Field(&r.NewPassword, validation.Required, passwordRule),
	)
	if err != nil {
		return err
	}
	if r.ClientWraps != nil {
		return r.ClientWraps.Validate()
	}
	return nil
}
