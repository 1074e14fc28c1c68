// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"

	documentDomain "github.com/allisson/docvault/internal/document/domain"
	customValidation "github.com/allisson/docvault/internal/validation"
)

// UploadDocumentRequest contains the parameters for uploading a document.
// Data is standard base64: plaintext bytes for legacy and key-wrapped
// accounts, a client-encrypted blob for zero-knowledge accounts.
type UploadDocumentRequest struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Validate checks if the upload request is valid.
func (r *UploadDocumentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Data,
			validation.Required,
			customValidation.Base64,
		),
	)
}

// ToDomain converts the request to a domain upload input.
func (r *UploadDocumentRequest) ToDomain() (*documentDomain.UploadInput, error) {
	data, err := base64.StdEncoding.DecodeString(r.Data)
	if err != nil {
		return nil, err
	}
	return &documentDomain.UploadInput{
		Name: r.Name,
		Data: data,
	}, nil
}
