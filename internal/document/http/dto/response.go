package dto

import (
	"encoding/base64"
	"time"

	documentDomain "github.com/allisson/docvault/internal/document/domain"
)

// DocumentResponse represents document metadata in API responses.
type DocumentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MapDocumentToResponse converts a domain document to an API response.
func MapDocumentToResponse(document *documentDomain.Document) DocumentResponse {
	return DocumentResponse{
		ID:        document.ID.String(),
		Name:      document.Name,
		Size:      document.Size,
		CreatedAt: document.CreatedAt,
		UpdatedAt: document.UpdatedAt,
	}
}

// ListDocumentsResponse represents a paginated list of documents in API responses.
type ListDocumentsResponse struct {
	Data []DocumentResponse `json:"data"`
}

// MapDocumentsToListResponse converts a slice of domain documents to a list API response.
func MapDocumentsToListResponse(documents []*documentDomain.Document) ListDocumentsResponse {
	responses := make([]DocumentResponse, 0, len(documents))
	for _, document := range documents {
		responses = append(responses, MapDocumentToResponse(document))
	}
	return ListDocumentsResponse{Data: responses}
}

// DownloadDocumentResponse contains a downloaded document. Data is standard
// base64; ciphertext reports whether the client still has to decrypt it.
type DownloadDocumentResponse struct {
	Name       string `json:"name"`
	Data       string `json:"data"`
	Ciphertext bool   `json:"ciphertext"`
}

// MapDownloadToResponse converts a domain download output to an API response.
func MapDownloadToResponse(output *documentDomain.DownloadOutput) DownloadDocumentResponse {
	return DownloadDocumentResponse{
		Name:       output.Name,
		Data:       base64.StdEncoding.EncodeToString(output.Data),
		Ciphertext: output.Ciphertext,
	}
}
