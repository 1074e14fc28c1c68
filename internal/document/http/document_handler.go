// Package http provides HTTP handlers for document operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accountHTTP "github.com/allisson/docvault/internal/account/http"
	"github.com/allisson/docvault/internal/document/http/dto"
	documentUseCase "github.com/allisson/docvault/internal/document/usecase"
	apperrors "github.com/allisson/docvault/internal/errors"
	"github.com/allisson/docvault/internal/httputil"
	customValidation "github.com/allisson/docvault/internal/validation"
)

// DocumentHandler handles HTTP requests for document operations.
// All routes require an authenticated account in the request context.
type DocumentHandler struct {
	documentUseCase documentUseCase.DocumentUseCase
	logger          *slog.Logger
}

// NewDocumentHandler creates a new document handler with required dependencies.
func NewDocumentHandler(
	useCase documentUseCase.DocumentUseCase,
	logger *slog.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		documentUseCase: useCase,
		logger:          logger,
	}
}

// UploadHandler stores a new document.
// POST /v1/documents - Requires authentication.
// Returns 201 Created with the document metadata.
func (h *DocumentHandler) UploadHandler(c *gin.Context) {
	account, ok := accountHTTP.GetAccount(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.UploadDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToDomain()
	if err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	document, err := h.documentUseCase.Upload(c.Request.Context(), account, input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapDocumentToResponse(document))
}

// DownloadHandler returns a document's contents.
// GET /v1/documents/:id - Requires authentication.
// Returns 200 OK with the data; ciphertext=true means the client decrypts.
func (h *DocumentHandler) DownloadHandler(c *gin.Context) {
	account, ok := accountHTTP.GetAccount(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid document id format: must be a valid UUID"),
			h.logger)
		return
	}

	output, err := h.documentUseCase.Download(c.Request.Context(), account, documentID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDownloadToResponse(output))
}

// ListHandler returns the account's document metadata.
// GET /v1/documents - Requires authentication. Supports offset/limit pagination.
// Returns 200 OK.
func (h *DocumentHandler) ListHandler(c *gin.Context) {
	account, ok := accountHTTP.GetAccount(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	documents, err := h.documentUseCase.List(c.Request.Context(), account.ID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDocumentsToListResponse(documents))
}

// DeleteHandler removes a document.
// DELETE /v1/documents/:id - Requires authentication.
// Returns 204 No Content.
func (h *DocumentHandler) DeleteHandler(c *gin.Context) {
	account, ok := accountHTTP.GetAccount(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid document id format: must be a valid UUID"),
			h.logger)
		return
	}

	if err := h.documentUseCase.Delete(c.Request.Context(), account, documentID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
