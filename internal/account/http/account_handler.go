package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	"github.com/allisson/docvault/internal/account/http/dto"
	accountUseCase "github.com/allisson/docvault/internal/account/usecase"
	apperrors "github.com/allisson/docvault/internal/errors"
	"github.com/allisson/docvault/internal/httputil"
	customValidation "github.com/allisson/docvault/internal/validation"
)

// AccountHandler handles HTTP requests for account and key lifecycle operations.
type AccountHandler struct {
	accountUseCase accountUseCase.AccountUseCase
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler with required dependencies.
func NewAccountHandler(
	useCase accountUseCase.AccountUseCase,
	logger *slog.Logger,
) *AccountHandler {
	return &AccountHandler{
		accountUseCase: useCase,
		logger:         logger,
	}
}

// RegisterHandler creates a new account.
// POST /v1/accounts - No authentication required.
// Returns 201 Created; the recovery phrase in the response is shown exactly once.
func (h *AccountHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := &accountDomain.RegisterInput{
		Username: req.Username,
		Password: req.Password,
	}
	if req.ClientWraps != nil {
		wraps, err := req.ClientWraps.ToDomain()
		if err != nil {
			httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
			return
		}
		input.ClientWraps = wraps
	}

	output, err := h.accountUseCase.Register(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRegisterToResponse(output))
}

// LoginHandler authenticates an account and issues a session token.
// POST /v1/sessions - No authentication required; rate limited per IP.
// Returns 201 Created with the session token and any one-time key material.
func (h *AccountHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.accountUseCase.Login(c.Request.Context(), &accountDomain.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapLoginToResponse(output))
}

// FinalizeHandler completes the zero-knowledge transition.
// POST /v1/accounts/finalize - Requires authentication.
// Returns 204 No Content on success, 409 when the finalize is stale.
func (h *AccountHandler) FinalizeHandler(c *gin.Context) {
	account, ok := GetAccount(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.FinalizeRequest
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

	if err := h.accountUseCase.FinalizeZeroKnowledge(c.Request.Context(), account.ID, input); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ChangePasswordHandler rotates the password-derived wrap.
// PUT /v1/accounts/password - Requires authentication.
// Returns 200 OK; all other sessions are revoked.
func (h *AccountHandler) ChangePasswordHandler(c *gin.Context) {
	account, ok := GetAccount(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := &accountDomain.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}
	if req.ClientRewrap != nil {
		rewrap, err := req.ClientRewrap.ToDomain()
		if err != nil {
			httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
			return
		}
		input.ClientRewrap = rewrap
	}

	output, err := h.accountUseCase.ChangePassword(c.Request.Context(), account.ID, input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ChangePasswordResponse{RecoveryPhrase: output.RecoveryPhrase})
}

// AcknowledgeRecoveryPhraseHandler records that the user saw the phrase.
// POST /v1/accounts/recovery-phrase/acknowledge - Requires authentication.
// Returns 204 No Content.
func (h *AccountHandler) AcknowledgeRecoveryPhraseHandler(c *gin.Context) {
	account, ok := GetAccount(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.accountUseCase.AcknowledgeRecoveryPhrase(c.Request.Context(), account.ID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// KeyMaterialHandler returns the wrapped key material for a local unwrap.
// GET /v1/accounts/key-material - Requires authentication.
// Returns 200 OK with the wrapped key and salt.
func (h *AccountHandler) KeyMaterialHandler(c *gin.Context) {
	account, ok := GetAccount(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	output, err := h.accountUseCase.GetWrappedKeyMaterial(c.Request.Context(), account.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyMaterialToResponse(output))
}

// ResetRequestHandler issues a single-use reset code.
// POST /v1/accounts/reset-request - No authentication required; rate limited per IP.
// Returns 201 Created with the code; delivery to the user is external.
func (h *AccountHandler) ResetRequestHandler(c *gin.Context) {
	var req dto.ResetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	code, err := h.accountUseCase.RequestReset(c.Request.Context(), req.Username)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ResetRequestResponse{ResetCode: code})
}

// ResetRecoveryHandler performs a non-destructive reset via recovery phrase.
// POST /v1/accounts/reset/recovery - No authentication required (the reset
// code and recovery phrase are the credentials).
// Returns 200 OK; documents are preserved.
func (h *AccountHandler) ResetRecoveryHandler(c *gin.Context) {
	var req dto.ResetRecoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := &accountDomain.ResetWithRecoveryInput{
		ResetCode:      req.ResetCode,
		NewPassword:    req.NewPassword,
		RecoveryPhrase: req.RecoveryPhrase,
	}
	if req.ClientWraps != nil {
		wraps, err := req.ClientWraps.ToDomain()
		if err != nil {
			httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
			return
		}
		input.ClientWraps = wraps
	}

	output, err := h.accountUseCase.ResetWithRecovery(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ResetRecoveryResponse{RecoveryPhrase: output.RecoveryPhrase})
}

// ResetDestructiveHandler wipes all documents and re-keys the account.
// POST /v1/accounts/reset/destructive - No authentication required (the reset
// code is the credential).
// Returns 200 OK with the number of documents permanently deleted.
func (h *AccountHandler) ResetDestructiveHandler(c *gin.Context) {
	var req dto.ResetDestructiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := &accountDomain.ResetDestructiveInput{
		ResetCode:   req.ResetCode,
		NewPassword: req.NewPassword,
	}
	if req.ClientWraps != nil {
		wraps, err := req.ClientWraps.ToDomain()
		if err != nil {
			httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
			return
		}
		input.ClientWraps = wraps
	}

	output, err := h.accountUseCase.ResetDestructive(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ResetDestructiveResponse{
		DocumentsDeleted: output.DocumentsDeleted,
		RecoveryPhrase:   output.RecoveryPhrase,
	})
}
