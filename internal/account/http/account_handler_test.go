package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	"github.com/allisson/docvault/internal/account/http/dto"
	httpMocks "github.com/allisson/docvault/internal/account/http/mocks"
	apperrors "github.com/allisson/docvault/internal/errors"
)

// setupTestHandler creates a test account handler with mocked dependencies.
func setupTestHandler(t *testing.T) (*AccountHandler, *httpMocks.MockAccountUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &httpMocks.MockAccountUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewAccountHandler(mockUseCase, logger)

	return handler, mockUseCase
}

// createTestContext creates a test Gin context with the given request.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

// createAuthenticatedTestContext creates a test context with the account
// already stored in the request context, as the auth middleware would.
func createAuthenticatedTestContext(
	method, path string,
	body interface{},
	account *accountDomain.Account,
) (*gin.Context, *httptest.ResponseRecorder) {
	c, w := createTestContext(method, path, body)
	c.Request = c.Request.WithContext(WithAccount(c.Request.Context(), account))
	return c, w
}

func testClientWraps() *dto.ClientWrapsRequest {
	salt := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x01}, 16))
	blob := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x02}, 64))
	return &dto.ClientWrapsRequest{
		WrappedContentKey:  blob,
		WrappedRecoveryKey: blob,
		EncryptionSalt:     salt,
		RecoverySalt:       salt,
	}
}

func TestAccountHandler_RegisterHandler(t *testing.T) {
	t.Run("Success_ServerSideRegistration", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		accountID := uuid.Must(uuid.NewV7())
		request := dto.RegisterRequest{
			Username: "alice",
			Password: "Str0ngPassword",
		}

		expectedInput := &accountDomain.RegisterInput{
			Username: "alice",
			Password: "Str0ngPassword",
		}

		mockUseCase.On("Register", mock.Anything, expectedInput).
			Return(&accountDomain.RegisterOutput{
				AccountID:      accountID,
				RecoveryPhrase: "alpha bravo charlie delta echo foxtrot",
			}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/accounts", request)

		handler.RegisterHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.RegisterResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, accountID.String(), response.AccountID)
		assert.Equal(t, "alpha bravo charlie delta echo foxtrot", response.RecoveryPhrase)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_ZeroKnowledgeRegistration", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		accountID := uuid.Must(uuid.NewV7())
		request := dto.RegisterRequest{
			Username:    "bob",
			Password:    "Str0ngPassword",
			ClientWraps: testClientWraps(),
		}

		mockUseCase.On("Register", mock.Anything, mock.MatchedBy(func(input *accountDomain.RegisterInput) bool {
			return input.Username == "bob" && input.ClientWraps != nil
		})).
			Return(&accountDomain.RegisterOutput{AccountID: accountID}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/accounts", request)

		handler.RegisterHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.RegisterResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Empty(t, response.RecoveryPhrase)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/accounts", nil)
		c.Request.Body = io.NopCloser(bytes.NewReader([]byte("invalid json")))

		handler.RegisterHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})

	t.Run("Error_WeakPassword", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		request := dto.RegisterRequest{
			Username: "alice",
			Password: "weak",
		}

		c, w := createTestContext(http.MethodPost, "/v1/accounts", request)

		handler.RegisterHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})

	t.Run("Error_UsernameTaken", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.RegisterRequest{
			Username: "alice",
			Password: "Str0ngPassword",
		}

		mockUseCase.On("Register", mock.Anything, mock.Anything).
			Return(nil, accountDomain.ErrUsernameTaken).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/accounts", request)

		handler.RegisterHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "conflict", response["error"])

		mockUseCase.AssertExpectations(t)
	})
}

func TestAccountHandler_LoginHandler(t *testing.T) {
	t.Run("Success_KeyWrappedAccount", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.LoginRequest{
			Username: "alice",
			Password: "Str0ngPassword",
		}

		keyMaterial := bytes.Repeat([]byte{0x07}, 32)

		mockUseCase.On("Login", mock.Anything, &accountDomain.LoginInput{
			Username: "alice",
			Password: "Str0ngPassword",
		}).
			Return(&accountDomain.LoginOutput{
				SessionToken:           "tok_abc",
				MigrationKeyMaterial:   keyMaterial,
				FinalizeToken:          "fin_xyz",
				RequiresClientFinalize: true,
			}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/sessions", request)

		handler.LoginHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.LoginResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "tok_abc", response.SessionToken)
		assert.Equal(t, base64.StdEncoding.EncodeToString(keyMaterial), response.MigrationKeyMaterial)
		assert.Equal(t, "fin_xyz", response.FinalizeToken)
		assert.True(t, response.RequiresClientFinalize)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidCredentials", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.LoginRequest{
			Username: "alice",
			Password: "WrongPassword1",
		}

		mockUseCase.On("Login", mock.Anything, mock.Anything).
			Return(nil, accountDomain.ErrInvalidCredentials).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/sessions", request)

		handler.LoginHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "authentication_failure", response["error"])

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MissingPassword", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		request := dto.LoginRequest{Username: "alice"}

		c, w := createTestContext(http.MethodPost, "/v1/sessions", request)

		handler.LoginHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})
}

func TestAccountHandler_FinalizeHandler(t *testing.T) {
	account := &accountDomain.Account{ID: uuid.Must(uuid.NewV7())}

	validRequest := func() dto.FinalizeRequest {
		wraps := testClientWraps()
		return dto.FinalizeRequest{
			FinalizeToken:      "fin_xyz",
			WrappedContentKey:  wraps.WrappedContentKey,
			WrappedRecoveryKey: wraps.WrappedRecoveryKey,
			EncryptionSalt:     wraps.EncryptionSalt,
			RecoverySalt:       wraps.RecoverySalt,
		}
	}

	t.Run("Success_ValidFinalize", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("FinalizeZeroKnowledge", mock.Anything, account.ID, mock.Anything).
			Return(nil).
			Once()

		c, w := createAuthenticatedTestContext(http.MethodPost, "/v1/accounts/finalize", validRequest(), account)

		handler.FinalizeHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_StaleFinalize", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("FinalizeZeroKnowledge", mock.Anything, account.ID, mock.Anything).
			Return(apperrors.ErrStaleFinalize).
			Once()

		c, w := createAuthenticatedTestContext(http.MethodPost, "/v1/accounts/finalize", validRequest(), account)

		handler.FinalizeHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "stale_finalize", response["error"])
	})

	t.Run("Error_NoAccountInContext", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/accounts/finalize", validRequest())

		handler.FinalizeHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_MissingToken", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		request := validRequest()
		request.FinalizeToken = ""

		c, w := createAuthenticatedTestContext(http.MethodPost, "/v1/accounts/finalize", request, account)

		handler.FinalizeHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestAccountHandler_ChangePasswordHandler(t *testing.T) {
	account := &accountDomain.Account{ID: uuid.Must(uuid.NewV7())}

	t.Run("Success_PasswordChanged", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.ChangePasswordRequest{
			CurrentPassword: "Str0ngPassword",
			NewPassword:     "N3wStrongPassword",
		}

		mockUseCase.On("ChangePassword", mock.Anything, account.ID, mock.MatchedBy(
			func(input *accountDomain.ChangePasswordInput) bool {
				return input.CurrentPassword == "Str0ngPassword" &&
					input.NewPassword == "N3wStrongPassword" &&
					input.ClientRewrap == nil
			})).
			Return(&accountDomain.ChangePasswordOutput{}, nil).
			Once()

		c, w := createAuthenticatedTestContext(http.MethodPut, "/v1/accounts/password", request, account)

		handler.ChangePasswordHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_ZeroKnowledgeRewrap", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		wraps := testClientWraps()
		request := dto.ChangePasswordRequest{
			CurrentPassword: "Str0ngPassword",
			NewPassword:     "N3wStrongPassword",
			ClientRewrap: &dto.ClientRewrapRequest{
				WrappedContentKey: wraps.WrappedContentKey,
				EncryptionSalt:    wraps.EncryptionSalt,
			},
		}

		mockUseCase.On("ChangePassword", mock.Anything, account.ID, mock.MatchedBy(
			func(input *accountDomain.ChangePasswordInput) bool {
				return input.ClientRewrap != nil
			})).
			Return(&accountDomain.ChangePasswordOutput{}, nil).
			Once()

		c, w := createAuthenticatedTestContext(http.MethodPut, "/v1/accounts/password", request, account)

		handler.ChangePasswordHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_RewrapRequired", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.ChangePasswordRequest{
			CurrentPassword: "Str0ngPassword",
			NewPassword:     "N3wStrongPassword",
		}

		mockUseCase.On("ChangePassword", mock.Anything, account.ID, mock.Anything).
			Return(nil, accountDomain.ErrClientRewrapRequired).
			Once()

		c, w := createAuthenticatedTestContext(http.MethodPut, "/v1/accounts/password", request, account)

		handler.ChangePasswordHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "invalid_input", response["error"])
	})

	t.Run("Error_WeakNewPassword", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		request := dto.ChangePasswordRequest{
			CurrentPassword: "Str0ngPassword",
			NewPassword:     "weak",
		}

		c, w := createAuthenticatedTestContext(http.MethodPut, "/v1/accounts/password", request, account)

		handler.ChangePasswordHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestAccountHandler_KeyMaterialHandler(t *testing.T) {
	account := &accountDomain.Account{ID: uuid.Must(uuid.NewV7())}

	t.Run("Success_ReturnsWrappedKey", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		salt := bytes.Repeat([]byte{0x03}, 16)

		mockUseCase.On("GetWrappedKeyMaterial", mock.Anything, account.ID).
			Return(&accountDomain.KeyMaterialOutput{
				WrappedKey: "d3JhcHBlZA==",
				Salt:       salt,
			}, nil).
			Once()

		c, w := createAuthenticatedTestContext(http.MethodGet, "/v1/accounts/key-material", nil, account)

		handler.KeyMaterialHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.KeyMaterialResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "d3JhcHBlZA==", response.WrappedKey)
		assert.Equal(t, base64.StdEncoding.EncodeToString(salt), response.Salt)
	})

	t.Run("Error_NoMaterial", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("GetWrappedKeyMaterial", mock.Anything, account.ID).
			Return(nil, accountDomain.ErrAccountNotFound).
			Once()

		c, w := createAuthenticatedTestContext(http.MethodGet, "/v1/accounts/key-material", nil, account)

		handler.KeyMaterialHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAccountHandler_AcknowledgeRecoveryPhraseHandler(t *testing.T) {
	account := &accountDomain.Account{ID: uuid.Must(uuid.NewV7())}

	t.Run("Success_Acknowledged", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("AcknowledgeRecoveryPhrase", mock.Anything, account.ID).
			Return(nil).
			Once()

		c, w := createAuthenticatedTestContext(
			http.MethodPost, "/v1/accounts/recovery-phrase/acknowledge", nil, account)

		handler.AcknowledgeRecoveryPhraseHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)

		mockUseCase.AssertExpectations(t)
	})
}

func TestAccountHandler_ResetRequestHandler(t *testing.T) {
	t.Run("Success_CodeIssued", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.ResetRequestRequest{Username: "alice"}

		mockUseCase.On("RequestReset", mock.Anything, "alice").
			Return("reset_code_123", nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/accounts/reset-request", request)

		handler.ResetRequestHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.ResetRequestResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "reset_code_123", response.ResetCode)
	})

	t.Run("Error_UnknownUsername", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.ResetRequestRequest{Username: "ghost"}

		mockUseCase.On("RequestReset", mock.Anything, "ghost").
			Return("", accountDomain.ErrInvalidCredentials).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/accounts/reset-request", request)

		handler.ResetRequestHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAccountHandler_ResetRecoveryHandler(t *testing.T) {
	t.Run("Success_RecoveryReset", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.ResetRecoveryRequest{
			ResetCode:      "reset_code_123",
			NewPassword:    "N3wStrongPassword",
			RecoveryPhrase: "alpha bravo charlie delta echo foxtrot",
		}

		mockUseCase.On("ResetWithRecovery", mock.Anything, mock.MatchedBy(
			func(input *accountDomain.ResetWithRecoveryInput) bool {
				return input.ResetCode == "reset_code_123" && input.ClientWraps == nil
			})).
			Return(&accountDomain.ResetWithRecoveryOutput{
				RecoveryPhrase: "golf hotel india juliet kilo lima",
			}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/accounts/reset/recovery", request)

		handler.ResetRecoveryHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ResetRecoveryResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "golf hotel india juliet kilo lima", response.RecoveryPhrase)
	})

	t.Run("Error_MissingPhraseWithoutClientWraps", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		request := dto.ResetRecoveryRequest{
			ResetCode:   "reset_code_123",
			NewPassword: "N3wStrongPassword",
		}

		c, w := createTestContext(http.MethodPost, "/v1/accounts/reset/recovery", request)

		handler.ResetRecoveryHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Success_ZeroKnowledgeClientWraps", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.ResetRecoveryRequest{
			ResetCode:   "reset_code_123",
			NewPassword: "N3wStrongPassword",
			ClientWraps: testClientWraps(),
		}

		mockUseCase.On("ResetWithRecovery", mock.Anything, mock.MatchedBy(
			func(input *accountDomain.ResetWithRecoveryInput) bool {
				return input.ClientWraps != nil
			})).
			Return(&accountDomain.ResetWithRecoveryOutput{}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/accounts/reset/recovery", request)

		handler.ResetRecoveryHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_RecoveryExhausted", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.ResetRecoveryRequest{
			ResetCode:      "reset_code_123",
			NewPassword:    "N3wStrongPassword",
			RecoveryPhrase: "alpha bravo charlie delta echo foxtrot",
		}

		mockUseCase.On("ResetWithRecovery", mock.Anything, mock.Anything).
			Return(nil, accountDomain.ErrRecoveryNotConfigured).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/accounts/reset/recovery", request)

		handler.ResetRecoveryHandler(c)

		assert.Equal(t, http.StatusGone, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "recovery_exhausted", response["error"])
	})
}

func TestAccountHandler_ResetDestructiveHandler(t *testing.T) {
	t.Run("Success_DocumentsWiped", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.ResetDestructiveRequest{
			ResetCode:   "reset_code_123",
			NewPassword: "N3wStrongPassword",
		}

		mockUseCase.On("ResetDestructive", mock.Anything, mock.Anything).
			Return(&accountDomain.ResetDestructiveOutput{
				DocumentsDeleted: 3,
				RecoveryPhrase:   "alpha bravo charlie delta echo foxtrot",
			}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/accounts/reset/destructive", request)

		handler.ResetDestructiveHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ResetDestructiveResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, 3, response.DocumentsDeleted)
		assert.NotEmpty(t, response.RecoveryPhrase)
	})

	t.Run("Error_InvalidCode", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.ResetDestructiveRequest{
			ResetCode:   "bad_code",
			NewPassword: "N3wStrongPassword",
		}

		mockUseCase.On("ResetDestructive", mock.Anything, mock.Anything).
			Return(nil, accountDomain.ErrInvalidCredentials).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/accounts/reset/destructive", request)

		handler.ResetDestructiveHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
