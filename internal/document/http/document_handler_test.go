package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	accountHTTP "github.com/allisson/docvault/internal/account/http"
	documentDomain "github.com/allisson/docvault/internal/document/domain"
	"github.com/allisson/docvault/internal/document/http/dto"
)

// MockDocumentUseCase is a mock implementation of DocumentUseCase for testing.
type MockDocumentUseCase struct {
	mock.Mock
}

func (m *MockDocumentUseCase) Upload(
	ctx context.Context,
	account *accountDomain.Account,
	input *documentDomain.UploadInput,
) (*documentDomain.Document, error) {
	args := m.Called(ctx, account, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentDomain.Document), args.Error(1)
}

func (m *MockDocumentUseCase) Download(
	ctx context.Context,
	account *accountDomain.Account,
	documentID uuid.UUID,
) (*documentDomain.DownloadOutput, error) {
	args := m.Called(ctx, account, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentDomain.DownloadOutput), args.Error(1)
}

func (m *MockDocumentUseCase) List(
	ctx context.Context,
	accountID uuid.UUID,
	offset, limit int,
) ([]*documentDomain.Document, error) {
	args := m.Called(ctx, accountID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*documentDomain.Document), args.Error(1)
}

func (m *MockDocumentUseCase) Delete(
	ctx context.Context,
	account *accountDomain.Account,
	documentID uuid.UUID,
) error {
	args := m.Called(ctx, account, documentID)
	return args.Error(0)
}

// setupTestHandler creates a test document handler with mocked dependencies.
func setupTestHandler(t *testing.T) (*DocumentHandler, *MockDocumentUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &MockDocumentUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewDocumentHandler(mockUseCase, logger)

	return handler, mockUseCase
}

// createTestContext creates a test Gin context with the account in the request
// context, as the auth middleware would leave it.
func createTestContext(
	method, path string,
	body interface{},
	account *accountDomain.Account,
) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if account != nil {
		req = req.WithContext(accountHTTP.WithAccount(req.Context(), account))
	}
	c.Request = req

	return c, w
}

func TestDocumentHandler_UploadHandler(t *testing.T) {
	account := &accountDomain.Account{ID: uuid.Must(uuid.NewV7())}

	t.Run("Success_ValidUpload", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		data := []byte("tax return 2025")
		request := dto.UploadDocumentRequest{
			Name: "taxes.pdf",
			Data: base64.StdEncoding.EncodeToString(data),
		}

		documentID := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		mockUseCase.On("Upload", mock.Anything, account, mock.MatchedBy(
			func(input *documentDomain.UploadInput) bool {
				return input.Name == "taxes.pdf" && bytes.Equal(input.Data, data)
			})).
			Return(&documentDomain.Document{
				ID:        documentID,
				AccountID: account.ID,
				Name:      "taxes.pdf",
				Size:      int64(len(data)),
				CreatedAt: now,
				UpdatedAt: now,
			}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/documents", request, account)

		handler.UploadHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.DocumentResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, documentID.String(), response.ID)
		assert.Equal(t, "taxes.pdf", response.Name)
		assert.Equal(t, int64(len(data)), response.Size)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidBase64Data", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		request := dto.UploadDocumentRequest{
			Name: "taxes.pdf",
			Data: "not valid base64!!!",
		}

		c, w := createTestContext(http.MethodPost, "/v1/documents", request, account)

		handler.UploadHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})

	t.Run("Error_NoAccountInContext", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		request := dto.UploadDocumentRequest{
			Name: "taxes.pdf",
			Data: base64.StdEncoding.EncodeToString([]byte("data")),
		}

		c, w := createTestContext(http.MethodPost, "/v1/documents", request, nil)

		handler.UploadHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_SessionKeyUnavailable", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.UploadDocumentRequest{
			Name: "taxes.pdf",
			Data: base64.StdEncoding.EncodeToString([]byte("data")),
		}

		mockUseCase.On("Upload", mock.Anything, account, mock.Anything).
			Return(nil, documentDomain.ErrSessionKeyUnavailable).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/documents", request, account)

		handler.UploadHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "authentication_failure", response["error"])
	})
}

func TestDocumentHandler_DownloadHandler(t *testing.T) {
	account := &accountDomain.Account{ID: uuid.Must(uuid.NewV7())}

	t.Run("Success_ServerDecrypted", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		documentID := uuid.Must(uuid.NewV7())
		data := []byte("plaintext contents")

		mockUseCase.On("Download", mock.Anything, account, documentID).
			Return(&documentDomain.DownloadOutput{
				Name:       "taxes.pdf",
				Data:       data,
				Ciphertext: false,
			}, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/documents/"+documentID.String(), nil, account)
		c.Params = gin.Params{{Key: "id", Value: documentID.String()}}

		handler.DownloadHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.DownloadDocumentResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "taxes.pdf", response.Name)
		assert.Equal(t, base64.StdEncoding.EncodeToString(data), response.Data)
		assert.False(t, response.Ciphertext)
	})

	t.Run("Success_ZeroKnowledgeCiphertext", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		documentID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Download", mock.Anything, account, documentID).
			Return(&documentDomain.DownloadOutput{
				Name:       "secret.bin",
				Data:       []byte("opaque blob"),
				Ciphertext: true,
			}, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/documents/"+documentID.String(), nil, account)
		c.Params = gin.Params{{Key: "id", Value: documentID.String()}}

		handler.DownloadHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.DownloadDocumentResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.True(t, response.Ciphertext)
	})

	t.Run("Error_InvalidUUID", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/documents/invalid-uuid", nil, account)
		c.Params = gin.Params{{Key: "id", Value: "invalid-uuid"}}

		handler.DownloadHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_DocumentNotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		documentID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Download", mock.Anything, account, documentID).
			Return(nil, documentDomain.ErrDocumentNotFound).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/documents/"+documentID.String(), nil, account)
		c.Params = gin.Params{{Key: "id", Value: documentID.String()}}

		handler.DownloadHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDocumentHandler_ListHandler(t *testing.T) {
	account := &accountDomain.Account{ID: uuid.Must(uuid.NewV7())}

	t.Run("Success_DefaultPagination", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		documents := []*documentDomain.Document{
			{ID: uuid.Must(uuid.NewV7()), AccountID: account.ID, Name: "a.pdf"},
			{ID: uuid.Must(uuid.NewV7()), AccountID: account.ID, Name: "b.pdf"},
		}

		mockUseCase.On("List", mock.Anything, account.ID, 0, 50).
			Return(documents, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/documents", nil, account)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListDocumentsResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Len(t, response.Data, 2)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidLimit", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/documents?limit=1000", nil, account)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDocumentHandler_DeleteHandler(t *testing.T) {
	account := &accountDomain.Account{ID: uuid.Must(uuid.NewV7())}

	t.Run("Success_Deleted", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		documentID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Delete", mock.Anything, account, documentID).
			Return(nil).
			Once()

		c, w := createTestContext(http.MethodDelete, "/v1/documents/"+documentID.String(), nil, account)
		c.Params = gin.Params{{Key: "id", Value: documentID.String()}}

		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_DocumentNotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		documentID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Delete", mock.Anything, account, documentID).
			Return(documentDomain.ErrDocumentNotFound).
			Once()

		c, w := createTestContext(http.MethodDelete, "/v1/documents/"+documentID.String(), nil, account)
		c.Params = gin.Params{{Key: "id", Value: documentID.String()}}

		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
