package http

import (
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
	httpMocks "github.com/allisson/docvault/internal/account/http/mocks"
)

// setupMiddlewareRouter builds a router with the auth middleware and a probe
// route that reports whether the account landed in the request context.
func setupMiddlewareRouter(t *testing.T) (*gin.Engine, *httpMocks.MockAccountUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &httpMocks.MockAccountUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(AuthenticationMiddleware(mockUseCase, logger))
	router.GET("/protected", func(c *gin.Context) {
		account, ok := GetAccount(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"account_id": account.ID.String()})
	})

	return router, mockUseCase
}

func TestAuthenticationMiddleware(t *testing.T) {
	t.Run("Success_ValidBearerToken", func(t *testing.T) {
		router, mockUseCase := setupMiddlewareRouter(t)

		account := &accountDomain.Account{ID: uuid.Must(uuid.NewV7())}

		mockUseCase.On("Authenticate", mock.Anything, "tok_abc").
			Return(account, nil).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer tok_abc")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), account.ID.String())

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_CaseInsensitiveScheme", func(t *testing.T) {
		router, mockUseCase := setupMiddlewareRouter(t)

		account := &accountDomain.Account{ID: uuid.Must(uuid.NewV7())}

		mockUseCase.On("Authenticate", mock.Anything, "tok_abc").
			Return(account, nil).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "bearer tok_abc")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_MissingHeader", func(t *testing.T) {
		router, _ := setupMiddlewareRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_MalformedHeader", func(t *testing.T) {
		router, _ := setupMiddlewareRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_EmptyToken", func(t *testing.T) {
		router, _ := setupMiddlewareRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer ")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_InvalidToken", func(t *testing.T) {
		router, mockUseCase := setupMiddlewareRouter(t)

		mockUseCase.On("Authenticate", mock.Anything, "tok_expired").
			Return(nil, accountDomain.ErrInvalidCredentials).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer tok_expired")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		mockUseCase.AssertExpectations(t)
	})
}
