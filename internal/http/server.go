package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	otelmetric "go.opentelemetry.io/otel/metric"

	accountHTTP "github.com/allisson/docvault/internal/account/http"
	"github.com/allisson/docvault/internal/config"
	documentHTTP "github.com/allisson/docvault/internal/document/http"
	"github.com/allisson/docvault/internal/metrics"
)

// Server represents the HTTP API server.
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server with all routes registered.
// meterProvider may be nil, in which case HTTP metrics are not recorded.
func NewServer(
	cfg *config.Config,
	accountHandler *accountHTTP.AccountHandler,
	documentHandler *documentHTTP.DocumentHandler,
	authMiddleware gin.HandlerFunc,
	meterProvider otelmetric.MeterProvider,
	logger *slog.Logger,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", healthHandler)
	router.GET("/ready", readinessHandler)

	// Credential endpoints accept a password or reset code and get per-IP
	// rate limiting to slow down online guessing.
	credentialLimiter := func(c *gin.Context) { c.Next() }
	if cfg.RateLimitEnabled {
		credentialLimiter = accountHTTP.IPRateLimitMiddleware(
			cfg.RateLimitRequestsPerSec,
			cfg.RateLimitBurst,
			logger,
		)
	}

	v1 := router.Group("/v1")
	{
		v1.POST("/accounts", accountHandler.RegisterHandler)
		v1.POST("/sessions", credentialLimiter, accountHandler.LoginHandler)
		v1.POST("/accounts/reset-request", credentialLimiter, accountHandler.ResetRequestHandler)
		v1.POST("/accounts/reset/recovery", credentialLimiter, accountHandler.ResetRecoveryHandler)
		v1.POST("/accounts/reset/destructive", credentialLimiter, accountHandler.ResetDestructiveHandler)

		authenticated := v1.Group("")
		authenticated.Use(authMiddleware)
		{
			authenticated.POST("/accounts/finalize", accountHandler.FinalizeHandler)
			authenticated.PUT("/accounts/password", accountHandler.ChangePasswordHandler)
			authenticated.POST("/accounts/recovery-phrase/acknowledge", accountHandler.AcknowledgeRecoveryPhraseHandler)
			authenticated.GET("/accounts/key-material", accountHandler.KeyMaterialHandler)

			authenticated.POST("/documents", documentHandler.UploadHandler)
			authenticated.GET("/documents", documentHandler.ListHandler)
			authenticated.GET("/documents/:id", documentHandler.DownloadHandler)
			authenticated.DELETE("/documents/:id", documentHandler.DeleteHandler)
		}
	}

	return &Server{
		router: router,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
