// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	otelmetric "go.opentelemetry.io/otel/metric"

	accountHTTP "github.com/allisson/docvault/internal/account/http"
	accountRepository "github.com/allisson/docvault/internal/account/repository"
	accountService "github.com/allisson/docvault/internal/account/service"
	accountUseCase "github.com/allisson/docvault/internal/account/usecase"
	"github.com/allisson/docvault/internal/blob"
	"github.com/allisson/docvault/internal/config"
	cryptoService "github.com/allisson/docvault/internal/crypto/service"
	"github.com/allisson/docvault/internal/database"
	documentHTTP "github.com/allisson/docvault/internal/document/http"
	documentRepository "github.com/allisson/docvault/internal/document/repository"
	documentUseCase "github.com/allisson/docvault/internal/document/usecase"
	"github.com/allisson/docvault/internal/http"
	"github.com/allisson/docvault/internal/keycache"
	"github.com/allisson/docvault/internal/metrics"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	blobStore       blob.Store
	keyCache        *keycache.ExpiringCache
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Managers
	txManager database.TxManager

	// Repositories
	accountRepo   *accountRepository.PostgreSQLAccountRepository
	sessionRepo   *accountRepository.PostgreSQLSessionRepository
	resetCodeRepo *accountRepository.PostgreSQLResetCodeRepository
	documentRepo  *documentRepository.PostgreSQLDocumentRepository

	// Use Cases
	accountUseCase  accountUseCase.AccountUseCase
	documentUseCase documentUseCase.DocumentUseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	blobStoreInit       sync.Once
	keyCacheInit        sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	repositoriesInit    sync.Once
	accountUseCaseInit  sync.Once
	documentUseCaseInit sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// BlobStore returns the document blob store.
func (c *Container) BlobStore() (blob.Store, error) {
	c.blobStoreInit.Do(func() {
		store, err := blob.NewS3Store(context.Background(), blob.S3Config{
			Endpoint:  c.config.BlobEndpoint,
			Region:    c.config.BlobRegion,
			Bucket:    c.config.BlobBucket,
			AccessKey: c.config.BlobAccessKey,
			SecretKey: c.config.BlobSecretKey,
		})
		if err != nil {
			c.initErrors["blobStore"] = fmt.Errorf("failed to create blob store: %w", err)
			return
		}
		c.blobStore = store
	})
	if storedErr, exists := c.initErrors["blobStore"]; exists {
		return nil, storedErr
	}
	return c.blobStore, nil
}

// KeyCache returns the server-side session key cache.
func (c *Container) KeyCache() *keycache.ExpiringCache {
	c.keyCacheInit.Do(func() {
		c.keyCache = keycache.New(c.config.SessionKeyCacheTTL)
	})
	return c.keyCache
}

// MetricsProvider returns the Prometheus metrics provider.
// It returns nil when metrics are disabled in the configuration.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// It falls back to a no-op implementation when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to get metrics provider: %w", err)
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = businessMetrics
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// AccountUseCase returns the account use case instance.
func (c *Container) AccountUseCase() (accountUseCase.AccountUseCase, error) {
	c.accountUseCaseInit.Do(func() {
		useCase, err := c.initAccountUseCase()
		if err != nil {
			c.initErrors["accountUseCase"] = err
			return
		}
		c.accountUseCase = useCase
	})
	if storedErr, exists := c.initErrors["accountUseCase"]; exists {
		return nil, storedErr
	}
	return c.accountUseCase, nil
}

// DocumentUseCase returns the document use case instance.
func (c *Container) DocumentUseCase() (documentUseCase.DocumentUseCase, error) {
	c.documentUseCaseInit.Do(func() {
		useCase, err := c.initDocumentUseCase()
		if err != nil {
			c.initErrors["documentUseCase"] = err
			return
		}
		c.documentUseCase = useCase
	})
	if storedErr, exists := c.initErrors["documentUseCase"]; exists {
		return nil, storedErr
	}
	return c.documentUseCase, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance.
// It returns nil when metrics are disabled in the configuration.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = fmt.Errorf("failed to get metrics provider: %w", err)
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Dropping the key cache zeroes every cached content key.
	if c.keyCache != nil {
		c.keyCache.Close()
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initRepositories creates all repository instances for the configured driver.
func (c *Container) initRepositories() error {
	db, err := c.DB()
	if err != nil {
		return fmt.Errorf("failed to get database for repositories: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		c.accountRepo = accountRepository.NewPostgreSQLAccountRepository(db)
		c.sessionRepo = accountRepository.NewPostgreSQLSessionRepository(db)
		c.resetCodeRepo = accountRepository.NewPostgreSQLResetCodeRepository(db)
		c.documentRepo = documentRepository.NewPostgreSQLDocumentRepository(db)
		return nil
	default:
		return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// repositories initializes the repository set once and reports any failure.
func (c *Container) repositories() error {
	c.repositoriesInit.Do(func() {
		if err := c.initRepositories(); err != nil {
			c.initErrors["repositories"] = err
		}
	})
	if storedErr, exists := c.initErrors["repositories"]; exists {
		return storedErr
	}
	return nil
}

// initAccountUseCase creates the account use case with all its dependencies.
func (c *Container) initAccountUseCase() (accountUseCase.AccountUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for account use case: %w", err)
	}

	if err := c.repositories(); err != nil {
		return nil, fmt.Errorf("failed to get repositories for account use case: %w", err)
	}

	blobStore, err := c.BlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get blob store for account use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for account use case: %w", err)
	}

	useCase := accountUseCase.NewAccountUseCase(
		c.config,
		txManager,
		c.accountRepo,
		c.sessionRepo,
		c.resetCodeRepo,
		c.documentRepo,
		blobStore,
		c.KeyCache(),
		accountService.NewPasswordService(),
		accountService.NewTokenService(),
		cryptoService.NewPBKDF2Deriver(),
		cryptoService.NewAESGCMWrapper(),
		cryptoService.NewWordPhraseGenerator(),
		c.Logger(),
	)

	return accountUseCase.NewAccountUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initDocumentUseCase creates the document use case with all its dependencies.
func (c *Container) initDocumentUseCase() (documentUseCase.DocumentUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for document use case: %w", err)
	}

	if err := c.repositories(); err != nil {
		return nil, fmt.Errorf("failed to get repositories for document use case: %w", err)
	}

	blobStore, err := c.BlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get blob store for document use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for document use case: %w", err)
	}

	useCase := documentUseCase.NewDocumentUseCase(
		txManager,
		c.documentRepo,
		c.accountRepo,
		blobStore,
		c.KeyCache(),
		cryptoService.NewAESGCMWrapper(),
		c.Logger(),
	)

	return documentUseCase.NewDocumentUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	accountUC, err := c.AccountUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get account use case for http server: %w", err)
	}

	documentUC, err := c.DocumentUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get document use case for http server: %w", err)
	}

	var meterProvider otelmetric.MeterProvider
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	if provider != nil {
		meterProvider = provider.MeterProvider()
	}

	server := http.NewServer(
		c.config,
		accountHTTP.NewAccountHandler(accountUC, logger),
		documentHTTP.NewDocumentHandler(documentUC, logger),
		accountHTTP.AuthenticationMiddleware(accountUC, logger),
		meterProvider,
		logger,
	)

	return server, nil
}
