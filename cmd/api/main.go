// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/anvikram/stocktrack-be/internal/adapters/db"
	"github.com/anvikram/stocktrack-be/internal/adapters/photostore"
	redis_a "github.com/anvikram/stocktrack-be/internal/adapters/redis_adapter"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
	"github.com/anvikram/stocktrack-be/internal/core/services"
	"github.com/anvikram/stocktrack-be/internal/handlers"
	"github.com/anvikram/stocktrack-be/internal/handlers/middleware"
	"github.com/anvikram/stocktrack-be/internal/pkg/config"
	"github.com/anvikram/stocktrack-be/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	appLogger := logger.SetupLogger("debug", "json")
	slogger := appLogger.Logger

	slogger.Info("starting stock tracking system",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	appLogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger = appLogger.Logger
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	if cfg.App.Environment != "production" {
		if err := runMigrations(ctx, cfg, slogger); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			// Don't exit in development, just warn
		}
	}

	server := setupHTTPServer(cfg, deps, appLogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
			slog.Bool("tls", cfg.Server.TLSEnabled),
		)

		if cfg.Server.TLSEnabled {
			serverErrors <- server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	redisCache     ports.CacheRepository
	cacheManager   *redis_a.CacheManager
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector

	movementHandler    *handlers.MovementHandler
	productHandler     *handlers.ProductHandler
	customerHandler    *handlers.CustomerHandler
	locationHandler    *handlers.LocationHandler
	salesHandler       *handlers.SalesHandler
	statsHandler       *handlers.StatsHandler
	exportHandler      *handlers.ExportHandler
	photoHandler       *handlers.PhotoHandler
	maintenanceHandler *handlers.MaintenanceHandler
	healthHandler      *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	logger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		ConnMaxLifetime: cfg.Redis.MaxConnAge,
		PoolTimeout:     cfg.Redis.PoolTimeout,
		ConnMaxIdleTime: cfg.Redis.IdleTimeout,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient

	deps.redisCache = redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)
	deps.cacheManager = redis_a.NewCacheManager(deps.redisCache, logger)

	logger.Info("initializing Asynq client")

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	// Photo asset store
	store, err := photostore.NewStore(cfg.Assets.Root, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize photo store: %w", err)
	}

	// Repositories
	ledgerRepo := db.NewLedgerRepository(database, logger)
	productRepo := db.NewProductRepository(database, logger)
	customerRepo := db.NewCustomerRepository(database, logger)
	locationRepo := db.NewLocationRepository(database, logger)
	statsRepo := db.NewStatsRepository(database, logger)

	tracker := photostore.NewTracker(store, ledgerRepo, productRepo, customerRepo, locationRepo, logger)

	// Services
	ledgerService := services.NewLedgerService(ledgerRepo, store, tracker, logger)
	salesService := services.NewSalesService(ledgerRepo, logger)
	reconcileService := services.NewReconcileService(ledgerRepo, store, tracker, logger)

	// Handlers
	deps.movementHandler = handlers.NewMovementHandler(ledgerService, deps.cacheManager, logger)
	deps.productHandler = handlers.NewProductHandler(productRepo, store, tracker, logger)
	deps.customerHandler = handlers.NewCustomerHandler(customerRepo, store, tracker, logger)
	deps.locationHandler = handlers.NewLocationHandler(locationRepo, store, tracker, logger)
	deps.salesHandler = handlers.NewSalesHandler(salesService, reconcileService, deps.cacheManager, logger)
	deps.statsHandler = handlers.NewStatsHandler(statsRepo, deps.redisCache, logger)
	deps.exportHandler = handlers.NewExportHandler(ledgerRepo, deps.redisCache, logger)
	deps.photoHandler = handlers.NewPhotoHandler(cfg.Assets.Root, logger)
	deps.maintenanceHandler = handlers.NewMaintenanceHandler(deps.asynqClient, logger)
	deps.healthHandler = handlers.NewHealthHandler(database, redisClient, deps.asynqInspector, cfg, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, appLogger *logger.Logger) *http.Server {
	mux := http.NewServeMux()

	// Apply middleware in reverse order (innermost first)
	var handler http.Handler = mux

	if cfg.App.Environment != "test" {
		handler = middleware.RequestID(handler)
		handler = middleware.Logger(appLogger)(handler)
		handler = middleware.Recovery(appLogger.Logger)(handler)
	}

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	registerRoutes(mux, deps, cfg)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(appLogger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	apiV1 := "/api/v1"

	if cfg.Server.EnableHealthCheck {
		mux.HandleFunc("GET /health", deps.healthHandler.Health)
		mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)
	}

	// Transactions (ledger movements)
	mux.HandleFunc("POST "+apiV1+"/transactions", deps.movementHandler.CreateMovement)
	mux.HandleFunc("GET "+apiV1+"/transactions", deps.movementHandler.ListMovements)
	mux.HandleFunc("GET "+apiV1+"/transactions/{id}", deps.movementHandler.GetMovement)
	mux.HandleFunc("PUT "+apiV1+"/transactions/{id}", deps.movementHandler.UpdateMovement)
	mux.HandleFunc("DELETE "+apiV1+"/transactions/{id}", deps.movementHandler.DeleteMovement)

	// Product catalog
	mux.HandleFunc("POST "+apiV1+"/products", deps.productHandler.CreateProduct)
	mux.HandleFunc("GET "+apiV1+"/products", deps.productHandler.ListProducts)
	mux.HandleFunc("GET "+apiV1+"/products/search/{query}", deps.productHandler.SearchProducts)
	mux.HandleFunc("GET "+apiV1+"/products/{barcode}", deps.productHandler.GetProduct)
	mux.HandleFunc("PUT "+apiV1+"/products/{barcode}", deps.productHandler.UpdateProduct)
	mux.HandleFunc("DELETE "+apiV1+"/products/{barcode}", deps.productHandler.DeleteProduct)

	// Customers (recipients)
	mux.HandleFunc("POST "+apiV1+"/customers", deps.customerHandler.CreateCustomer)
	mux.HandleFunc("GET "+apiV1+"/customers", deps.customerHandler.ListCustomers)
	mux.HandleFunc("GET "+apiV1+"/customers/{id}", deps.customerHandler.GetCustomer)
	mux.HandleFunc("PUT "+apiV1+"/customers/{id}", deps.customerHandler.UpdateCustomer)
	mux.HandleFunc("DELETE "+apiV1+"/customers/{id}", deps.customerHandler.DeleteCustomer)

	// Storage locations and their find-photos
	mux.HandleFunc("POST "+apiV1+"/locations", deps.locationHandler.CreateLocation)
	mux.HandleFunc("GET "+apiV1+"/locations", deps.locationHandler.ListLocations)
	mux.HandleFunc("GET "+apiV1+"/locations/{id}", deps.locationHandler.GetLocation)
	mux.HandleFunc("PUT "+apiV1+"/locations/{id}", deps.locationHandler.UpdateLocation)
	mux.HandleFunc("DELETE "+apiV1+"/locations/{id}", deps.locationHandler.DeleteLocation)
	mux.HandleFunc("POST "+apiV1+"/locations/{id}/photos", deps.locationHandler.AddFindPhoto)
	mux.HandleFunc("DELETE "+apiV1+"/locations/{id}/photos/{photoId}", deps.locationHandler.DeleteFindPhoto)

	// Sales view and bulk reconciliation
	mux.HandleFunc("GET "+apiV1+"/sales", deps.salesHandler.ListSales)
	mux.HandleFunc("PUT "+apiV1+"/sales/bulk", deps.salesHandler.BulkReconcile)

	// Stats and exports
	mux.HandleFunc("GET "+apiV1+"/stats", deps.statsHandler.GetStats)
	mux.HandleFunc("GET "+apiV1+"/export/excel", deps.exportHandler.ExportExcel)
	mux.HandleFunc("GET "+apiV1+"/export/json", deps.exportHandler.ExportJSON)

	// Maintenance triggers
	mux.HandleFunc("POST "+apiV1+"/maintenance/photo-sweep", deps.maintenanceHandler.TriggerPhotoSweep)
	mux.HandleFunc("POST "+apiV1+"/maintenance/ledger-audit", deps.maintenanceHandler.TriggerLedgerAudit)

	// Stored photo assets
	mux.HandleFunc("GET /uploads/{path...}", deps.photoHandler.ServePhoto)

	// pprof endpoints (development only)
	if cfg.Server.EnablePprof && cfg.IsDevelopment() {
		mux.HandleFunc("GET /debug/pprof/", http.HandlerFunc(http.DefaultServeMux.ServeHTTP))
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, logger, 3)
}
