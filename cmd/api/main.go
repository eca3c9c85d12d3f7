package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-inventory/internal/auth"
	"shop-inventory/internal/codegen"
	"shop-inventory/internal/config"
	"shop-inventory/internal/database"
	"shop-inventory/internal/handler"
	"shop-inventory/internal/idgen"
	"shop-inventory/internal/media"
	"shop-inventory/internal/repository"
	"shop-inventory/internal/router"
	"shop-inventory/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().
		Str("store", cfg.Store.Driver).
		Str("media", cfg.Media.Backend).
		Bool("cache", cfg.Redis.Enabled()).
		Msg("starting shop-inventory API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize product repository for the configured backend
	productRepo, closeStore, err := newProductRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Redis.Enabled() {
		redisClient, err := database.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize redis cache: %w", err)
		}
		defer redisClient.Close()

		productRepo = repository.NewCachedProductRepository(productRepo, redisClient, cfg.Redis.Expiration(), logger)
	}

	// Initialize media store
	store, err := newMediaStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize media store: %w", err)
	}

	authenticator, err := auth.NewAuthenticator(cfg.Auth, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize authenticator: %w", err)
	}

	// Initialize services
	productService := service.NewProductService(
		productRepo,
		store,
		codegen.NewGenerator(store, logger),
		idgen.Generator{},
		service.ProductConfig{
			UploadFolder: cfg.Media.UploadDir,
			CodesFolder:  cfg.Media.CodesDir,
		},
		logger,
	)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, cfg.Server.PublicBaseURL, logger)
	authHandler := handler.NewAuthHandler(authenticator, logger)
	mediaHandler := handler.NewMediaHandler(store, logger)

	// Initialize router
	mux := router.New(productHandler, authHandler, mediaHandler, router.Options{
		MediaFolders: []string{cfg.Media.UploadDir, cfg.Media.CodesDir},
		Verifier:     authenticator,
		AuthRequired: cfg.Auth.Required,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("public_base_url", cfg.Server.PublicBaseURL).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newProductRepository connects to the configured document store, prepares
// its indexes or schema and returns the repository with a close function.
func newProductRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.ProductRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := repository.EnsurePostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to prepare database schema: %w", err)
		}
		return repository.NewPostgresProductRepository(pool, logger), pool.Close, nil

	default:
		client, err := database.NewMongoClient(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize mongodb: %w", err)
		}
		disconnect := func() {
			dctx, dcancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer dcancel()
			if err := client.Disconnect(dctx); err != nil {
				logger.Error().Err(err).Msg("failed to disconnect from mongodb")
			}
		}

		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		if err := repository.EnsureMongoIndexes(ctx, coll); err != nil {
			disconnect()
			return nil, nil, fmt.Errorf("failed to create mongodb indexes: %w", err)
		}
		return repository.NewMongoProductRepository(coll, logger), disconnect, nil
	}
}

func newMediaStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (media.Store, error) {
	if cfg.Media.Backend == config.MediaS3 {
		return media.NewS3Store(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
	}
	return media.NewLocalStore(cfg.Media.Root, []string{cfg.Media.UploadDir, cfg.Media.CodesDir}, logger)
}
