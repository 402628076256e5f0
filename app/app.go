package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fragrance-sampler/app/controller"
	"fragrance-sampler/app/router"
	"fragrance-sampler/bundle"
	"fragrance-sampler/config"
	"fragrance-sampler/db"
	"fragrance-sampler/repository"
	"fragrance-sampler/service"
	"fragrance-sampler/utils"
)

// Initialize wires storage, the proposal source and the HTTP routes.
// The returned cleanup releases the database pool, if one was opened.
func Initialize(ctx context.Context, cfg config.Config, logger *zap.Logger) (*gin.Engine, func(), error) {
	cleanup := func() {}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Load bundle policy
	policy := bundle.DefaultPolicy()
	if cfg.PolicyPath != "" {
		loaded, err := bundle.LoadPolicy(cfg.PolicyPath)
		if err != nil {
			return nil, cleanup, err
		}
		policy = loaded
		logger.Info("✓ Bundle policy loaded", zap.String("path", cfg.PolicyPath))
	}

	// Initialize catalog storage
	var catalog repository.CatalogReader
	if cfg.CatalogFile != "" {
		catalog = repository.NewFileCatalogRepository(cfg.CatalogFile, logger.Named("catalog"))
		logger.Info("📄 Using file catalog", zap.String("path", cfg.CatalogFile))
	} else {
		dsn, err := cfg.DatabaseDSN()
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to initialize database: %w", err)
		}
		conn, err := db.Open(ctx, dsn, logger)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to initialize database: %w", err)
		}
		cleanup = func() {
			if err := conn.Close(); err != nil {
				logger.Warn("⚠️  Error closing database", zap.Error(err))
			}
		}
		catalog = repository.NewCatalogRepository(conn, logger.Named("catalog"))
	}

	// Initialize proposal source
	var source service.ProposalSourceInterface
	if cfg.GeminiAPIKey != "" {
		gemini, err := service.NewGeminiProposalSource(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ProposalRPS, logger.Named("gemini"))
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		source = gemini
	} else {
		logger.Warn("⚠️  GEMINI_API_KEY not set, every build will use the fallback composer")
	}

	bundleService := service.NewBundleService(catalog, source, policy, service.BundleServiceConfig{
		CatalogTimeout:  cfg.CatalogTimeout,
		ProposalTimeout: cfg.ProposalTimeout,
		Retry: utils.RetryConfig{
			Attempts:  cfg.ProposalAttempts,
			BaseDelay: cfg.ProposalBackoff,
		},
	}, logger.Named("bundles"))

	// Create controllers
	controllers := &router.Controllers{
		Bundle:  controller.NewBundleController(bundleService, logger),
		Catalog: controller.NewCatalogController(bundleService, logger),
	}

	return router.NewRouter(controllers, logger), cleanup, nil
}
