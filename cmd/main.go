package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/database"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/utils"

	"github.com/paaavkata/crypto-arbitrage-scanner/internal/api"
	"github.com/paaavkata/crypto-arbitrage-scanner/internal/cache"
	"github.com/paaavkata/crypto-arbitrage-scanner/internal/collector"
	"github.com/paaavkata/crypto-arbitrage-scanner/internal/config"
	scanDB "github.com/paaavkata/crypto-arbitrage-scanner/internal/database"
	"github.com/paaavkata/crypto-arbitrage-scanner/internal/exchange"
	"github.com/paaavkata/crypto-arbitrage-scanner/internal/health"
	"github.com/paaavkata/crypto-arbitrage-scanner/internal/stream"

	"github.com/sirupsen/logrus"
)

// opportunityStore is what both storage drivers provide.
type opportunityStore interface {
	InsertOpportunity(ctx context.Context, opp *models.Opportunity) error
	GetRecentOpportunities(ctx context.Context, limit int) ([]models.Opportunity, error)
	HealthCheck(ctx context.Context) error
}

func main() {
	// A missing .env is fine; real environment variables still apply.
	envErr := godotenv.Load()

	// Initialize logger
	logger := utils.NewLogger("arbitrage-scanner")
	if envErr != nil && !os.IsNotExist(envErr) {
		logger.WithError(envErr).Warn("Failed to load .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	logger.WithFields(logrus.Fields{
		"storage":        cfg.StorageDriver,
		"symbols":        cfg.Symbols,
		"exchanges":      len(cfg.Exchanges),
		"scan_interval":  cfg.ScanInterval,
		"threshold":      cfg.ProfitThreshold,
		"fetch_timeout":  cfg.FetchTimeout,
		"redis_enabled":  cfg.Redis.Enabled(),
		"max_concurrent": cfg.MaxConcurrentSymbols,
		"http_port":      cfg.HTTPPort,
	}).Info("Configuration loaded")

	healthChecker := health.NewHealthChecker(logger)

	// Initialize storage
	var store opportunityStore
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := database.NewConnection(cfg.Database.DbUri, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		repo := scanDB.NewRepository(db, logger)
		schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = repo.EnsureSchema(schemaCtx)
		schemaCancel()
		if err != nil {
			logger.WithError(err).Fatal("Failed to prepare database schema")
		}
		store = repo
	default:
		logger.Warn("Using in-memory storage; opportunities are lost on restart")
		store = scanDB.NewMemoryRepository()
	}
	healthChecker.Register("database", store)

	// Initialize exchange adapters
	registry, err := exchange.NewRegistryFromEndpoints(cfg.Exchanges, cfg.FetchTimeout, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to configure exchanges")
	}

	hub := stream.NewHub(logger)

	scannerOpts := []collector.ScannerOption{
		collector.WithPublisher(hub),
		collector.WithMaxConcurrentSymbols(cfg.MaxConcurrentSymbols),
	}
	apiOpts := []api.Option{
		api.WithStream(hub),
		api.WithHealth(healthChecker.Handler()),
		api.WithRecentLimit(cfg.RecentLimit),
	}

	// The quote cache is optional
	if cfg.Redis.Enabled() {
		quoteCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to redis")
		}
		defer quoteCache.Close()

		healthChecker.Register("redis", quoteCache)
		scannerOpts = append(scannerOpts, collector.WithQuoteCache(quoteCache))
		apiOpts = append(apiOpts, api.WithQuotes(quoteCache))
	}

	// Initialize services
	fetcher := collector.NewFetcher(registry, logger)
	detector := collector.NewDetector(cfg.ProfitThreshold)
	processor := collector.NewProcessor(store, logger)
	scanner := collector.NewScanner(cfg.Symbols, fetcher, detector, processor, logger, scannerOpts...)
	scheduler := collector.NewScheduler(scanner, cfg.ScanInterval, logger)

	server := api.NewServer(store, logger, apiOpts...)
	httpServer := server.StartServer(cfg.HTTPPort)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the scheduler
	if err := scheduler.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start scheduler")
	}

	logger.WithField("exchanges", registry.Names()).Info("Arbitrage scanner started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down arbitrage scanner...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Stop scheduler and let the running cycle finish
	stopped := scheduler.Stop()
	select {
	case <-stopped.Done():
	case <-shutdownCtx.Done():
		logger.Warn("Scan cycle did not finish in time, cancelling")
		cancel()
	}

	hub.Close()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	// Cancel context
	cancel()

	logger.Info("Arbitrage scanner stopped")
}
