package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/quantfolio/sharpewatch/internal/clients/yahoo"
	"github.com/quantfolio/sharpewatch/internal/config"
	"github.com/quantfolio/sharpewatch/internal/database"
	"github.com/quantfolio/sharpewatch/internal/modules/marketdata"
	"github.com/quantfolio/sharpewatch/internal/modules/metrics"
	"github.com/quantfolio/sharpewatch/internal/modules/universe"
	"github.com/quantfolio/sharpewatch/internal/scheduler"
	"github.com/quantfolio/sharpewatch/internal/server"
	"github.com/quantfolio/sharpewatch/pkg/logger"
	"github.com/quantfolio/sharpewatch/pkg/sharpe"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting SharpeWatch")

	// Initialize databases
	universeDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "universe.db"),
		Profile: database.ProfileStandard,
		Name:    "universe",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open universe database")
	}
	defer universeDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	// Run migrations and verify file integrity before serving
	databases := []*database.DB{universeDB, cacheDB}
	for _, db := range databases {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("db", db.Name()).Msg("Failed to run migrations")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.HealthCheck(ctx)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("db", db.Name()).Msg("Database failed integrity check")
		}
	}

	// Load the S&P 500 universe snapshot if present
	universeRepo := universe.NewRepository(universeDB.Conn(), log)
	loader := universe.NewLoader(universe.LoaderOptions{ValidateCount: cfg.ValidateSP500Count}, log)
	if _, err := os.Stat(cfg.SP500CSVPath); err == nil {
		stocks, err := loader.LoadFile(cfg.SP500CSVPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SP500CSVPath).Msg("Failed to load S&P 500 universe")
		}
		if err := universeRepo.ReplaceAll(stocks); err != nil {
			log.Fatal().Err(err).Msg("Failed to store universe")
		}
	} else {
		log.Warn().Str("path", cfg.SP500CSVPath).Msg("No universe CSV found, /api/sharpe/sp500 will be unavailable until one is loaded")
	}

	// Market data: Yahoo client plus SQLite-backed price cache
	yahooClient := yahoo.NewClient(cfg.MaxRetries, time.Duration(cfg.RequestTimeoutSecs)*time.Second, log)

	var cache *marketdata.Cache
	if cfg.CacheEnabled {
		cache = marketdata.NewCache(cacheDB.Conn(), time.Duration(cfg.CacheTTLHours)*time.Hour, log)
	}

	quality := marketdata.DefaultQualityConfig()
	quality.MinDataPoints = cfg.MinDataPoints
	quality.MinYears = cfg.MinDataYears

	marketService := marketdata.NewService(yahooClient, cache, quality, log)

	// Sharpe calculation service
	params := sharpe.DefaultParams()
	params.MinYears = cfg.MinDataYears
	metricsService := metrics.NewService(marketService, universeRepo, params, log)

	// Initialize scheduler
	sched := scheduler.New(log)
	if cache != nil {
		if err := sched.AddJob("@hourly", scheduler.NewCacheCleanupJob(cache, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register cache cleanup job")
		}
	}
	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:             cfg.Port,
		Log:              log,
		Config:           cfg,
		MetricsHandlers:  metrics.NewHandlers(metricsService, log),
		UniverseHandlers: universe.NewHandlers(universeRepo, log),
		SystemHandlers:   server.NewSystemHandlers(cfg.DataDir, cache, universeRepo, databases, log),
		Databases:        databases,
		DevMode:          cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
