// Package main is the entry point for the stockintel API server.
//
// The server keeps a local history of daily prices in sync with Yahoo Finance
// and serves Monte-Carlo efficient frontiers, volatility regime
// classifications and chart indicators computed from it.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/stockintel/internal/config"
	"github.com/aristath/stockintel/internal/di"
	regimehandlers "github.com/aristath/stockintel/internal/market_regime/handlers"
	optimizationhandlers "github.com/aristath/stockintel/internal/modules/optimization/handlers"
	"github.com/aristath/stockintel/internal/scheduler"
	"github.com/aristath/stockintel/internal/server"
	"github.com/aristath/stockintel/internal/version"
	"github.com/aristath/stockintel/pkg/logger"
)

// main loads configuration, wires dependencies, starts the scheduler and the
// HTTP server, then waits for SIGINT or SIGTERM and shuts down gracefully.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("version", version.Version).Str("data_dir", cfg.DataDir).Msg("Starting stockintel")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.Wire(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	sched := scheduler.New(log)
	if _, err := di.RegisterJobs(container, cfg, sched, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}
	sched.Start()

	serverCfg := server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		History:   container.HistoryStore,
		Optimizer: container.OptimizerService,
		OptimizerDefaults: optimizationhandlers.Defaults{
			Tickers: cfg.Portfolio.Tickers,
		},
		Regime: container.RegimeService,
		RegimeDefaults: regimehandlers.Defaults{
			Seed: cfg.Regime.Seed,
		},
		Charts:   container.ChartsService,
		Database: container.HistoryDB,
		Syncer:   container.SyncService,
	}
	if container.BackupService != nil {
		serverCfg.Backups = container.BackupService
	}
	srv := server.New(serverCfg)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
