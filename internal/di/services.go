package di

import (
	"context"
	"fmt"

	"github.com/aristath/stockintel/internal/clients/yahoo"
	"github.com/aristath/stockintel/internal/config"
	"github.com/aristath/stockintel/internal/market_regime"
	"github.com/aristath/stockintel/internal/modules/charts"
	"github.com/aristath/stockintel/internal/modules/historical"
	"github.com/aristath/stockintel/internal/modules/optimization"
	"github.com/aristath/stockintel/internal/reliability"
	"github.com/rs/zerolog"
)

// InitializeServices builds clients and services on top of the databases
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.YahooClient = yahoo.NewClient(yahoo.Config{
		BaseURL:       cfg.Yahoo.BaseURL,
		RatePerSecond: cfg.Yahoo.RatePerSecond,
	}, log)

	container.SyncService = historical.NewSyncService(
		container.HistoryStore,
		container.YahooClient,
		historical.SyncConfig{
			Symbols:      cfg.SyncSymbols(),
			HistoryYears: cfg.Sync.HistoryYears,
			Concurrency:  cfg.Sync.Concurrency,
		},
		log,
	)

	container.OptimizerService = optimization.NewOptimizerService(container.HistoryStore, log)
	container.RegimeService = market_regime.NewRegimeService(container.HistoryStore, cfg.Regime.Index, log)
	container.ChartsService = charts.NewService(container.HistoryStore, log)

	container.MaintenanceService = reliability.NewMaintenanceService(
		[]reliability.MaintainedDB{container.HistoryDB},
		cfg.DataDir,
		log,
	)

	if !cfg.Backup.Enabled() {
		log.Info().Msg("Remote backups not configured")
		return nil
	}

	store, err := reliability.NewS3Client(ctx, reliability.S3Config{
		Endpoint:        cfg.Backup.Endpoint,
		Region:          cfg.Backup.Region,
		Bucket:          cfg.Backup.Bucket,
		AccessKeyID:     cfg.Backup.AccessKeyID,
		SecretAccessKey: cfg.Backup.SecretAccessKey,
		UsePathStyle:    cfg.Backup.UsePathStyle,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create backup store: %w", err)
	}

	container.BackupService = reliability.NewBackupService(
		store,
		[]reliability.Snapshotter{container.HistoryDB},
		cfg.DataDir,
		log,
	)
	return nil
}
