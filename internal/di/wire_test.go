package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aristath/stockintel/internal/config"
	"github.com/aristath/stockintel/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:   t.TempDir(),
		Portfolio: config.PortfolioConfig{Tickers: []string{"AAPL", "MSFT"}},
		Regime:    config.RegimeConfig{Index: "^NSEI", Seed: 42},
		Sync: config.SyncConfig{
			HistoryYears: 5,
			Concurrency:  2,
			Schedule:     "0 30 22 * * MON-FRI",
		},
		Yahoo:       config.YahooConfig{BaseURL: "http://127.0.0.1:1", RatePerSecond: 2},
		Backup:      config.BackupConfig{Schedule: "0 0 3 * * *", RetentionDays: 30},
		Maintenance: config.MaintenanceConfig{Schedule: "0 0 2 * * *"},
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.FileExists(t, filepath.Join(cfg.DataDir, "history.db"))
	assert.NotNil(t, container.HistoryStore)
	assert.NotNil(t, container.YahooClient)
	assert.NotNil(t, container.SyncService)
	assert.NotNil(t, container.OptimizerService)
	assert.NotNil(t, container.RegimeService)
	assert.NotNil(t, container.ChartsService)
	assert.NotNil(t, container.MaintenanceService)
	assert.Nil(t, container.BackupService)

	assert.Equal(t, []string{"AAPL", "MSFT", "^NSEI"}, container.SyncService.Symbols())
}

func TestWire_WithBackups(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backup.Bucket = "stockintel-backups"
	cfg.Backup.Endpoint = "http://127.0.0.1:9000"
	cfg.Backup.AccessKeyID = "key"
	cfg.Backup.SecretAccessKey = "secret"
	cfg.Backup.UsePathStyle = true

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.BackupService)

	jobs, err := RegisterJobs(container, cfg, scheduler.New(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, jobs.Backup)
}

func TestRegisterJobs(t *testing.T) {
	cfg := testConfig(t)
	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	jobs, err := RegisterJobs(container, cfg, scheduler.New(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "price_sync", jobs.PriceSync.Name())
	assert.Equal(t, "daily_maintenance", jobs.Maintenance.Name())
	assert.Nil(t, jobs.Backup)

	cfg.Sync.Schedule = "not a schedule"
	_, err = RegisterJobs(container, cfg, scheduler.New(zerolog.Nop()), zerolog.Nop())
	assert.Error(t, err)
}

func TestInitializeDatabases_InvalidPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataDir = "/dev/null/stockintel"

	_, err := InitializeDatabases(cfg, zerolog.Nop())
	assert.Error(t, err)
}
