package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/stockintel/internal/modules/historical"
	"github.com/aristath/stockintel/internal/reliability"
	"github.com/rs/zerolog"
)

// PriceSyncer refreshes the local price history
type PriceSyncer interface {
	SyncAll(ctx context.Context) (*historical.SyncRun, error)
}

// Backupper creates and rotates remote backups
type Backupper interface {
	CreateAndUploadBackup(ctx context.Context) (*reliability.BackupInfo, error)
	RotateOldBackups(ctx context.Context, retentionDays int) (int, error)
}

// Maintainer performs routine database upkeep
type Maintainer interface {
	RunDaily(ctx context.Context) error
}

// PriceSyncJob pulls new daily bars for every configured symbol
type PriceSyncJob struct {
	syncer  PriceSyncer
	timeout time.Duration
	log     zerolog.Logger
}

// NewPriceSyncJob creates a price sync job bounded by timeout
func NewPriceSyncJob(syncer PriceSyncer, timeout time.Duration, log zerolog.Logger) *PriceSyncJob {
	return &PriceSyncJob{
		syncer:  syncer,
		timeout: timeout,
		log:     log.With().Str("job", "price_sync").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *PriceSyncJob) Name() string {
	return "price_sync"
}

// Run executes the sync
func (j *PriceSyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	run, err := j.syncer.SyncAll(ctx)
	if err != nil {
		return fmt.Errorf("price sync failed: %w", err)
	}

	j.log.Info().
		Int("succeeded", run.Succeeded).
		Int("failed", run.Failed).
		Int("rows_written", run.RowsWritten).
		Msg("Price sync finished")
	return nil
}

// BackupJob uploads a fresh backup then prunes expired ones
type BackupJob struct {
	backups       Backupper
	retentionDays int
	timeout       time.Duration
	log           zerolog.Logger
}

// NewBackupJob creates a backup job
func NewBackupJob(backups Backupper, retentionDays int, timeout time.Duration, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		backups:       backups,
		retentionDays: retentionDays,
		timeout:       timeout,
		log:           log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *BackupJob) Name() string {
	return "backup"
}

// Run executes the backup. A failed rotation is logged but not returned.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	info, err := j.backups.CreateAndUploadBackup(ctx)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	j.log.Info().Str("filename", info.Filename).Int64("size_bytes", info.SizeBytes).Msg("Backup uploaded")

	if _, err := j.backups.RotateOldBackups(ctx, j.retentionDays); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}
	return nil
}

// MaintenanceJob runs daily database maintenance
type MaintenanceJob struct {
	maintainer Maintainer
	timeout    time.Duration
}

// NewMaintenanceJob creates a maintenance job
func NewMaintenanceJob(maintainer Maintainer, timeout time.Duration) *MaintenanceJob {
	return &MaintenanceJob{maintainer: maintainer, timeout: timeout}
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "daily_maintenance"
}

// Run executes the maintenance
func (j *MaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	return j.maintainer.RunDaily(ctx)
}
