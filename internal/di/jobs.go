package di

import (
	"fmt"
	"time"

	"github.com/aristath/stockintel/internal/config"
	"github.com/aristath/stockintel/internal/scheduler"
	"github.com/rs/zerolog"
)

const (
	priceSyncTimeout   = 30 * time.Minute
	backupTimeout      = 15 * time.Minute
	maintenanceTimeout = 10 * time.Minute
)

// RegisterJobs creates the background jobs and registers them with sched
func RegisterJobs(container *Container, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{
		PriceSync:   scheduler.NewPriceSyncJob(container.SyncService, priceSyncTimeout, log),
		Maintenance: scheduler.NewMaintenanceJob(container.MaintenanceService, maintenanceTimeout),
	}

	if err := sched.AddJob(cfg.Sync.Schedule, jobs.PriceSync); err != nil {
		return nil, fmt.Errorf("failed to register price sync job: %w", err)
	}
	if err := sched.AddJob(cfg.Maintenance.Schedule, jobs.Maintenance); err != nil {
		return nil, fmt.Errorf("failed to register maintenance job: %w", err)
	}

	if container.BackupService != nil {
		jobs.Backup = scheduler.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, backupTimeout, log)
		if err := sched.AddJob(cfg.Backup.Schedule, jobs.Backup); err != nil {
			return nil, fmt.Errorf("failed to register backup job: %w", err)
		}
	}

	return jobs, nil
}
