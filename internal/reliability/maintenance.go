package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/stockintel/internal/database"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

// Disk space thresholds in bytes
const (
	criticalFreeBytes = 500 * 1000 * 1000
	warnFreeBytes     = 5 * 1000 * 1000 * 1000
)

// MaintainedDB is the database surface maintenance needs
type MaintainedDB interface {
	Name() string
	HealthCheck(ctx context.Context) error
	WALCheckpoint(mode string) error
	GetStats() (*database.Stats, error)
}

// MaintenanceService keeps the local databases healthy between backups
type MaintenanceService struct {
	dbs       []MaintainedDB
	dataDir   string
	diskUsage func(path string) (*disk.UsageStat, error)
	log       zerolog.Logger
}

// NewMaintenanceService creates a maintenance service watching dbs and the
// filesystem holding dataDir.
func NewMaintenanceService(dbs []MaintainedDB, dataDir string, log zerolog.Logger) *MaintenanceService {
	return &MaintenanceService{
		dbs:       dbs,
		dataDir:   dataDir,
		diskUsage: disk.Usage,
		log:       log.With().Str("service", "maintenance").Logger(),
	}
}

// RunDaily checks integrity, checkpoints the WAL and verifies free disk space.
// A failed integrity check or critically low disk space is returned as an
// error; everything else is logged.
func (s *MaintenanceService) RunDaily(ctx context.Context) error {
	s.log.Info().Msg("Starting daily maintenance")
	startTime := time.Now()

	for _, db := range s.dbs {
		if err := db.HealthCheck(ctx); err != nil {
			s.log.Error().Str("database", db.Name()).Err(err).Msg("Integrity check failed")
			return fmt.Errorf("integrity check failed for %s: %w", db.Name(), err)
		}

		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			s.log.Warn().Str("database", db.Name()).Err(err).Msg("WAL checkpoint failed")
		}

		if stats, err := db.GetStats(); err != nil {
			s.log.Warn().Str("database", db.Name()).Err(err).Msg("Failed to get database stats")
		} else {
			s.log.Info().
				Str("database", db.Name()).
				Float64("size_mb", float64(stats.SizeBytes)/1e6).
				Float64("wal_size_mb", float64(stats.WALSizeBytes)/1e6).
				Int64("freelist_pages", stats.FreelistCount).
				Msg("Database metrics")
		}
	}

	if err := s.CheckDiskSpace(); err != nil {
		return err
	}

	s.log.Info().Dur("duration_ms", time.Since(startTime)).Msg("Daily maintenance completed")
	return nil
}

// CheckDiskSpace fails when the data directory's filesystem is nearly full
func (s *MaintenanceService) CheckDiskSpace() error {
	usage, err := s.diskUsage(s.dataDir)
	if err != nil {
		return fmt.Errorf("failed to stat filesystem: %w", err)
	}

	availableGB := float64(usage.Free) / 1e9
	s.log.Debug().Float64("available_gb", availableGB).Msg("Disk space check")

	switch {
	case usage.Free < criticalFreeBytes:
		s.log.Error().Float64("available_gb", availableGB).Msg("Insufficient disk space")
		return fmt.Errorf("only %.2f GB free on %s", availableGB, s.dataDir)
	case usage.Free < warnFreeBytes:
		s.log.Warn().Float64("available_gb", availableGB).Msg("Disk space running low")
	}
	return nil
}
