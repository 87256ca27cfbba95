package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/stockintel/internal/database"
	"github.com/aristath/stockintel/internal/httpapi"
	"github.com/aristath/stockintel/internal/modules/historical"
	historicalhandlers "github.com/aristath/stockintel/internal/modules/historical/handlers"
	"github.com/aristath/stockintel/internal/reliability"
	"github.com/aristath/stockintel/internal/version"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// DatabaseStats reports storage statistics
type DatabaseStats interface {
	GetStats() (*database.Stats, error)
}

// HistoryStore is the history database surface the server reads
type HistoryStore interface {
	historicalhandlers.HistoryReader
	LastSyncRun(ctx context.Context) (*historical.SyncRun, error)
}

// PriceSyncer runs a market data sync on demand
type PriceSyncer interface {
	SyncAll(ctx context.Context) (*historical.SyncRun, error)
}

// BackupManager creates and lists remote backups
type BackupManager interface {
	CreateAndUploadBackup(ctx context.Context) (*reliability.BackupInfo, error)
	ListBackups(ctx context.Context) ([]reliability.BackupInfo, error)
}

// SystemHandlers handles system monitoring and operations endpoints
type SystemHandlers struct {
	db          DatabaseStats
	history     HistoryStore
	syncer      PriceSyncer
	backups     BackupManager
	startupTime time.Time
	systemStats func() (cpuPercent, memPercent float64)
	log         zerolog.Logger
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(db DatabaseStats, history HistoryStore, syncer PriceSyncer, backups BackupManager, log zerolog.Logger) *SystemHandlers {
	h := &SystemHandlers{
		db:          db,
		history:     history,
		syncer:      syncer,
		backups:     backups,
		startupTime: time.Now(),
		log:         log.With().Str("component", "system_handlers").Logger(),
	}
	h.systemStats = h.getSystemStats
	return h
}

// SystemStatusResponse represents the system status
type SystemStatusResponse struct {
	Status        string                      `json:"status"`
	Version       string                      `json:"version"`
	UptimeSeconds int64                       `json:"uptime_seconds"`
	CPUPercent    float64                     `json:"cpu_percent"`
	MemoryPercent float64                     `json:"memory_percent"`
	Database      *database.Stats             `json:"database,omitempty"`
	Coverage      []historical.SymbolCoverage `json:"coverage"`
	LastSync      *historical.SyncRun         `json:"last_sync,omitempty"`
	Warnings      []string                    `json:"warnings,omitempty"`
}

// HandleSystemStatus returns system, storage and sync status. Partial
// failures degrade the status instead of failing the request.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	response := SystemStatusResponse{
		Status:        "healthy",
		Version:       version.Version,
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		Coverage:      []historical.SymbolCoverage{},
	}
	response.CPUPercent, response.MemoryPercent = h.systemStats()

	warn := func(msg string, err error) {
		h.log.Warn().Err(err).Msg(msg)
		response.Status = "degraded"
		response.Warnings = append(response.Warnings, msg)
	}

	if stats, err := h.db.GetStats(); err != nil {
		warn("database stats unavailable", err)
	} else {
		response.Database = stats
	}

	if coverage, err := h.history.ListCoverage(ctx); err != nil {
		warn("price coverage unavailable", err)
	} else if coverage != nil {
		response.Coverage = coverage
	}

	if run, err := h.history.LastSyncRun(ctx); err != nil {
		warn("last sync run unavailable", err)
	} else {
		response.LastSync = run
		if run != nil && run.Failed > 0 {
			response.Status = "degraded"
		}
	}

	httpapi.WriteData(w, r, http.StatusOK, response)
}

// HandleTriggerSync runs a market data sync and returns its summary
// POST /api/system/sync
func (h *SystemHandlers) HandleTriggerSync(w http.ResponseWriter, r *http.Request) {
	h.log.Info().Msg("Manual price sync triggered")

	run, err := h.syncer.SyncAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Manual price sync failed")
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, historical.ErrSyncFailed):
			status = http.StatusBadGateway
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
		}
		httpapi.WriteError(w, r, status, err.Error())
		return
	}

	httpapi.WriteData(w, r, http.StatusOK, run)
}

// HandleTriggerBackup creates and uploads a backup
// POST /api/system/backup
func (h *SystemHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		httpapi.WriteError(w, r, http.StatusServiceUnavailable, "backups are not configured")
		return
	}

	h.log.Info().Msg("Manual backup triggered")
	info, err := h.backups.CreateAndUploadBackup(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Manual backup failed")
		httpapi.WriteError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	httpapi.WriteData(w, r, http.StatusCreated, info)
}

// HandleListBackups lists remote backups, newest first
// GET /api/system/backups
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		httpapi.WriteError(w, r, http.StatusServiceUnavailable, "backups are not configured")
		return
	}

	backups, err := h.backups.ListBackups(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		httpapi.WriteError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if backups == nil {
		backups = []reliability.BackupInfo{}
	}

	httpapi.WriteData(w, r, http.StatusOK, backups)
}

// getSystemStats samples CPU over 100ms and reads memory usage
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(cpuPercent) == 0 {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuPercent[0], 0
	}

	return cpuPercent[0], memStat.UsedPercent
}
