// Package di wires the application's databases, clients, services and jobs.
package di

import (
	"github.com/aristath/stockintel/internal/clients/yahoo"
	"github.com/aristath/stockintel/internal/database"
	"github.com/aristath/stockintel/internal/market_regime"
	"github.com/aristath/stockintel/internal/modules/charts"
	"github.com/aristath/stockintel/internal/modules/historical"
	"github.com/aristath/stockintel/internal/modules/optimization"
	"github.com/aristath/stockintel/internal/reliability"
	"github.com/aristath/stockintel/internal/scheduler"
)

// Container holds every long-lived dependency of the application
type Container struct {
	// Storage
	HistoryDB    *database.DB
	HistoryStore *historical.HistoryDB

	// Clients
	YahooClient *yahoo.Client

	// Services
	SyncService        *historical.SyncService
	OptimizerService   *optimization.OptimizerService
	RegimeService      *market_regime.RegimeService
	ChartsService      *charts.Service
	MaintenanceService *reliability.MaintenanceService
	BackupService      *reliability.BackupService // nil when backups are not configured
}

// Close releases the databases
func (c *Container) Close() error {
	if c.HistoryDB == nil {
		return nil
	}
	return c.HistoryDB.Close()
}

// JobInstances holds the scheduled jobs so they can also be run on demand
type JobInstances struct {
	PriceSync   scheduler.Job
	Maintenance scheduler.Job
	Backup      scheduler.Job // nil when backups are not configured
}
