// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/lens/internal/clients/pricefeed"
	"github.com/aristath/lens/internal/clients/refdata"
	"github.com/aristath/lens/internal/database"
	"github.com/aristath/lens/internal/modules/analysis"
	"github.com/aristath/lens/internal/modules/history"
	"github.com/aristath/lens/internal/modules/portfolio"
	"github.com/aristath/lens/internal/modules/reference"
	"github.com/aristath/lens/internal/modules/snapshots"
	"github.com/aristath/lens/internal/reliability"
	"github.com/aristath/lens/internal/scheduler"
)

// Container holds all initialized dependencies
type Container struct {
	// Databases
	ReferenceDB *database.DB
	PortfolioDB *database.DB
	SnapshotsDB *database.DB
	HistoryDB   *history.HistoryDB

	// Clients
	RefdataClient   *refdata.Client
	PricefeedClient *pricefeed.Client // nil when the price feed is disabled

	// Repositories
	ReferenceRepo *reference.Repository
	PositionRepo  *portfolio.PositionRepository
	SnapshotRepo  *snapshots.Repository

	// Services
	ReferenceService *reference.Service
	PortfolioService *portfolio.Service
	AnalysisService  *analysis.Service
	SnapshotService  *snapshots.Service
	TrendsService    *history.TrendsService

	// Reliability
	BackupService   *reliability.BackupService
	S3BackupService *reliability.S3BackupService // nil when backups are disabled
}

// JobInstances holds the scheduled jobs, keyed by concern. Backup is nil
// when backups are disabled.
type JobInstances struct {
	Refresh     scheduler.Job
	Snapshot    scheduler.Job
	Maintenance scheduler.Job
	Backup      scheduler.Job
}

// Databases returns the managed databases keyed by name. The history
// database is excluded; it runs its own driver and schema.
func (c *Container) Databases() map[string]*database.DB {
	return map[string]*database.DB{
		"reference": c.ReferenceDB,
		"portfolio": c.PortfolioDB,
		"snapshots": c.SnapshotsDB,
	}
}

// Close closes every database the container owns.
func (c *Container) Close() {
	if c.ReferenceDB != nil {
		_ = c.ReferenceDB.Close()
	}
	if c.PortfolioDB != nil {
		_ = c.PortfolioDB.Close()
	}
	if c.SnapshotsDB != nil {
		_ = c.SnapshotsDB.Close()
	}
	if c.HistoryDB != nil {
		_ = c.HistoryDB.Close()
	}
}
