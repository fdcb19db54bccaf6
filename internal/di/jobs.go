package di

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/lens/internal/config"
	"github.com/aristath/lens/internal/scheduler"
)

// RegisterJobs builds the scheduled job instances from the wired services.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{}

	jobs.Refresh = scheduler.NewRefreshJob(
		container.ReferenceService,
		container.PortfolioService,
		container.AnalysisService,
		5*time.Minute,
		log,
	)

	// The revaluer is only useful with a live quote stream
	var revaluer scheduler.Revaluer
	if container.PricefeedClient != nil {
		revaluer = container.PortfolioService
	}
	jobs.Snapshot = scheduler.NewSnapshotJob(revaluer, container.SnapshotService, log)

	jobs.Maintenance = scheduler.NewMaintenanceJob(
		container.Databases(),
		container.HistoryDB,
		cfg.HistoryRetentionDays,
		log,
	)

	if container.S3BackupService != nil {
		jobs.Backup = scheduler.NewBackupJob(
			container.S3BackupService,
			cfg.Backup.KeepDays,
			15*time.Minute,
			log,
		)
	}

	return jobs, nil
}
