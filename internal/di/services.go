package di

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/lens/internal/clients/pricefeed"
	"github.com/aristath/lens/internal/clients/refdata"
	"github.com/aristath/lens/internal/config"
	"github.com/aristath/lens/internal/modules/analysis"
	"github.com/aristath/lens/internal/modules/history"
	"github.com/aristath/lens/internal/modules/portfolio"
	"github.com/aristath/lens/internal/modules/reference"
	"github.com/aristath/lens/internal/modules/snapshots"
	"github.com/aristath/lens/internal/reliability"
)

// InitializeServices creates clients and services over the repositories.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	// Upstream reference API client. The services treat a nil upstream as
	// "no upstream configured", so an unconfigured client is not passed in.
	container.RefdataClient = refdata.NewClient(cfg.Refdata, log)

	var referenceUpstream reference.UpstreamClient
	var portfolioUpstream portfolio.UpstreamClient
	if container.RefdataClient.Configured() {
		referenceUpstream = container.RefdataClient
		portfolioUpstream = container.RefdataClient
	} else {
		log.Warn().Msg("No reference API configured, running on stored data only")
	}

	// Live quote stream
	var quotes portfolio.QuoteProvider
	if cfg.Pricefeed.Enabled {
		container.PricefeedClient = pricefeed.New(cfg.Pricefeed.URL, log)
		quotes = container.PricefeedClient
	}

	// Reference data
	container.ReferenceService = reference.NewService(container.ReferenceRepo, referenceUpstream, log)
	if err := container.ReferenceService.SeedIfEmpty(); err != nil {
		return fmt.Errorf("failed to seed reference tables: %w", err)
	}

	// Portfolio
	container.PortfolioService = portfolio.NewService(container.PositionRepo, portfolioUpstream, quotes, log)

	// Analysis engine over the reference and portfolio services
	analysisService, err := analysis.NewService(
		container.ReferenceService,
		container.PortfolioService,
		container.ReferenceService,
		cfg.ConcentrationThreshold,
		cfg.ExposureTopLimit,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis service: %w", err)
	}
	container.AnalysisService = analysisService

	// Snapshots feed the exposure history on capture
	container.SnapshotService = snapshots.NewService(
		container.SnapshotRepo,
		container.AnalysisService,
		container.HistoryDB,
		log,
	)

	// Trends over the exposure history
	container.TrendsService = history.NewTrendsService(container.HistoryDB, log)

	// Backup staging over every database, including history
	container.BackupService = reliability.NewBackupService(backupDatabases(container), log)

	if cfg.Backup.Enabled {
		s3Client, err := reliability.NewS3Client(context.Background(), cfg.Backup, log)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		container.S3BackupService = reliability.NewS3BackupService(
			s3Client,
			container.BackupService,
			cfg.DataDir,
			log,
		)
	}

	log.Info().Msg("Services initialized")

	return nil
}

// backupDatabases collects the raw connections the backup service stages.
func backupDatabases(container *Container) map[string]*sql.DB {
	conns := make(map[string]*sql.DB, 4)
	for name, db := range container.Databases() {
		conns[name] = db.Conn()
	}
	conns["history"] = container.HistoryDB.Conn()
	return conns
}
