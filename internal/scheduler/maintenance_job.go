package scheduler

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/lens/internal/database"
)

// HistoryPruner drops exposure history rows older than the retention window.
type HistoryPruner interface {
	Prune(retentionDays int) (int64, error)
}

// MaintenanceJob checkpoints and compacts the databases and prunes old
// history rows.
type MaintenanceJob struct {
	databases     map[string]*database.DB
	pruner        HistoryPruner // nil when history tracking is disabled
	retentionDays int
	log           zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(databases map[string]*database.DB, pruner HistoryPruner, retentionDays int, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases:     databases,
		pruner:        pruner,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "maintenance").Logger(),
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run executes the maintenance job. Each database is handled independently
// so one locked file does not block the rest; the first error is reported.
func (j *MaintenanceJob) Run() error {
	var firstErr error

	names := make([]string, 0, len(j.databases))
	for name := range j.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		db := j.databases[name]

		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("WAL checkpoint failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if err := db.Vacuum(); err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("Vacuum failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if j.pruner != nil && j.retentionDays > 0 {
		pruned, err := j.pruner.Prune(j.retentionDays)
		if err != nil {
			j.log.Error().Err(err).Msg("History prune failed")
			if firstErr == nil {
				firstErr = err
			}
		} else if pruned > 0 {
			j.log.Info().Int64("rows", pruned).Int("retention_days", j.retentionDays).Msg("Old history rows pruned")
		}
	}

	return firstErr
}
