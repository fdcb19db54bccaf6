package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/lens/internal/config"
	"github.com/aristath/lens/internal/database"
	"github.com/aristath/lens/internal/modules/history"
)

// InitializeDatabases opens and migrates all databases and returns a
// container holding them.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	databases := []struct {
		name    string
		profile database.DatabaseProfile
		target  **database.DB
	}{
		{"reference", database.ProfileStandard, &container.ReferenceDB},
		{"portfolio", database.ProfileStandard, &container.PortfolioDB},
		// Snapshots are the audit trail; they get the safest profile
		{"snapshots", database.ProfileLedger, &container.SnapshotsDB},
	}

	for _, d := range databases {
		db, err := database.New(database.Config{
			Path:    filepath.Join(cfg.DataDir, d.name+".db"),
			Profile: d.profile,
			Name:    d.name,
		})
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to open %s database: %w", d.name, err)
		}

		if err := db.Migrate(); err != nil {
			db.Close()
			container.Close()
			return nil, fmt.Errorf("failed to migrate %s database: %w", d.name, err)
		}

		*d.target = db
		log.Debug().Str("database", d.name).Msg("Database opened")
	}

	historyDB, err := history.Open(filepath.Join(cfg.DataDir, "history.db"), log)
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	container.HistoryDB = historyDB

	log.Info().Int("count", len(databases)+1).Msg("Databases initialized")

	return container, nil
}
