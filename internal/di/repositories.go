package di

import (
	"github.com/rs/zerolog"

	"github.com/aristath/lens/internal/modules/portfolio"
	"github.com/aristath/lens/internal/modules/reference"
	"github.com/aristath/lens/internal/modules/snapshots"
)

// InitializeRepositories creates all repositories over the opened databases.
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	container.ReferenceRepo = reference.NewRepository(container.ReferenceDB.Conn(), log)
	container.PositionRepo = portfolio.NewPositionRepository(container.PortfolioDB.Conn(), log)
	container.SnapshotRepo = snapshots.NewRepository(container.SnapshotsDB.Conn(), log)

	log.Debug().Msg("Repositories initialized")

	return nil
}
