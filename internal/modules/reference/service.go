package reference

import (
	"context"
	"fmt"

	"github.com/aristath/lens/internal/modules/analysis"
	"github.com/rs/zerolog"
)

// UpstreamClient is the slice of the reference API this service needs.
// Implemented by the refdata client.
type UpstreamClient interface {
	GetSectors(ctx context.Context) (map[string]string, error)
	GetAliases(ctx context.Context) (map[string]string, error)
	GetETFConstituents(ctx context.Context) (map[string][]analysis.ETFConstituent, error)
}

// Service assembles the lookup tables consumed by the analysis engine and
// keeps them current from the upstream reference API.
type Service struct {
	repo     *Repository
	upstream UpstreamClient // nil when no upstream is configured
	log      zerolog.Logger
}

// NewService creates a new reference service
func NewService(repo *Repository, upstream UpstreamClient, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		upstream: upstream,
		log:      log.With().Str("service", "reference").Logger(),
	}
}

// LookupTables returns the sector map and alias table for engine
// construction. Satisfies analysis.TableProvider.
func (s *Service) LookupTables() (map[string]string, map[string]string, error) {
	sectors, err := s.repo.SectorMap()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load sector map: %w", err)
	}

	aliases, err := s.repo.Aliases()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load ticker aliases: %w", err)
	}

	return sectors, aliases, nil
}

// Constituents returns the ETF constituent tables.
// Satisfies analysis.ConstituentsProvider.
func (s *Service) Constituents() (map[string][]analysis.ETFConstituent, error) {
	return s.repo.Constituents()
}

// SeedIfEmpty applies the built-in seed tables on first run, so a fresh
// install classifies the common cases before the first upstream refresh.
func (s *Service) SeedIfEmpty() error {
	sectors, aliases, _, err := s.repo.Counts()
	if err != nil {
		return fmt.Errorf("failed to inspect reference tables: %w", err)
	}

	if sectors == 0 {
		if err := s.repo.ReplaceSectorMap(seedSectors); err != nil {
			return fmt.Errorf("failed to seed sector map: %w", err)
		}
		s.log.Info().Int("tickers", len(seedSectors)).Msg("Seeded sector map")
	}

	if aliases == 0 {
		if err := s.repo.ReplaceAliases(seedAliases); err != nil {
			return fmt.Errorf("failed to seed ticker aliases: %w", err)
		}
		s.log.Info().Int("aliases", len(seedAliases)).Msg("Seeded ticker aliases")
	}

	return nil
}

// Refresh pulls fresh tables from the upstream reference API and replaces
// the stored ones. Each table is validated before it is swapped in; a table
// that fails validation leaves the previous one untouched.
func (s *Service) Refresh(ctx context.Context) error {
	if s.upstream == nil {
		s.log.Debug().Msg("No upstream reference API configured, skipping refresh")
		return nil
	}

	sectors, err := s.upstream.GetSectors(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch sector map: %w", err)
	}
	if len(sectors) > 0 {
		if err := s.repo.ReplaceSectorMap(sectors); err != nil {
			return fmt.Errorf("failed to store sector map: %w", err)
		}
	}

	aliases, err := s.upstream.GetAliases(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch ticker aliases: %w", err)
	}
	if len(aliases) > 0 {
		if err := s.repo.ReplaceAliases(aliases); err != nil {
			return fmt.Errorf("failed to store ticker aliases: %w", err)
		}
	}

	constituents, err := s.upstream.GetETFConstituents(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch ETF constituents: %w", err)
	}
	if err := analysis.ValidateConstituents(constituents); err != nil {
		return fmt.Errorf("upstream constituent data rejected: %w", err)
	}
	if len(constituents) > 0 {
		if err := s.repo.ReplaceAllConstituents(constituents); err != nil {
			return fmt.Errorf("failed to store ETF constituents: %w", err)
		}
	}

	s.log.Info().
		Int("sectors", len(sectors)).
		Int("aliases", len(aliases)).
		Int("etfs", len(constituents)).
		Msg("Reference tables refreshed from upstream")

	return nil
}
