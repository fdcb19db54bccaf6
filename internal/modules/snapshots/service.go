package snapshots

import (
	"fmt"

	"github.com/aristath/lens/internal/modules/analysis"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PassRunner runs a full analysis pass over the stored portfolio.
// Implemented by the analysis service.
type PassRunner interface {
	RunPass() (analysis.Result, error)
}

// HistoryAppender receives the sector rows of a captured pass.
// Implemented by the history store; nil disables history tracking.
type HistoryAppender interface {
	Append(result analysis.Result) error
}

// Service captures analysis passes as snapshots.
type Service struct {
	repo    *Repository
	runner  PassRunner
	history HistoryAppender
	log     zerolog.Logger
}

// NewService creates a new snapshot service
func NewService(repo *Repository, runner PassRunner, history HistoryAppender, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		runner:  runner,
		history: history,
		log:     log.With().Str("service", "snapshots").Logger(),
	}
}

// Capture runs a full pass, stores it, and appends its sector rows to the
// exposure history.
func (s *Service) Capture() (*Snapshot, error) {
	result, err := s.runner.RunPass()
	if err != nil {
		return nil, fmt.Errorf("failed to run analysis pass: %w", err)
	}

	snapshot := Snapshot{
		ID:           uuid.New().String(),
		CreatedAt:    result.CreatedAt,
		TotalValue:   result.TotalValue,
		HoldingCount: result.HoldingCount,
		WarningCount: len(result.Warnings),
		Result:       result,
	}

	if err := s.repo.Insert(snapshot); err != nil {
		return nil, err
	}

	if s.history != nil {
		if err := s.history.Append(result); err != nil {
			// History is derived data; a failed append never loses the snapshot
			s.log.Warn().Err(err).Str("snapshot", snapshot.ID).Msg("Failed to append exposure history")
		}
	}

	s.log.Info().
		Str("snapshot", snapshot.ID).
		Float64("total_value", snapshot.TotalValue).
		Int("warnings", snapshot.WarningCount).
		Msg("Analysis snapshot captured")

	return &snapshot, nil
}

// List returns snapshot metadata, newest first.
func (s *Service) List(limit int) ([]Snapshot, error) {
	return s.repo.List(limit)
}

// Get returns one snapshot with its full result, or nil when unknown.
func (s *Service) Get(id string) (*Snapshot, error) {
	return s.repo.Get(id)
}
