package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ReferenceRefresher pulls fresh lookup tables from upstream.
type ReferenceRefresher interface {
	Refresh(ctx context.Context) error
}

// PortfolioRefresher pulls the current portfolio from upstream.
type PortfolioRefresher interface {
	Refresh(ctx context.Context) error
}

// EngineRebuilder swaps the analysis engine after reference data changed.
type EngineRebuilder interface {
	Rebuild() error
}

// RefreshJob pulls reference tables and the portfolio from upstream, then
// rebuilds the analysis engine so the next pass sees the new data.
type RefreshJob struct {
	reference ReferenceRefresher
	portfolio PortfolioRefresher
	rebuilder EngineRebuilder
	timeout   time.Duration
	log       zerolog.Logger
}

// NewRefreshJob creates a new refresh job
func NewRefreshJob(
	reference ReferenceRefresher,
	portfolio PortfolioRefresher,
	rebuilder EngineRebuilder,
	timeout time.Duration,
	log zerolog.Logger,
) *RefreshJob {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &RefreshJob{
		reference: reference,
		portfolio: portfolio,
		rebuilder: rebuilder,
		timeout:   timeout,
		log:       log.With().Str("job", "refresh").Logger(),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "refresh"
}

// Run executes the refresh job. Reference and portfolio refreshes are
// independent: a failure in one does not block the other, but any failure
// is reported after both ran.
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	var firstErr error

	if err := j.reference.Refresh(ctx); err != nil {
		j.log.Error().Err(err).Msg("Reference refresh failed")
		firstErr = err
	} else if err := j.rebuilder.Rebuild(); err != nil {
		j.log.Error().Err(err).Msg("Engine rebuild failed")
		firstErr = err
	}

	if err := j.portfolio.Refresh(ctx); err != nil {
		j.log.Error().Err(err).Msg("Portfolio refresh failed")
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
