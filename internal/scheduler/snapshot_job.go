package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/lens/internal/modules/snapshots"
)

// Revaluer reprices stored positions from the quote cache.
type Revaluer interface {
	Revalue() (int, error)
}

// SnapshotCapturer captures one full analysis pass.
type SnapshotCapturer interface {
	Capture() (*snapshots.Snapshot, error)
}

// SnapshotJob revalues the portfolio and captures an analysis snapshot,
// which also appends the day's rows to the exposure history.
type SnapshotJob struct {
	revaluer Revaluer // nil when the price feed is disabled
	capturer SnapshotCapturer
	log      zerolog.Logger
}

// NewSnapshotJob creates a new snapshot job
func NewSnapshotJob(revaluer Revaluer, capturer SnapshotCapturer, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		revaluer: revaluer,
		capturer: capturer,
		log:      log.With().Str("job", "snapshot").Logger(),
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "snapshot"
}

// Run executes the snapshot job
func (j *SnapshotJob) Run() error {
	if j.revaluer != nil {
		if _, err := j.revaluer.Revalue(); err != nil {
			// Stale values are still worth snapshotting
			j.log.Warn().Err(err).Msg("Revaluation before snapshot failed")
		}
	}

	_, err := j.capturer.Capture()
	return err
}
