package snapshots

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/lens/internal/modules/analysis"
)

type fakeRunner struct {
	result analysis.Result
	err    error
}

func (f *fakeRunner) RunPass() (analysis.Result, error) {
	return f.result, f.err
}

type fakeHistory struct {
	appended []analysis.Result
	err      error
}

func (f *fakeHistory) Append(result analysis.Result) error {
	f.appended = append(f.appended, result)
	return f.err
}

func TestCaptureStoresPassAndAppendsHistory(t *testing.T) {
	repo := setupTestRepo(t)
	createdAt := time.Date(2026, 8, 20, 18, 30, 0, 0, time.UTC)
	runner := &fakeRunner{result: sampleResult(createdAt)}
	history := &fakeHistory{}

	svc := NewService(repo, runner, history, zerolog.Nop())

	snap, err := svc.Capture()
	require.NoError(t, err)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, createdAt, snap.CreatedAt)
	assert.Equal(t, 1000.0, snap.TotalValue)
	assert.Equal(t, 2, snap.HoldingCount)
	assert.Equal(t, 1, snap.WarningCount)

	stored, err := svc.Get(snap.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, snap.TotalValue, stored.TotalValue)

	require.Len(t, history.appended, 1)
	assert.Equal(t, createdAt, history.appended[0].CreatedAt)
}

func TestCaptureSurvivesHistoryFailure(t *testing.T) {
	repo := setupTestRepo(t)
	runner := &fakeRunner{result: sampleResult(time.Now().UTC().Truncate(time.Second))}
	history := &fakeHistory{err: errors.New("disk full")}

	svc := NewService(repo, runner, history, zerolog.Nop())

	snap, err := svc.Capture()
	require.NoError(t, err, "History is derived data; its failure never loses the snapshot")

	stored, err := svc.Get(snap.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestCaptureWithoutHistory(t *testing.T) {
	repo := setupTestRepo(t)
	runner := &fakeRunner{result: sampleResult(time.Now().UTC().Truncate(time.Second))}

	svc := NewService(repo, runner, nil, zerolog.Nop())

	_, err := svc.Capture()
	assert.NoError(t, err)
}

func TestCaptureSurfacesPassError(t *testing.T) {
	svc := NewService(setupTestRepo(t), &fakeRunner{err: errors.New("no portfolio")}, nil, zerolog.Nop())

	_, err := svc.Capture()
	assert.ErrorContains(t, err, "failed to run analysis pass")
}

func TestListNewestFirst(t *testing.T) {
	repo := setupTestRepo(t)
	svc := NewService(repo, nil, nil, zerolog.Nop())

	base := time.Date(2026, 8, 18, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "new"} {
		require.NoError(t, repo.Insert(Snapshot{ID: id, CreatedAt: base.AddDate(0, 0, i)}))
	}

	list, err := svc.List(10)
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
}
