package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePortfolioUpstream struct {
	positions []Position
	err       error
}

func (f *fakePortfolioUpstream) GetPortfolio(ctx context.Context) ([]Position, error) {
	return f.positions, f.err
}

type fakeQuotes map[string]float64

func (f fakeQuotes) Quote(ticker string) (float64, bool) {
	price, ok := f[ticker]
	return price, ok
}

func TestHoldingsMirrorsPositions(t *testing.T) {
	repo := setupTestRepo(t)
	svc := NewService(repo, nil, nil, zerolog.Nop())

	require.NoError(t, repo.ReplaceAll([]Position{
		{Ticker: "AAPL", CurrentValue: 1800},
		{Ticker: "VOO", CurrentValue: 900},
	}))

	holdings, err := svc.Holdings()
	require.NoError(t, err)

	require.Len(t, holdings, 2)
	assert.Equal(t, "AAPL", holdings[0].Ticker)
	assert.Equal(t, 1800.0, holdings[0].CurrentValue)
}

func TestReplaceValidatesAtBoundary(t *testing.T) {
	svc := NewService(setupTestRepo(t), nil, nil, zerolog.Nop())

	err := svc.Replace([]Position{{Ticker: "AAPL", CurrentValue: -5}})
	assert.ErrorContains(t, err, "negative value")

	require.NoError(t, svc.Replace([]Position{{Ticker: "AAPL", CurrentValue: 100}}))

	positions, err := svc.Positions()
	require.NoError(t, err)
	assert.Len(t, positions, 1)
}

func TestRefreshStoresUpstreamPortfolio(t *testing.T) {
	repo := setupTestRepo(t)
	upstream := &fakePortfolioUpstream{positions: []Position{
		{Ticker: "AAPL", Quantity: 10, LastPrice: 180, CurrentValue: 1800},
	}}
	svc := NewService(repo, upstream, nil, zerolog.Nop())

	require.NoError(t, svc.Refresh(context.Background()))

	positions, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, 1800.0, positions[0].CurrentValue)
}

func TestRefreshAppliesQuoteCache(t *testing.T) {
	repo := setupTestRepo(t)
	upstream := &fakePortfolioUpstream{positions: []Position{
		{Ticker: "AAPL", Quantity: 10, LastPrice: 180, CurrentValue: 1800},
		{Ticker: "BOND", Quantity: 0, CurrentValue: 500}, // no quantity, keeps upstream value
	}}
	quotes := fakeQuotes{"AAPL": 200, "BOND": 99}
	svc := NewService(repo, upstream, quotes, zerolog.Nop())

	require.NoError(t, svc.Refresh(context.Background()))

	positions, err := repo.GetAll()
	require.NoError(t, err)

	require.Len(t, positions, 2)
	assert.Equal(t, 2000.0, positions[0].CurrentValue, "Quantity × live quote replaces the stale value")
	assert.Equal(t, 200.0, positions[0].LastPrice)
	assert.Equal(t, 500.0, positions[1].CurrentValue)
}

func TestRefreshRejectsInvalidUpstream(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.ReplaceAll([]Position{{Ticker: "KEEP", CurrentValue: 1}}))

	upstream := &fakePortfolioUpstream{positions: []Position{
		{Ticker: "AAPL", CurrentValue: -100},
	}}
	svc := NewService(repo, upstream, nil, zerolog.Nop())

	assert.ErrorContains(t, svc.Refresh(context.Background()), "rejected")

	positions, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "KEEP", positions[0].Ticker, "A rejected refresh leaves the stored portfolio untouched")
}

func TestRefreshWithoutUpstreamIsNoop(t *testing.T) {
	svc := NewService(setupTestRepo(t), nil, nil, zerolog.Nop())
	assert.NoError(t, svc.Refresh(context.Background()))
}

func TestRefreshSurfacesUpstreamError(t *testing.T) {
	svc := NewService(setupTestRepo(t), &fakePortfolioUpstream{err: errors.New("api down")}, nil, zerolog.Nop())
	assert.ErrorContains(t, svc.Refresh(context.Background()), "failed to fetch portfolio")
}

func TestRevalueUpdatesQuotedPositions(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.ReplaceAll([]Position{
		{Ticker: "AAPL", Quantity: 10, LastPrice: 180, CurrentValue: 1800},
		{Ticker: "MSFT", Quantity: 5, LastPrice: 400, CurrentValue: 2000},
		{Ticker: "OPAQUE", Quantity: 0, CurrentValue: 500},
	}))

	quotes := fakeQuotes{
		"AAPL": 200, // changed
		"MSFT": 400, // unchanged price, skip the write
	}
	svc := NewService(repo, nil, quotes, zerolog.Nop())

	updated, err := svc.Revalue()
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	positions, err := repo.GetAll()
	require.NoError(t, err)

	byTicker := make(map[string]Position)
	for _, p := range positions {
		byTicker[p.Ticker] = p
	}
	assert.Equal(t, 2000.0, byTicker["AAPL"].CurrentValue)
	assert.Equal(t, 2000.0, byTicker["MSFT"].CurrentValue)
	assert.Equal(t, 500.0, byTicker["OPAQUE"].CurrentValue, "Positions without quantity are never repriced")
}

func TestRevalueWithoutQuotesIsNoop(t *testing.T) {
	svc := NewService(setupTestRepo(t), nil, nil, zerolog.Nop())

	updated, err := svc.Revalue()
	require.NoError(t, err)
	assert.Zero(t, updated)
}
