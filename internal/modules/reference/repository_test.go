package reference

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/lens/internal/database"
	"github.com/aristath/lens/internal/modules/analysis"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "reference.db"),
		Profile: database.ProfileStandard,
		Name:    "reference",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	return NewRepository(db.Conn(), zerolog.Nop())
}

func TestReplaceSectorMapRoundTrip(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.ReplaceSectorMap(map[string]string{
		"aapl": "Technology",
		"XOM":  "Energy",
		"":     "Dropped",
		"BAD":  "",
	}))

	sectors, err := repo.SectorMap()
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"AAPL": "Technology",
		"XOM":  "Energy",
	}, sectors, "Tickers normalize on write; blank keys and sectors are dropped")
}

func TestReplaceSectorMapSwapsWholesale(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.ReplaceSectorMap(map[string]string{"AAPL": "Technology"}))
	require.NoError(t, repo.ReplaceSectorMap(map[string]string{"XOM": "Energy"}))

	sectors, err := repo.SectorMap()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"XOM": "Energy"}, sectors, "Replace clears previous rows")
}

func TestReplaceAliasesSkipsSelfMappings(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.ReplaceAliases(map[string]string{
		"GOOG": "GOOGL",
		"aapl": "AAPL", // identity after normalization
	}))

	aliases, err := repo.Aliases()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"GOOG": "GOOGL"}, aliases)
}

func TestConstituentsRoundTrip(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.ReplaceConstituentsFor("voo", []analysis.ETFConstituent{
		{Symbol: "MSFT", WeightPercent: 6, Name: "Microsoft"},
		{Symbol: "aapl", WeightPercent: 7},
	}))

	list, err := repo.ConstituentsFor("VOO")
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "AAPL", list[0].Symbol, "Heaviest constituent sorts first")
	assert.Equal(t, "VOO", list[0].ETFTicker, "Fund ticker normalizes on write")
	assert.Equal(t, "Microsoft", list[1].Name)
}

func TestConstituentsForUnknownFund(t *testing.T) {
	repo := setupTestRepo(t)

	list, err := repo.ConstituentsFor("NOPE")
	require.NoError(t, err)
	assert.Empty(t, list, "Unknown fund is an empty list, not an error")
}

func TestReplaceConstituentsForRequiresTicker(t *testing.T) {
	repo := setupTestRepo(t)

	assert.Error(t, repo.ReplaceConstituentsFor("  ", nil))
}

func TestReplaceAllConstituents(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.ReplaceConstituentsFor("OLD", []analysis.ETFConstituent{
		{Symbol: "X", WeightPercent: 1},
	}))

	require.NoError(t, repo.ReplaceAllConstituents(map[string][]analysis.ETFConstituent{
		"VOO": {{Symbol: "AAPL", WeightPercent: 7}},
		"QQQ": {{Symbol: "AAPL", WeightPercent: 9}},
	}))

	all, err := repo.Constituents()
	require.NoError(t, err)

	assert.Len(t, all, 2)
	assert.NotContains(t, all, "OLD", "Wholesale replace drops funds missing from the new table")

	tickers, err := repo.ETFTickers()
	require.NoError(t, err)
	assert.Equal(t, []string{"QQQ", "VOO"}, tickers)
}

func TestCounts(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.ReplaceSectorMap(map[string]string{"AAPL": "Technology"}))
	require.NoError(t, repo.ReplaceAliases(map[string]string{"GOOG": "GOOGL"}))
	require.NoError(t, repo.ReplaceConstituentsFor("VOO", []analysis.ETFConstituent{
		{Symbol: "AAPL", WeightPercent: 7},
		{Symbol: "MSFT", WeightPercent: 6},
	}))

	sectors, aliases, constituents, err := repo.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, sectors)
	assert.Equal(t, 1, aliases)
	assert.Equal(t, 2, constituents)
}
