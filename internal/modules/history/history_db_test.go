package history

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/lens/internal/modules/analysis"
)

func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	h, err := NewHistoryDB(conn, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	return h
}

func resultOn(day time.Time, totalValue float64, exposure map[string]float64) analysis.Result {
	result := analysis.Result{
		CreatedAt:  day,
		TotalValue: totalValue,
	}
	for sector, pct := range exposure {
		result.SectorExposure = append(result.SectorExposure, analysis.SectorExposure{
			Sector:          sector,
			ExposurePercent: pct,
		})
	}
	return result
}

func TestAppendAndSectorSeries(t *testing.T) {
	h := setupTestDB(t)

	now := time.Now().UTC()
	require.NoError(t, h.Append(resultOn(now.AddDate(0, 0, -2), 900, map[string]float64{"Technology": 55})))
	require.NoError(t, h.Append(resultOn(now.AddDate(0, 0, -1), 950, map[string]float64{"Technology": 58})))
	require.NoError(t, h.Append(resultOn(now, 1000, map[string]float64{"Technology": 60, "Energy": 40})))

	series, err := h.SectorSeries("Technology", 30)
	require.NoError(t, err)

	require.Len(t, series, 3)
	assert.Equal(t, 55.0, series[0].ExposurePercent, "Series is oldest first")
	assert.Equal(t, 60.0, series[2].ExposurePercent)
	assert.Equal(t, 1000.0, series[2].TotalValue)
}

func TestAppendOverwritesSameDay(t *testing.T) {
	h := setupTestDB(t)

	now := time.Now().UTC()
	require.NoError(t, h.Append(resultOn(now, 900, map[string]float64{"Technology": 55})))
	require.NoError(t, h.Append(resultOn(now, 1000, map[string]float64{"Technology": 60})))

	series, err := h.SectorSeries("Technology", 30)
	require.NoError(t, err)

	require.Len(t, series, 1, "Re-capturing on the same day replaces that day's row")
	assert.Equal(t, 60.0, series[0].ExposurePercent)
	assert.Equal(t, 1000.0, series[0].TotalValue)
}

func TestAllSeriesOrdering(t *testing.T) {
	h := setupTestDB(t)

	now := time.Now().UTC()
	require.NoError(t, h.Append(resultOn(now.AddDate(0, 0, -1), 900, map[string]float64{
		"Technology": 55,
		"Energy":     45,
	})))
	require.NoError(t, h.Append(resultOn(now, 1000, map[string]float64{
		"Technology": 60,
		"Energy":     40,
	})))

	points, err := h.AllSeries(30)
	require.NoError(t, err)

	require.Len(t, points, 4)
	assert.Equal(t, "Energy", points[0].Sector, "Rows order by date then sector")
	assert.Equal(t, "Technology", points[1].Sector)
	assert.Equal(t, points[0].Date, points[1].Date)
}

func TestTotalValueSeries(t *testing.T) {
	h := setupTestDB(t)

	now := time.Now().UTC()
	require.NoError(t, h.Append(resultOn(now.AddDate(0, 0, -1), 900, map[string]float64{"Technology": 100})))
	require.NoError(t, h.Append(resultOn(now, 1000, map[string]float64{"Technology": 60, "Energy": 40})))

	totals, err := h.TotalValueSeries(30)
	require.NoError(t, err)

	require.Len(t, totals, 2, "One total per day regardless of sector count")
	assert.Equal(t, 900.0, totals[0].TotalValue)
	assert.Equal(t, 1000.0, totals[1].TotalValue)
}

func TestSeriesWindowExcludesOldRows(t *testing.T) {
	h := setupTestDB(t)

	now := time.Now().UTC()
	require.NoError(t, h.Append(resultOn(now.AddDate(0, 0, -40), 800, map[string]float64{"Technology": 50})))
	require.NoError(t, h.Append(resultOn(now, 1000, map[string]float64{"Technology": 60})))

	series, err := h.SectorSeries("Technology", 30)
	require.NoError(t, err)

	require.Len(t, series, 1)
	assert.Equal(t, 60.0, series[0].ExposurePercent)
}

func TestPrune(t *testing.T) {
	h := setupTestDB(t)

	now := time.Now().UTC()
	require.NoError(t, h.Append(resultOn(now.AddDate(0, 0, -400), 800, map[string]float64{"Technology": 50})))
	require.NoError(t, h.Append(resultOn(now, 1000, map[string]float64{"Technology": 60})))

	deleted, err := h.Prune(365)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	series, err := h.SectorSeries("Technology", 500)
	require.NoError(t, err)
	assert.Len(t, series, 1)

	deleted, err = h.Prune(0)
	require.NoError(t, err)
	assert.Zero(t, deleted, "Disabled retention never deletes")
}
