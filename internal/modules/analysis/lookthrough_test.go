package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeExposureDistributesETFValue(t *testing.T) {
	engine := NewEngine(nil, nil)

	// $1000 in a fund disclosing a single 40% constituent
	entries := engine.ComputeExposure(
		[]Holding{{Ticker: "VOO", CurrentValue: 1000}},
		map[string][]ETFConstituent{
			"VOO": {{ETFTicker: "VOO", Symbol: "Z", WeightPercent: 40}},
		},
	)

	require.Len(t, entries, 1, "Only the disclosed constituent should appear; undisclosed value is not fabricated")

	entry := entries[0]
	assert.Equal(t, "Z", entry.Ticker)
	assert.Equal(t, 400.0, entry.TotalExposureValue, "40% of $1000 should flow to the constituent")
	require.Len(t, entry.Sources, 1)
	assert.Equal(t, ExposureSource{Source: SourceETF, ETF: "VOO", Value: 400}, entry.Sources[0])
	assert.Equal(t, 100.0, entry.ExposurePercent, "The one disclosed entry carries all measured exposure")
}

func TestComputeExposureETFDoesNotCountItself(t *testing.T) {
	engine := NewEngine(nil, nil)

	entries := engine.ComputeExposure(
		[]Holding{{Ticker: "VOO", CurrentValue: 1000}},
		map[string][]ETFConstituent{
			"VOO": {{ETFTicker: "VOO", Symbol: "AAPL", WeightPercent: 100}},
		},
	)

	require.Len(t, entries, 1)
	assert.Equal(t, "AAPL", entries[0].Ticker, "The fund must not appear as direct exposure to itself")
}

func TestComputeExposureBlendsDirectAndIndirect(t *testing.T) {
	engine := NewEngine(nil, nil)

	entries := engine.ComputeExposure(
		[]Holding{
			{Ticker: "AAPL", CurrentValue: 600},
			{Ticker: "VOO", CurrentValue: 400},
		},
		map[string][]ETFConstituent{
			"VOO": {
				{ETFTicker: "VOO", Symbol: "AAPL", WeightPercent: 50},
				{ETFTicker: "VOO", Symbol: "MSFT", WeightPercent: 30},
			},
		},
	)

	require.Len(t, entries, 2)

	// AAPL: 600 direct + 400×50% indirect = 800 of a 920 measured total
	apple := entries[0]
	assert.Equal(t, "AAPL", apple.Ticker)
	assert.Equal(t, 800.0, apple.TotalExposureValue)
	assert.InDelta(t, 86.96, apple.ExposurePercent, 0.01)
	require.Len(t, apple.Sources, 2, "Direct and ETF-implied records should both be kept")
	assert.Equal(t, ExposureSource{Source: SourceDirect, Value: 600}, apple.Sources[0])
	assert.Equal(t, ExposureSource{Source: SourceETF, ETF: "VOO", Value: 200}, apple.Sources[1])

	msft := entries[1]
	assert.Equal(t, "MSFT", msft.Ticker)
	assert.Equal(t, 120.0, msft.TotalExposureValue)
	assert.InDelta(t, 13.04, msft.ExposurePercent, 0.01)
}

func TestComputeExposureOpaqueETFFallsBackToDirect(t *testing.T) {
	engine := NewEngine(nil, nil)

	constituents := map[string][]ETFConstituent{
		"VOO": {{ETFTicker: "VOO", Symbol: "AAPL", WeightPercent: 50}},
	}

	entries := engine.ComputeExposure(
		[]Holding{
			{Ticker: "MYSTERY", CurrentValue: 500},
			{Ticker: "VOO", CurrentValue: 100},
		},
		constituents,
	)

	require.Len(t, entries, 2)
	assert.Equal(t, "MYSTERY", entries[0].Ticker,
		"A fund with no constituent data is treated as an opaque direct position")
	assert.Equal(t, 500.0, entries[0].TotalExposureValue, "Opaque fund value must not be lost")
	assert.Equal(t, SourceDirect, entries[0].Sources[0].Source)
}

func TestComputeExposureEmptyConstituentListIsOpaque(t *testing.T) {
	engine := NewEngine(nil, nil)

	entries := engine.ComputeExposure(
		[]Holding{{Ticker: "SPY", CurrentValue: 250}},
		map[string][]ETFConstituent{"SPY": {}},
	)

	require.Len(t, entries, 1)
	assert.Equal(t, "SPY", entries[0].Ticker)
	assert.Equal(t, 250.0, entries[0].TotalExposureValue)
}

func TestComputeExposureMergesShareClasses(t *testing.T) {
	engine := NewEngine(nil, map[string]string{"GOOG": "GOOGL"})

	entries := engine.ComputeExposure(
		[]Holding{
			{Ticker: "GOOG", CurrentValue: 300},
			{Ticker: "GOOGL", CurrentValue: 200},
		},
		nil,
	)

	require.Len(t, entries, 1, "Share classes must merge into a single canonical row")

	entry := entries[0]
	assert.Equal(t, "GOOGL", entry.Ticker)
	assert.Equal(t, 500.0, entry.TotalExposureValue, "Merged rows combine additively")
	assert.Equal(t, 100.0, entry.ExposurePercent)
	assert.Len(t, entry.Sources, 2, "Source lists concatenate instead of overwriting")
}

func TestComputeExposureMergesConstituentShareClasses(t *testing.T) {
	engine := NewEngine(nil, map[string]string{"GOOG": "GOOGL"})

	entries := engine.ComputeExposure(
		[]Holding{{Ticker: "VOO", CurrentValue: 1000}},
		map[string][]ETFConstituent{
			"VOO": {
				{ETFTicker: "VOO", Symbol: "GOOG", WeightPercent: 1},
				{ETFTicker: "VOO", Symbol: "GOOGL", WeightPercent: 2},
			},
		},
	)

	require.Len(t, entries, 1)
	assert.Equal(t, "GOOGL", entries[0].Ticker)
	assert.Equal(t, 30.0, entries[0].TotalExposureValue, "Both share classes of the constituent should combine")
	assert.Len(t, entries[0].Sources, 2)
}

func TestComputeExposureSortsDescending(t *testing.T) {
	engine := NewEngine(nil, nil)

	entries := engine.ComputeExposure(
		[]Holding{
			{Ticker: "SMALL", CurrentValue: 100},
			{Ticker: "BIG", CurrentValue: 900},
			{Ticker: "MID", CurrentValue: 500},
		},
		nil,
	)

	require.Len(t, entries, 3)
	assert.Equal(t, "BIG", entries[0].Ticker)
	assert.Equal(t, "MID", entries[1].Ticker)
	assert.Equal(t, "SMALL", entries[2].Ticker)
}

func TestComputeExposureEmptyHoldings(t *testing.T) {
	engine := NewEngine(nil, nil)

	assert.Empty(t, engine.ComputeExposure(nil, nil))
	assert.Empty(t, engine.ComputeExposure([]Holding{}, map[string][]ETFConstituent{}))
}

func TestComputeExposureZeroValuePortfolio(t *testing.T) {
	engine := NewEngine(nil, nil)

	entries := engine.ComputeExposure(
		[]Holding{{Ticker: "AAPL", CurrentValue: 0}},
		nil,
	)

	require.Len(t, entries, 1)
	assert.Equal(t, 0.0, entries[0].ExposurePercent, "Zero measured total must not divide by zero")
}

func TestComputeExposureCaseInsensitiveETFMatch(t *testing.T) {
	engine := NewEngine(nil, nil)

	entries := engine.ComputeExposure(
		[]Holding{{Ticker: "voo", CurrentValue: 1000}},
		map[string][]ETFConstituent{
			"VOO": {{ETFTicker: "VOO", Symbol: "AAPL", WeightPercent: 10}},
		},
	)

	require.Len(t, entries, 1)
	assert.Equal(t, "AAPL", entries[0].Ticker, "Fund membership check should ignore ticker case")
	assert.Equal(t, "voo", entries[0].Sources[0].ETF, "The source keeps the fund ticker as held")
}

func TestTopEntries(t *testing.T) {
	entries := []ExposureEntry{
		{Ticker: "A", ExposurePercent: 50},
		{Ticker: "B", ExposurePercent: 30},
		{Ticker: "C", ExposurePercent: 20},
	}

	assert.Len(t, TopEntries(entries, 2), 2, "Limit should truncate the list")
	assert.Equal(t, "A", TopEntries(entries, 2)[0].Ticker)
	assert.Len(t, TopEntries(entries, 0), 3, "Non-positive limit returns the full list")
	assert.Len(t, TopEntries(entries, 10), 3, "Limit beyond length returns the full list")
}
