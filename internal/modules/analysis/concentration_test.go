package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectConcentrationInclusiveBoundary(t *testing.T) {
	entries := []ExposureEntry{
		{Ticker: "AT", ExposurePercent: 10.0},
		{Ticker: "BELOW", ExposurePercent: 9.99},
		{Ticker: "ABOVE", ExposurePercent: 23.4},
	}

	warnings := DetectConcentration(entries, 10.0)

	require.Len(t, warnings, 2, "Exactly at the threshold still warns; just below does not")
	assert.Equal(t, "AT", warnings[0].Ticker)
	assert.Equal(t, "ABOVE", warnings[1].Ticker)
}

func TestDetectConcentrationDefaultThreshold(t *testing.T) {
	entries := []ExposureEntry{
		{Ticker: "BIG", ExposurePercent: 12},
		{Ticker: "SMALL", ExposurePercent: 8},
	}

	// Zero and negative thresholds both select the default
	for _, threshold := range []float64{0, -5} {
		warnings := DetectConcentration(entries, threshold)
		require.Len(t, warnings, 1)
		assert.Equal(t, "BIG", warnings[0].Ticker)
	}
}

func TestDetectConcentrationMessage(t *testing.T) {
	warnings := DetectConcentration([]ExposureEntry{
		{Ticker: "AAPL", ExposurePercent: 23.45},
	}, 10.0)

	require.Len(t, warnings, 1)
	assert.Equal(t, 23.45, warnings[0].ExposurePercent)
	assert.Equal(t, "AAPL accounts for 23.4% of portfolio exposure (threshold 10.0%)", warnings[0].Message)
}

func TestDetectConcentrationPreservesInputOrder(t *testing.T) {
	entries := []ExposureEntry{
		{Ticker: "A", ExposurePercent: 30},
		{Ticker: "B", ExposurePercent: 20},
		{Ticker: "C", ExposurePercent: 15},
	}

	warnings := DetectConcentration(entries, 10)

	require.Len(t, warnings, 3)
	assert.Equal(t, "A", warnings[0].Ticker)
	assert.Equal(t, "B", warnings[1].Ticker)
	assert.Equal(t, "C", warnings[2].Ticker)
}

func TestDetectConcentrationEmpty(t *testing.T) {
	assert.Empty(t, DetectConcentration(nil, 10))
	assert.Empty(t, DetectConcentration([]ExposureEntry{}, 10))
	assert.NotNil(t, DetectConcentration(nil, 10), "Callers get an empty slice, not nil")
}
