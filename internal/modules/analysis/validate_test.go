package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateHoldings(t *testing.T) {
	assert.NoError(t, ValidateHoldings(nil))
	assert.NoError(t, ValidateHoldings([]Holding{
		{Ticker: "AAPL", CurrentValue: 100},
		{Ticker: "VOO", CurrentValue: 0},
	}))

	err := ValidateHoldings([]Holding{{Ticker: "  ", CurrentValue: 100}})
	assert.ErrorContains(t, err, "empty ticker", "Whitespace-only tickers are blank")

	err = ValidateHoldings([]Holding{{Ticker: "AAPL", CurrentValue: -1}})
	assert.ErrorContains(t, err, "negative value")
}

func TestValidateConstituents(t *testing.T) {
	assert.NoError(t, ValidateConstituents(nil))
	assert.NoError(t, ValidateConstituents(map[string][]ETFConstituent{
		"VOO": {
			{ETFTicker: "VOO", Symbol: "AAPL", WeightPercent: 0},
			{ETFTicker: "VOO", Symbol: "MSFT", WeightPercent: 100},
		},
	}))

	err := ValidateConstituents(map[string][]ETFConstituent{
		"": {{Symbol: "AAPL", WeightPercent: 10}},
	})
	assert.ErrorContains(t, err, "empty ETF ticker")

	err = ValidateConstituents(map[string][]ETFConstituent{
		"VOO": {{ETFTicker: "VOO", Symbol: "", WeightPercent: 10}},
	})
	assert.ErrorContains(t, err, "empty symbol")

	err = ValidateConstituents(map[string][]ETFConstituent{
		"VOO": {{ETFTicker: "VOO", Symbol: "AAPL", WeightPercent: 100.5}},
	})
	assert.ErrorContains(t, err, "outside [0,100]")

	err = ValidateConstituents(map[string][]ETFConstituent{
		"VOO": {{ETFTicker: "VOO", Symbol: "AAPL", WeightPercent: -0.1}},
	})
	assert.ErrorContains(t, err, "outside [0,100]")
}
