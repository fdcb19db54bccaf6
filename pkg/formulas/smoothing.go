package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateEMA calculates the exponential moving average of a series and
// returns the most recent smoothed value, or nil if there is not enough data
// for the requested period.
func CalculateEMA(values []float64, period int) *float64 {
	series := EMASeries(values, period)
	if len(series) == 0 {
		return nil
	}

	result := series[len(series)-1]
	return &result
}

// EMASeries calculates the exponential moving average over a series.
//
// The first period-1 positions have no defined average; they are trimmed so
// the result contains only valid values, aligned to the tail of the input.
// Returns an empty slice if the input is shorter than the period.
func EMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return []float64{}
	}

	ema := talib.Ema(values, period)

	// talib pads the warm-up window with zeros; drop it
	valid := ema[period-1:]

	series := make([]float64, 0, len(valid))
	for _, v := range valid {
		if isNaN(v) {
			continue
		}
		series = append(series, v)
	}

	return series
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
