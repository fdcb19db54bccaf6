package formulas

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Variance(data, nil)
}

// Correlation calculates the Pearson correlation coefficient between two datasets
func Correlation(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// Herfindahl calculates the Herfindahl-Hirschman index from percentage shares.
//
// Shares are expressed in percent (0-100) and converted to fractions before
// squaring, so a single-position portfolio yields 1.0 and an equally weighted
// N-position portfolio yields 1/N.
func Herfindahl(sharesPercent []float64) float64 {
	if len(sharesPercent) == 0 {
		return 0
	}

	hhi := 0.0
	for _, share := range sharesPercent {
		fraction := share / 100.0
		hhi += fraction * fraction
	}

	return hhi
}

// EffectiveHoldings calculates the effective number of independent positions
// implied by a set of percentage shares (the inverse Herfindahl index).
// A portfolio of 10 equal positions scores 10; one dominated by a single
// position scores close to 1.
func EffectiveHoldings(sharesPercent []float64) float64 {
	hhi := Herfindahl(sharesPercent)
	if hhi == 0 {
		return 0
	}
	return 1.0 / hhi
}

// CumulativeShare calculates the combined percentage share of the n largest
// values. Returns the total of all shares when n exceeds the input length.
func CumulativeShare(sharesPercent []float64, n int) float64 {
	if len(sharesPercent) == 0 || n <= 0 {
		return 0
	}

	sorted := make([]float64, len(sharesPercent))
	copy(sorted, sharesPercent)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	if n > len(sorted) {
		n = len(sorted)
	}

	total := 0.0
	for _, share := range sorted[:n] {
		total += share
	}

	return total
}
