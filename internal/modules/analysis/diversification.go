package analysis

import "github.com/aristath/lens/pkg/formulas"

// MeasureDiversification summarizes how concentrated the look-through
// exposure table is: Herfindahl index, the effective number of independent
// positions it implies, and the cumulative share of the largest entries.
func MeasureDiversification(entries []ExposureEntry) Diversification {
	shares := make([]float64, 0, len(entries))
	for _, entry := range entries {
		shares = append(shares, entry.ExposurePercent)
	}

	return Diversification{
		Herfindahl:        formulas.Herfindahl(shares),
		EffectiveHoldings: formulas.EffectiveHoldings(shares),
		MeanPercent:       formulas.Mean(shares),
		StdDevPercent:     formulas.StdDev(shares),
		Top5Percent:       formulas.CumulativeShare(shares, 5),
		Top10Percent:      formulas.CumulativeShare(shares, 10),
		EntryCount:        len(entries),
	}
}
