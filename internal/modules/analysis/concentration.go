package analysis

import "fmt"

// DefaultConcentrationThreshold is the exposure percent at which a warning
// fires when the caller does not supply a threshold.
const DefaultConcentrationThreshold = 10.0

// DetectConcentration flags every exposure entry whose percent meets or
// exceeds the threshold. The boundary is inclusive: an entry at exactly the
// threshold triggers a warning. A non-positive threshold selects the
// default. The input is never mutated.
func DetectConcentration(entries []ExposureEntry, thresholdPercent float64) []ConcentrationWarning {
	threshold := thresholdPercent
	if threshold <= 0 {
		threshold = DefaultConcentrationThreshold
	}

	warnings := make([]ConcentrationWarning, 0)

	for _, entry := range entries {
		if entry.ExposurePercent >= threshold {
			warnings = append(warnings, ConcentrationWarning{
				Ticker:          entry.Ticker,
				ExposurePercent: entry.ExposurePercent,
				Message: fmt.Sprintf("%s accounts for %.1f%% of portfolio exposure (threshold %.1f%%)",
					entry.Ticker, entry.ExposurePercent, threshold),
			})
		}
	}

	return warnings
}
