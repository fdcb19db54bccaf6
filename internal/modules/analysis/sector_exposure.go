package analysis

import "sort"

// ComputeSectorExposure sums portfolio market value per sector and normalizes
// to percentages rounded to one decimal place.
//
// The result is sorted descending by percentage; ties keep the insertion
// order of each sector's first occurrence. Zero-value holdings still claim a
// row for their sector (contributing 0%). A portfolio with no value returns
// an empty result rather than dividing by zero.
//
// Sector lookup uses the raw holding ticker: the sector map is keyed by
// listed ticker, not canonical identity.
func (e *Engine) ComputeSectorExposure(holdings []Holding) []SectorExposure {
	total := 0.0
	for _, h := range holdings {
		total += h.CurrentValue
	}

	if total <= 0 {
		return []SectorExposure{}
	}

	values := make(map[string]float64)
	order := make([]string, 0)

	for _, h := range holdings {
		sector := e.sectors.Resolve(h.Ticker)
		if _, seen := values[sector]; !seen {
			order = append(order, sector)
		}
		values[sector] += h.CurrentValue
	}

	result := make([]SectorExposure, 0, len(order))
	for _, sector := range order {
		result = append(result, SectorExposure{
			Sector:          sector,
			ExposurePercent: round(values[sector]/total*100, 1),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ExposurePercent > result[j].ExposurePercent
	})

	return result
}
