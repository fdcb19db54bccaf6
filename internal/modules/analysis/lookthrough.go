package analysis

import "sort"

// ComputeExposure blends direct holdings and ETF-implied indirect value into
// one exposure table per underlying company.
//
// Holdings that are themselves held ETFs (present in the constituent table)
// contribute nothing directly; their value is distributed to constituents in
// proportion to disclosed weight. Undisclosed weight is simply absent from
// the output — never fabricated into an entry. An ETF with no constituent
// data degrades to a direct position under its own ticker, so its value is
// not silently lost.
//
// Every ticker is canonicalized before grouping, so share classes merge into
// one entry with their sources concatenated. The full list is returned,
// sorted descending by percent; callers truncate for presentation.
func (e *Engine) ComputeExposure(holdings []Holding, constituents map[string][]ETFConstituent) []ExposureEntry {
	funds := normalizeFunds(constituents)

	entries := make(map[string]*ExposureEntry)
	order := make([]string, 0)

	add := func(ticker string, source ExposureSource) {
		key := normalize(ticker)
		entry, ok := entries[key]
		if !ok {
			entry = &ExposureEntry{Ticker: ticker}
			entries[key] = entry
			order = append(order, key)
		}
		entry.TotalExposureValue += source.Value
		entry.Sources = append(entry.Sources, source)
	}

	for _, h := range holdings {
		canonical := e.canonical.Canonicalize(h.Ticker)

		if list, ok := funds[normalize(canonical)]; ok && len(list) > 0 {
			// Held ETF: distribute value across disclosed constituents
			for _, c := range list {
				add(e.canonical.Canonicalize(c.Symbol), ExposureSource{
					Source: SourceETF,
					ETF:    h.Ticker,
					Value:  h.CurrentValue * c.WeightPercent / 100.0,
				})
			}
			continue
		}

		// Direct position (or opaque ETF without constituent data)
		add(canonical, ExposureSource{
			Source: SourceDirect,
			Value:  h.CurrentValue,
		})
	}

	grandTotal := 0.0
	for _, key := range order {
		grandTotal += entries[key].TotalExposureValue
	}

	result := make([]ExposureEntry, 0, len(order))
	for _, key := range order {
		entry := *entries[key]
		if grandTotal > 0 {
			entry.ExposurePercent = entry.TotalExposureValue / grandTotal * 100.0
		}
		result = append(result, entry)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ExposurePercent > result[j].ExposurePercent
	})

	return result
}

// TopEntries returns at most limit entries from an already sorted exposure
// list. A non-positive limit returns the list unchanged — truncation is a
// presentation concern.
func TopEntries(entries []ExposureEntry, limit int) []ExposureEntry {
	if limit <= 0 || limit >= len(entries) {
		return entries
	}
	return entries[:limit]
}
