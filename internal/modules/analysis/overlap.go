package analysis

import (
	"math"
	"sort"
)

// ComputeOverlap computes the pairwise weight overlap of the held ETFs.
//
// For every unordered pair of distinct funds, the shared holdings are the
// canonical tickers present in both constituent lists, each contributing
// min(weightA, weightB) — overlap is capped by the smaller position, which
// avoids double-counting when a shared holding is heavier in one fund.
// The pair's OverlapPercent is the sum of those contributions, in [0,100].
//
// The result is the complete upper triangle: every pair appears exactly
// once, zero-overlap pairs included, so downstream lookups work for either
// ordering. Output is independent of the input order of any two funds.
func (e *Engine) ComputeOverlap(etfTickers []string, constituents map[string][]ETFConstituent) []OverlapPair {
	funds := normalizeFunds(constituents)

	// Dedupe the held list, preserving first occurrence
	seen := make(map[string]bool)
	keys := make([]string, 0, len(etfTickers))
	display := make(map[string]string)

	for _, ticker := range etfTickers {
		canonical := e.canonical.Canonicalize(ticker)
		key := normalize(canonical)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
		display[key] = canonical
	}

	// Canonicalized weight map per fund; duplicate symbols that merge to the
	// same canonical ticker combine additively
	weights := make(map[string]map[string]float64, len(keys))
	for _, key := range keys {
		fund := make(map[string]float64)
		for _, c := range funds[key] {
			symbol := normalize(e.canonical.Canonicalize(c.Symbol))
			if symbol == "" {
				continue
			}
			fund[symbol] += c.WeightPercent
		}
		weights[key] = fund
	}

	pairs := make([]OverlapPair, 0, len(keys)*(len(keys)-1)/2)

	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			pairs = append(pairs, buildOverlapPair(
				display[keys[i]], display[keys[j]],
				weights[keys[i]], weights[keys[j]],
			))
		}
	}

	return pairs
}

// buildOverlapPair computes the shared-weight overlap of two funds.
func buildOverlapPair(etfA, etfB string, weightsA, weightsB map[string]float64) OverlapPair {
	shared := make([]SharedHolding, 0)
	total := 0.0

	for ticker, weightA := range weightsA {
		weightB, ok := weightsB[ticker]
		if !ok {
			continue
		}

		overlap := math.Min(weightA, weightB)
		shared = append(shared, SharedHolding{Ticker: ticker, OverlapPct: overlap})
		total += overlap
	}

	// Deterministic order: heaviest contribution first, ticker as tiebreaker
	sort.Slice(shared, func(i, j int) bool {
		if shared[i].OverlapPct != shared[j].OverlapPct {
			return shared[i].OverlapPct > shared[j].OverlapPct
		}
		return shared[i].Ticker < shared[j].Ticker
	})

	return OverlapPair{
		ETFA:           etfA,
		ETFB:           etfB,
		OverlapPercent: math.Min(total, 100.0),
		SharedHoldings: shared,
	}
}

// FindOverlap returns the overlap pair for two funds from a computed matrix,
// matching either ordering.
func FindOverlap(pairs []OverlapPair, etfA, etfB string) (OverlapPair, bool) {
	a := normalize(etfA)
	b := normalize(etfB)

	for _, pair := range pairs {
		pairA := normalize(pair.ETFA)
		pairB := normalize(pair.ETFB)
		if (pairA == a && pairB == b) || (pairA == b && pairB == a) {
			return pair, true
		}
	}

	return OverlapPair{}, false
}
