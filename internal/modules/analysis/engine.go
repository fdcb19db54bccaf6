package analysis

import (
	"math"
	"strings"
)

// Engine bundles the static lookup tables (sector map, canonical aliases)
// behind the analytics operations. Constituent tables vary per pass and are
// passed per call.
type Engine struct {
	sectors   *SectorResolver
	canonical *Canonicalizer
}

// NewEngine creates an engine from the injected lookup tables.
func NewEngine(sectorMap, aliasMap map[string]string) *Engine {
	return &Engine{
		sectors:   NewSectorResolver(sectorMap),
		canonical: NewCanonicalizer(aliasMap),
	}
}

// Sectors returns the engine's sector resolver.
func (e *Engine) Sectors() *SectorResolver {
	return e.sectors
}

// Canonical returns the engine's ticker canonicalizer.
func (e *Engine) Canonical() *Canonicalizer {
	return e.canonical
}

// normalize uppercases and trims a ticker for exact-match map lookups.
func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// round rounds a value to the given number of decimal places
func round(val float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(val*multiplier) / multiplier
}

// normalizeFunds rebuilds a constituent table keyed by normalized ETF ticker,
// so membership checks against canonicalized holdings are exact-match.
func normalizeFunds(constituents map[string][]ETFConstituent) map[string][]ETFConstituent {
	funds := make(map[string][]ETFConstituent, len(constituents))
	for etf, list := range constituents {
		key := normalize(etf)
		if key == "" {
			continue
		}
		funds[key] = append(funds[key], list...)
	}
	return funds
}
