package analysis

// FallbackSector is returned for any ticker absent from the sector map.
// This is the defined default, not an error.
const FallbackSector = "Other"

// SectorResolver maps tickers to sector names. Lookups are case-insensitive
// and total: unknown tickers resolve to FallbackSector.
type SectorResolver struct {
	sectors map[string]string
}

// NewSectorResolver builds a resolver from a ticker -> sector table.
// Keys are normalized once here so lookups are exact-match.
func NewSectorResolver(sectorMap map[string]string) *SectorResolver {
	sectors := make(map[string]string, len(sectorMap))
	for ticker, sector := range sectorMap {
		key := normalize(ticker)
		if key == "" || sector == "" {
			continue
		}
		sectors[key] = sector
	}

	return &SectorResolver{sectors: sectors}
}

// Resolve returns the sector for a ticker, or FallbackSector when unknown.
func (r *SectorResolver) Resolve(ticker string) string {
	if sector, ok := r.sectors[normalize(ticker)]; ok {
		return sector
	}
	return FallbackSector
}

// Size returns the number of mapped tickers.
func (r *SectorResolver) Size() int {
	return len(r.sectors)
}
