// Package analysis implements the exposure and overlap analytics core:
// sector exposure aggregation, look-through exposure across ETF constituents,
// pairwise ETF overlap, and concentration detection.
//
// Everything in this package is a pure, synchronous computation over in-memory
// inputs. Lookup tables are injected at construction and never mutated, so a
// single Engine is safe for concurrent use.
package analysis

// Holding is one portfolio position as consumed by the analytics core:
// a ticker and its current market value in account currency.
// Values are non-negative by contract; validation happens at the boundary.
type Holding struct {
	Ticker       string  `json:"ticker"`
	CurrentValue float64 `json:"current_value"`
}

// ETFConstituent is one underlying holding of one fund as of its last
// disclosed date. A fund's constituents sum to at most 100 percent; the
// remainder is undisclosed.
type ETFConstituent struct {
	ETFTicker     string  `json:"etf_ticker"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	WeightPercent float64 `json:"weight_percent"`
}

// SectorExposure is one row of the portfolio's sector breakdown.
type SectorExposure struct {
	Sector          string  `json:"sector"`
	ExposurePercent float64 `json:"exposure_percent"`
}

// Exposure source kinds.
const (
	SourceDirect = "direct"
	SourceETF    = "etf"
)

// ExposureSource records where part of a ticker's exposure came from:
// a direct position, or a slice of a held ETF.
type ExposureSource struct {
	Source string  `json:"source"`
	ETF    string  `json:"etf,omitempty"`
	Value  float64 `json:"value"`
}

// ExposureEntry is the blended direct+indirect exposure to one underlying
// company, keyed by canonical ticker. Rebuilt on every analysis pass.
type ExposureEntry struct {
	Ticker             string           `json:"ticker"`
	TotalExposureValue float64          `json:"total_exposure_value"`
	ExposurePercent    float64          `json:"exposure_percent"`
	Sources            []ExposureSource `json:"sources"`
}

// SharedHolding is one constituent held by both funds of an overlap pair,
// contributing the smaller of its two weights.
type SharedHolding struct {
	Ticker     string  `json:"ticker"`
	OverlapPct float64 `json:"overlap_pct"`
}

// OverlapPair is the weight overlap between two held ETFs.
type OverlapPair struct {
	ETFA           string          `json:"etf_a"`
	ETFB           string          `json:"etf_b"`
	OverlapPercent float64         `json:"overlap_percent"`
	SharedHoldings []SharedHolding `json:"shared_holdings"`
}

// ConcentrationWarning flags an underlying company whose blended exposure
// crossed the risk threshold.
type ConcentrationWarning struct {
	Ticker          string  `json:"ticker"`
	ExposurePercent float64 `json:"exposure_percent"`
	Message         string  `json:"message"`
}

// Diversification summarizes how spread out the look-through exposure is.
type Diversification struct {
	Herfindahl        float64 `json:"herfindahl"`
	EffectiveHoldings float64 `json:"effective_holdings"`
	MeanPercent       float64 `json:"mean_percent"`
	StdDevPercent     float64 `json:"stddev_percent"`
	Top5Percent       float64 `json:"top5_percent"`
	Top10Percent      float64 `json:"top10_percent"`
	EntryCount        int     `json:"entry_count"`
}
