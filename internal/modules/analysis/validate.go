package analysis

import "fmt"

// ValidateHoldings rejects holdings that violate the core's preconditions:
// blank tickers and negative values. The core itself treats these as
// contract violations and does not re-verify them, so every ingestion
// boundary (HTTP handlers, the upstream client) runs this first.
func ValidateHoldings(holdings []Holding) error {
	for i, h := range holdings {
		if normalize(h.Ticker) == "" {
			return fmt.Errorf("holding %d has an empty ticker", i)
		}
		if h.CurrentValue < 0 {
			return fmt.Errorf("holding %s has a negative value: %v", h.Ticker, h.CurrentValue)
		}
	}
	return nil
}

// ValidateConstituents rejects constituent tables with blank symbols or
// weights outside [0,100].
func ValidateConstituents(constituents map[string][]ETFConstituent) error {
	for etf, list := range constituents {
		if normalize(etf) == "" {
			return fmt.Errorf("constituent table contains an empty ETF ticker")
		}
		for _, c := range list {
			if normalize(c.Symbol) == "" {
				return fmt.Errorf("ETF %s has a constituent with an empty symbol", etf)
			}
			if c.WeightPercent < 0 || c.WeightPercent > 100 {
				return fmt.Errorf("ETF %s constituent %s has weight %v outside [0,100]",
					etf, c.Symbol, c.WeightPercent)
			}
		}
	}
	return nil
}
