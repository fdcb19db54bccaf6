// Package portfolio stores the current portfolio snapshot and produces the
// holdings view consumed by the analysis engine.
package portfolio

import "time"

// Position is one stored portfolio position. Quantity and LastPrice are kept
// when the upstream delivers them, so the live quote cache can revalue the
// position between refreshes; CurrentValue is authoritative otherwise.
type Position struct {
	Ticker       string    `json:"ticker"`
	Name         string    `json:"name,omitempty"`
	Quantity     float64   `json:"quantity"`
	LastPrice    float64   `json:"last_price"`
	CurrentValue float64   `json:"current_value"`
	UpdatedAt    time.Time `json:"updated_at"`
}
