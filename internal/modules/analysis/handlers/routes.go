package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all analysis routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analysis", func(r chi.Router) {
		r.Get("/sector-exposure", h.HandleSectorExposure) // Sector breakdown
		r.Get("/exposure", h.HandleExposure)              // Look-through exposure (top-N)
		r.Get("/overlap", h.HandleOverlap)                // Pairwise ETF overlap matrix
		r.Get("/concentration", h.HandleConcentration)    // Concentration warnings
		r.Get("/diversification", h.HandleDiversification)
		r.Post("/preview", h.HandlePreview) // Ad-hoc what-if pass
	})
}
