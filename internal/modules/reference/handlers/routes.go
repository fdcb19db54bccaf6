package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all reference routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reference", func(r chi.Router) {
		r.Get("/sectors", h.HandleGetSectors)
		r.Put("/sectors", h.HandlePutSectors)
		r.Get("/aliases", h.HandleGetAliases)
		r.Put("/aliases", h.HandlePutAliases)
		r.Get("/etfs", h.HandleGetETFs)
		r.Route("/etfs/{ticker}", func(r chi.Router) {
			r.Get("/constituents", h.HandleGetConstituents)
			r.Put("/constituents", h.HandlePutConstituents)
		})
		r.Post("/refresh", h.HandleRefresh)
	})
}
