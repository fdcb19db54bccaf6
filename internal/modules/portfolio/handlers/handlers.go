// Package handlers provides HTTP handlers for portfolio operations.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aristath/lens/internal/modules/portfolio"
	"github.com/rs/zerolog"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *portfolio.Service
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetPortfolio handles GET /api/portfolio
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	positions, err := h.service.Positions()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load portfolio")
		writeError(w, http.StatusInternalServerError, "failed to load portfolio")
		return
	}

	total := 0.0
	for _, p := range positions {
		total += p.CurrentValue
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"positions":   positions,
		"total_value": total,
	})
}

// HandlePutPortfolio handles PUT /api/portfolio (bulk replace)
func (h *Handler) HandlePutPortfolio(w http.ResponseWriter, r *http.Request) {
	var payload []portfolio.Position
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.service.Replace(payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"stored": len(payload)})
}

// HandleRefresh handles POST /api/portfolio/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Portfolio refresh failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if _, err := h.service.Revalue(); err != nil {
		h.log.Warn().Err(err).Msg("Revaluation after refresh failed")
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
