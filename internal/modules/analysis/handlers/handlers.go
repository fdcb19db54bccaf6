// Package handlers provides HTTP handlers for the analysis endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aristath/lens/internal/modules/analysis"
	"github.com/rs/zerolog"
)

// Handler handles analysis HTTP requests
type Handler struct {
	service *analysis.Service
	log     zerolog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(service *analysis.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analysis").Logger(),
	}
}

// HandleSectorExposure handles GET /api/analysis/sector-exposure
func (h *Handler) HandleSectorExposure(w http.ResponseWriter, r *http.Request) {
	exposure, err := h.service.SectorExposure()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute sector exposure")
		writeError(w, http.StatusInternalServerError, "failed to compute sector exposure")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sectors": exposure})
}

// HandleExposure handles GET /api/analysis/exposure?limit=N
func (h *Handler) HandleExposure(w http.ResponseWriter, r *http.Request) {
	limit := h.service.DefaultLimit()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	entries, err := h.service.Exposure(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute exposure")
		writeError(w, http.StatusInternalServerError, "failed to compute exposure")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"limit":   limit,
	})
}

// HandleOverlap handles GET /api/analysis/overlap
func (h *Handler) HandleOverlap(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.service.Overlap()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute overlap")
		writeError(w, http.StatusInternalServerError, "failed to compute overlap")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"pairs": pairs})
}

// HandleConcentration handles GET /api/analysis/concentration?threshold=X
func (h *Handler) HandleConcentration(w http.ResponseWriter, r *http.Request) {
	threshold := 0.0 // service substitutes the configured default
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "threshold must be a positive number")
			return
		}
		threshold = parsed
	}

	warnings, err := h.service.Concentration(threshold)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to detect concentration")
		writeError(w, http.StatusInternalServerError, "failed to detect concentration")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"warnings": warnings})
}

// HandleDiversification handles GET /api/analysis/diversification
func (h *Handler) HandleDiversification(w http.ResponseWriter, r *http.Request) {
	div, err := h.service.Diversification()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to measure diversification")
		writeError(w, http.StatusInternalServerError, "failed to measure diversification")
		return
	}

	writeJSON(w, http.StatusOK, div)
}

// previewRequest is the payload for ad-hoc what-if analysis.
type previewRequest struct {
	Holdings     []analysis.Holding                   `json:"holdings"`
	Constituents map[string][]analysis.ETFConstituent `json:"constituents"`
	Threshold    float64                              `json:"threshold"`
	Limit        int                                  `json:"limit"`
}

// HandlePreview handles POST /api/analysis/preview
//
// Runs the full pass over a request-supplied portfolio without touching the
// stored one. This is the boundary where the core's preconditions (ticker
// present, non-negative values, weights in range) are enforced.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := analysis.ValidateHoldings(req.Holdings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := analysis.ValidateConstituents(req.Constituents); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.service.Preview(req.Holdings, req.Constituents, req.Threshold, req.Limit)
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
