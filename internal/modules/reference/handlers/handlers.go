// Package handlers provides HTTP handlers for reference table curation.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aristath/lens/internal/modules/analysis"
	"github.com/aristath/lens/internal/modules/reference"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Rebuilder is notified after any reference table changes, so the analysis
// engine picks up the new tables.
type Rebuilder interface {
	Rebuild() error
}

// Handler handles reference HTTP requests
type Handler struct {
	repo      *reference.Repository
	service   *reference.Service
	rebuilder Rebuilder
	log       zerolog.Logger
}

// NewHandler creates a new reference handler
func NewHandler(repo *reference.Repository, service *reference.Service, rebuilder Rebuilder, log zerolog.Logger) *Handler {
	return &Handler{
		repo:      repo,
		service:   service,
		rebuilder: rebuilder,
		log:       log.With().Str("handler", "reference").Logger(),
	}
}

// HandleGetSectors handles GET /api/reference/sectors
func (h *Handler) HandleGetSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := h.repo.SectorMap()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load sector map")
		writeError(w, http.StatusInternalServerError, "failed to load sector map")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sectors": sectors})
}

// HandlePutSectors handles PUT /api/reference/sectors (bulk replace)
func (h *Handler) HandlePutSectors(w http.ResponseWriter, r *http.Request) {
	var payload map[string]string
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.repo.ReplaceSectorMap(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to replace sector map")
		writeError(w, http.StatusInternalServerError, "failed to replace sector map")
		return
	}

	h.rebuild()
	writeJSON(w, http.StatusOK, map[string]interface{}{"stored": len(payload)})
}

// HandleGetAliases handles GET /api/reference/aliases
func (h *Handler) HandleGetAliases(w http.ResponseWriter, r *http.Request) {
	aliases, err := h.repo.Aliases()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load ticker aliases")
		writeError(w, http.StatusInternalServerError, "failed to load ticker aliases")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"aliases": aliases})
}

// HandlePutAliases handles PUT /api/reference/aliases (bulk replace)
func (h *Handler) HandlePutAliases(w http.ResponseWriter, r *http.Request) {
	var payload map[string]string
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.repo.ReplaceAliases(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to replace ticker aliases")
		writeError(w, http.StatusInternalServerError, "failed to replace ticker aliases")
		return
	}

	h.rebuild()
	writeJSON(w, http.StatusOK, map[string]interface{}{"stored": len(payload)})
}

// HandleGetETFs handles GET /api/reference/etfs
func (h *Handler) HandleGetETFs(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.repo.ETFTickers()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list ETFs")
		writeError(w, http.StatusInternalServerError, "failed to list ETFs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"etfs": tickers})
}

// HandleGetConstituents handles GET /api/reference/etfs/{ticker}/constituents
func (h *Handler) HandleGetConstituents(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	constituents, err := h.repo.ConstituentsFor(ticker)
	if err != nil {
		h.log.Error().Err(err).Str("etf", ticker).Msg("Failed to load constituents")
		writeError(w, http.StatusInternalServerError, "failed to load constituents")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"etf":          ticker,
		"constituents": constituents,
	})
}

// HandlePutConstituents handles PUT /api/reference/etfs/{ticker}/constituents
func (h *Handler) HandlePutConstituents(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	var payload []analysis.ETFConstituent
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := analysis.ValidateConstituents(map[string][]analysis.ETFConstituent{ticker: payload}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.ReplaceConstituentsFor(ticker, payload); err != nil {
		h.log.Error().Err(err).Str("etf", ticker).Msg("Failed to replace constituents")
		writeError(w, http.StatusInternalServerError, "failed to replace constituents")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"etf":    ticker,
		"stored": len(payload),
	})
}

// HandleRefresh handles POST /api/reference/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Reference refresh failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.rebuild()
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (h *Handler) rebuild() {
	if h.rebuilder == nil {
		return
	}
	if err := h.rebuilder.Rebuild(); err != nil {
		h.log.Error().Err(err).Msg("Failed to rebuild analysis engine after reference change")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
