// Package handlers provides HTTP handlers for exposure history and trends.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aristath/lens/internal/modules/history"
	"github.com/rs/zerolog"
)

const defaultWindowDays = 90

// Handler handles history HTTP requests
type Handler struct {
	db     *history.HistoryDB
	trends *history.TrendsService
	log    zerolog.Logger
}

// NewHandler creates a new history handler
func NewHandler(db *history.HistoryDB, trends *history.TrendsService, log zerolog.Logger) *Handler {
	return &Handler{
		db:     db,
		trends: trends,
		log:    log.With().Str("handler", "history").Logger(),
	}
}

// HandleSectors handles GET /api/history/sectors?sector=&days=
func (h *Handler) HandleSectors(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(w, r, "days", defaultWindowDays)
	if !ok {
		return
	}

	sector := r.URL.Query().Get("sector")

	var points []history.SectorPoint
	var err error
	if sector != "" {
		points, err = h.db.SectorSeries(sector, days)
	} else {
		points, err = h.db.AllSeries(days)
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load sector history")
		writeError(w, http.StatusInternalServerError, "failed to load sector history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"days":   days,
		"points": points,
	})
}

// HandleTrends handles GET /api/history/trends?days=&period=
func (h *Handler) HandleTrends(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(w, r, "days", defaultWindowDays)
	if !ok {
		return
	}

	period, ok := queryInt(w, r, "period", history.DefaultSmoothingPeriod)
	if !ok {
		return
	}

	trends, err := h.trends.Compute(days, period)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute trends")
		writeError(w, http.StatusInternalServerError, "failed to compute trends")
		return
	}

	writeJSON(w, http.StatusOK, trends)
}

func queryInt(w http.ResponseWriter, r *http.Request, key string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		writeError(w, http.StatusBadRequest, key+" must be a positive integer")
		return 0, false
	}

	return parsed, true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
