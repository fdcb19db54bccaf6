// Package handlers provides HTTP handlers for analysis snapshots.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aristath/lens/internal/modules/snapshots"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles snapshot HTTP requests
type Handler struct {
	service *snapshots.Service
	log     zerolog.Logger
}

// NewHandler creates a new snapshot handler
func NewHandler(service *snapshots.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "snapshots").Logger(),
	}
}

// HandleCreate handles POST /api/snapshots
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Capture()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to capture snapshot")
		writeError(w, http.StatusInternalServerError, "failed to capture snapshot")
		return
	}

	writeJSON(w, http.StatusCreated, snapshot)
}

// HandleList handles GET /api/snapshots?limit=N
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	list, err := h.service.List(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list snapshots")
		writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"snapshots": list})
}

// HandleGet handles GET /api/snapshots/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snapshot, err := h.service.Get(id)
	if err != nil {
		h.log.Error().Err(err).Str("snapshot", id).Msg("Failed to load snapshot")
		writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}
	if snapshot == nil {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
