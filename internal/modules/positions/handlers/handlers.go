// Package handlers provides HTTP handlers for position inspection.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/optionpilot/internal/modules/positions"
)

// Handler handles position HTTP requests
type Handler struct {
	service     *positions.Service
	stopLossPct float64
	log         zerolog.Logger
}

// NewHandler creates a new positions handler
func NewHandler(service *positions.Service, stopLossPct float64, log zerolog.Logger) *Handler {
	return &Handler{
		service:     service,
		stopLossPct: stopLossPct,
		log:         log.With().Str("handler", "positions").Logger(),
	}
}

// RegisterRoutes mounts the position routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/positions", h.HandleList)
	r.Get("/api/positions/stops", h.HandleStopCandidates)
	r.Get("/api/positions/option-underlyings", h.HandleOptionUnderlyings)
}

// HandleList returns the current broker position snapshot
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Fetch(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to fetch positions")
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"positions": snapshot,
		"count":     len(snapshot),
	})
}

// HandleStopCandidates returns positions that have breached the
// stop-loss threshold. The configured threshold can be overridden with
// the stop_loss_pct query parameter.
func (h *Handler) HandleStopCandidates(w http.ResponseWriter, r *http.Request) {
	threshold := h.stopLossPct
	if v := r.URL.Query().Get("stop_loss_pct"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid stop_loss_pct: "+v)
			return
		}
		threshold = parsed
	}

	snapshot, err := h.service.Fetch(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to fetch positions")
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	flagged := positions.StopCandidates(snapshot, threshold)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"stop_loss_pct": threshold,
		"candidates":    flagged,
		"count":         len(flagged),
	})
}

// HandleOptionUnderlyings returns the underlyings of currently held
// option positions
func (h *Handler) HandleOptionUnderlyings(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Fetch(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to fetch positions")
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"underlyings": positions.OptionUnderlyings(snapshot),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{"error": message})
}
