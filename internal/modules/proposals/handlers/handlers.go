// Package handlers provides HTTP handlers for allocation runs and
// their proposals.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/optionpilot/internal/modules/proposals"
)

// Handler handles proposal HTTP requests
type Handler struct {
	service *proposals.Service
	repo    *proposals.Repository
	log     zerolog.Logger
}

// NewHandler creates a new proposals handler
func NewHandler(service *proposals.Service, repo *proposals.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		log:     log.With().Str("handler", "proposals").Logger(),
	}
}

// RegisterRoutes mounts the proposal routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/proposals/run", h.HandleRun)
	r.Get("/api/proposals/runs", h.HandleListRuns)
	r.Get("/api/proposals/runs/{runID}", h.HandleGetRun)
}

// HandleRun executes one allocation pass with the posted ideas
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req proposals.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Ideas) == 0 {
		h.writeError(w, http.StatusBadRequest, "at least one candidate idea is required")
		return
	}

	result, err := h.service.Run(r.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Msg("allocation run failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleListRuns returns recent run headers
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.repo.ListRuns(r.Context(), limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// HandleGetRun returns one run header plus its proposals
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	run, err := h.repo.GetRun(r.Context(), runID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		h.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	stored, err := h.repo.GetProposals(r.Context(), runID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run":       run,
		"proposals": stored,
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
