// Package handlers exposes the sleeve registry over HTTP.
package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/optionpilot/internal/modules/sleeves"
)

// Handler handles sleeve registry HTTP requests
type Handler struct {
	registry sleeves.Registry
	log      zerolog.Logger
}

// NewHandler creates a new sleeves handler
func NewHandler(registry sleeves.Registry, log zerolog.Logger) *Handler {
	return &Handler{
		registry: registry,
		log:      log.With().Str("handler", "sleeves").Logger(),
	}
}

// RegisterRoutes mounts the sleeve routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/sleeves", h.HandleList)
	r.Get("/api/sleeves/{name}/universe", h.HandleUniverse)
}

type sleeveInfo struct {
	Name           string             `json:"name"`
	Aliases        []string           `json:"aliases,omitempty"`
	RiskBudgetPct  float64            `json:"risk_budget_pct"`
	FeatureWeights map[string]float64 `json:"feature_weights,omitempty"`
}

// HandleList returns the canonical sleeve definitions
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	seen := make(map[string]bool)
	var out []sleeveInfo
	for _, cfg := range h.registry {
		if seen[cfg.Name] {
			continue
		}
		seen[cfg.Name] = true
		out = append(out, sleeveInfo{
			Name:           cfg.Name,
			Aliases:        cfg.Aliases,
			RiskBudgetPct:  cfg.RiskBudgetPct,
			FeatureWeights: cfg.FeatureWeights,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"sleeves": out})
}

// HandleUniverse returns a sleeve's ticker universe. The basket query
// parameter selects the equity basket for sleeves that honor it.
func (h *Handler) HandleUniverse(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	resolved, err := h.registry.Resolve([]string{name})
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	cfg := resolved[0]
	basket := r.URL.Query().Get("basket")
	tickers := cfg.Universe(basket)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sleeve":  cfg.Name,
		"basket":  basket,
		"tickers": tickers,
		"count":   len(tickers),
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
