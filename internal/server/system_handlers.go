package server

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/optionpilot/internal/database"
)

// SystemHandlers serves health and system status endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	proposalsDB *database.DB
	cacheDB     *database.DB
	startTime   time.Time
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(log zerolog.Logger, dataDir string, proposalsDB, cacheDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		dataDir:     dataDir,
		proposalsDB: proposalsDB,
		cacheDB:     cacheDB,
		startTime:   time.Now(),
	}
}

// HandleHealth is a fast liveness check: both databases must answer a
// ping. Integrity checks are left to the status endpoint.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	for _, db := range []*database.DB{h.proposalsDB, h.cacheDB} {
		if err := db.QuickCheck(r.Context()); err != nil {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("health check failed")
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	h.writeJSON(w, code, map[string]interface{}{
		"status": status,
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HandleSystemStatus returns process and host resource usage
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.getSystemStats()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"uptime":         time.Since(h.startTime).Round(time.Second).String(),
		"cpu_percent":    cpuPct,
		"memory_percent": memPct,
		"goroutines":     runtime.NumGoroutine(),
		"heap_alloc_mb":  float64(ms.HeapAlloc) / 1024 / 1024,
		"go_version":     runtime.Version(),
		"data_dir":       h.dataDir,
	})
}

// HandleDatabaseStats reports per-database file size and integrity
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	stats := make([]map[string]interface{}, 0, 2)
	for _, db := range []*database.DB{h.proposalsDB, h.cacheDB} {
		entry := map[string]interface{}{
			"name": db.Name(),
			"path": db.Path(),
		}
		if info, err := os.Stat(db.Path()); err == nil {
			entry["size_mb"] = float64(info.Size()) / 1024 / 1024
		}
		if err := db.HealthCheck(r.Context()); err != nil {
			entry["healthy"] = false
			entry["error"] = err.Error()
		} else {
			entry["healthy"] = true
		}
		stats = append(stats, entry)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"databases": stats})
}

// getSystemStats returns host CPU and memory utilization percentages.
// Failures degrade to zero so the status endpoint never errors.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	var cpuPct, memPct float64

	if pcts, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(pcts) > 0 {
		cpuPct = pcts[0]
	}
	if stat, err := mem.VirtualMemory(); err == nil {
		memPct = stat.UsedPercent
	}

	return cpuPct, memPct
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
	}
}
