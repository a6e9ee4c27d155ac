package metrics

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// HealthStatus is the scanner state exposed on /healthz.
type HealthStatus struct {
	mu sync.RWMutex

	StartedAt   time.Time
	LastCycleAt time.Time
	Cycles      int
	Paused      []string
	Sources     []string
}

// NewHealthStatus returns a default health status.
func NewHealthStatus(sources []string) *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
		Sources:   sources,
	}
}

// SetCycle stores the outcome of the latest cycle.
func (h *HealthStatus) SetCycle(at time.Time, paused []string) {
	p := append([]string(nil), paused...)
	sort.Strings(p)

	h.mu.Lock()
	h.LastCycleAt = at
	h.Cycles++
	h.Paused = p
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// No completed cycle yet is reported as starting, not as a failure.
	overallStatus := "healthy"
	if h.LastCycleAt.IsZero() {
		overallStatus = "starting"
	}

	lastCycle := ""
	if !h.LastCycleAt.IsZero() {
		lastCycle = h.LastCycleAt.UTC().Format(time.RFC3339)
	}

	paused := h.Paused
	if paused == nil {
		paused = []string{}
	}

	status := struct {
		Status      string   `json:"status"`
		Uptime      string   `json:"uptime"`
		LastCycleAt string   `json:"last_cycle_at"`
		Cycles      int      `json:"cycles"`
		PausedPairs []string `json:"paused_pairs"`
		Sources     []string `json:"sources"`
	}{
		Status:      overallStatus,
		Uptime:      time.Since(h.StartedAt).Round(time.Second).String(),
		LastCycleAt: lastCycle,
		Cycles:      h.Cycles,
		PausedPairs: paused,
		Sources:     h.Sources,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
