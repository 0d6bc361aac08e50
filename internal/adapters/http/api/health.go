package api

import (
	"net/http"

	"github.com/okian/simboard/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler serves liveness and readiness.
type HealthHandler struct {
	scrape http.Handler
	stats  StatsProvider
}

// NewHealthHandler creates a health handler. Readiness is read from the
// "started" entry of stats.
func NewHealthHandler(stats StatsProvider) *HealthHandler {
	return &HealthHandler{
		scrape: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
		stats:  stats,
	}
}

// HandleHealth handles GET /healthz by serving the Prometheus registry. A
// successful scrape doubles as the liveness signal.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.scrape.ServeHTTP(w, r)
}

// HandleReady handles GET /readyz: 200 once the ingestion workers run, 503
// before that.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, _ *http.Request) {
	if h.stats == nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", nil)
		return
	}
	if started, _ := h.stats.GetStats()["started"].(bool); !started {
		writeError(w, http.StatusServiceUnavailable, "not_ready", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
