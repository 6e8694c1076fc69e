package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/bonus/pkg/metrics"
)

// ReadinessProvider reports whether the service can answer quotes.
type ReadinessProvider interface {
	Ready() bool
}

// HealthHandler handles health and readiness requests.
type HealthHandler struct {
	readiness ReadinessProvider
	metrics   http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(readiness ReadinessProvider) *HealthHandler {
	return &HealthHandler{
		readiness: readiness,
		metrics:   promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz requests with the service metrics.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// HandleReady handles GET /readyz requests.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, _ *http.Request) {
	if h.readiness == nil || !h.readiness.Ready() {
		writeError(w, http.StatusServiceUnavailable, "not_ready", NewKind("api.readyz", ErrNotReady))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
