package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const checkTimeout = 2 * time.Second

// Check is one readiness probe. A failing critical check makes the service
// not ready; a failing non-critical check only degrades it.
type Check struct {
	Probe    func(ctx context.Context) error
	Name     string
	Critical bool
}

// HealthHandler provides HTTP health check endpoints for the risk service.
type HealthHandler struct {
	logger    *slog.Logger
	startTime time.Time
	service   string
	checks    []Check
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(service string, logger *slog.Logger, checks ...Check) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		startTime: time.Now(),
		service:   service,
		checks:    checks,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Checks  map[string]string `json:"checks"`
	Status  string            `json:"status"`
	Service string            `json:"service"`
}

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.service,
		Uptime:  time.Since(h.startTime).String(),
	})
}

// Readyz handles readiness probe requests.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	resp := ReadinessResponse{
		Status:  "ready",
		Service: h.service,
		Checks:  make(map[string]string, len(h.checks)),
	}
	status := http.StatusOK

	for _, c := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := c.Probe(ctx)
		cancel()

		if err == nil {
			resp.Checks[c.Name] = "ok"
			continue
		}

		resp.Checks[c.Name] = err.Error()
		h.logger.Warn("readiness check failed", "check", c.Name, "critical", c.Critical, "error", err)
		if c.Critical {
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
		} else if resp.Status == "ready" {
			resp.Status = "degraded"
		}
	}

	writeJSON(w, status, resp)
}
