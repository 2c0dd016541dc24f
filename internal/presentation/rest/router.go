package rest

import (
	"log/slog"
	"net/http"
)

// RouterConfig holds the handlers served on the HTTP port.
type RouterConfig struct {
	Incidents *IncidentHandler
	Health    *HealthHandler
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// SOSLimiter throttles POST /api/sos per client when set.
	SOSLimiter *RateLimiter
	Logger     *slog.Logger
}

// NewRouter builds the service's HTTP handler with logging and panic
// recovery applied to every route.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	var sos func(http.Handler) http.Handler
	if cfg.SOSLimiter != nil {
		sos = RateLimitMiddleware(cfg.SOSLimiter)
	}
	cfg.Incidents.RegisterRoutes(mux, sos)

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(mux)
	}
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	return LoggingMiddleware(cfg.Logger)(RecoveryMiddleware(cfg.Logger)(mux))
}
