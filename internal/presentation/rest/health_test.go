package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mrinal-Agrawal21/veera-app/internal/presentation/rest"
)

func serveHealth(t *testing.T, h *rest.HealthHandler, path string) (*httptest.ResponseRecorder, rest.ReadinessResponse) {
	t.Helper()
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp rest.ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func okProbe(context.Context) error { return nil }

func failingProbe(msg string) func(context.Context) error {
	return func(context.Context) error { return errors.New(msg) }
}

func TestHealthHandler_Healthz(t *testing.T) {
	h := rest.NewHealthHandler("veera", discardLogger(),
		rest.Check{Name: "database", Critical: true, Probe: failingProbe("down")})

	rec, resp := serveHealth(t, h, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code, "liveness ignores dependencies")
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "veera", resp.Service)
}

func TestHealthHandler_Readyz(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		h := rest.NewHealthHandler("veera", discardLogger(),
			rest.Check{Name: "database", Critical: true, Probe: okProbe},
			rest.Check{Name: "model", Probe: okProbe})

		rec, resp := serveHealth(t, h, "/readyz")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, map[string]string{"database": "ok", "model": "ok"}, resp.Checks)
	})

	t.Run("cold model only degrades", func(t *testing.T) {
		h := rest.NewHealthHandler("veera", discardLogger(),
			rest.Check{Name: "database", Critical: true, Probe: okProbe},
			rest.Check{Name: "model", Probe: failingProbe("model has not answered yet")})

		rec, resp := serveHealth(t, h, "/readyz")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "model has not answered yet", resp.Checks["model"])
	})

	t.Run("database failure is not ready", func(t *testing.T) {
		h := rest.NewHealthHandler("veera", discardLogger(),
			rest.Check{Name: "database", Critical: true, Probe: failingProbe("connection refused")},
			rest.Check{Name: "model", Probe: failingProbe("cold")})

		rec, resp := serveHealth(t, h, "/readyz")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "not_ready", resp.Status)
	})
}
