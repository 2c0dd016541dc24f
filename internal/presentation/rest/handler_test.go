package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/port"
	"github.com/Mrinal-Agrawal21/veera-app/internal/presentation/rest"
)

const fullSOSBody = `{
	"userId": "u1",
	"username": "asha",
	"latitude": 12.9,
	"longitude": 77.6,
	"hour": 23,
	"crime_density": 0.8,
	"poi_count": 1,
	"isNight": true,
	"isIsolated": true
}`

func highRisk(context.Context, port.ModelRiskRequest) (port.ModelRiskResponse, error) {
	return port.ModelRiskResponse{RiskScore: ptr(87), RiskLevel: ptr("HIGH")}, nil
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSubmitSOS(t *testing.T) {
	t.Run("returns score and level", func(t *testing.T) {
		repo := &memoryRepository{}
		router := newTestRouter(&stubModel{scoreFunc: highRisk}, repo, nil)

		rec := doRequest(t, router, http.MethodPost, "/api/sos", fullSOSBody)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"riskScore":87,"riskLevel":"HIGH"}`, rec.Body.String())
		assert.Equal(t, 1, repo.count())
	})

	t.Run("malformed JSON is rejected before scoring", func(t *testing.T) {
		scorer := &stubModel{scoreFunc: highRisk}
		repo := &memoryRepository{}
		router := newTestRouter(scorer, repo, nil)

		for _, body := range []string{`{"userId":`, `not json`, `{"hour":"late"}`, `{} {}`} {
			rec := doRequest(t, router, http.MethodPost, "/api/sos", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.JSONEq(t, `{"error":"malformed request body"}`, rec.Body.String())
		}
		assert.Zero(t, scorer.calls)
		assert.Zero(t, repo.count())
	})

	t.Run("data after the object is rejected", func(t *testing.T) {
		scorer := &stubModel{scoreFunc: highRisk}
		repo := &memoryRepository{}
		router := newTestRouter(scorer, repo, nil)

		for _, body := range []string{
			`{"userId":"u1"}}`,
			`{"userId":"u1"}]`,
			`{"userId":"u1"} {"userId":"u2"}`,
			`{"userId":"u1"} 7`,
		} {
			rec := doRequest(t, router, http.MethodPost, "/api/sos", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.JSONEq(t, `{"error":"malformed request body"}`, rec.Body.String())
		}
		assert.Zero(t, scorer.calls)
		assert.Zero(t, repo.count())
	})

	t.Run("trailing whitespace is fine", func(t *testing.T) {
		repo := &memoryRepository{}
		router := newTestRouter(&stubModel{scoreFunc: highRisk}, repo, nil)

		rec := doRequest(t, router, http.MethodPost, "/api/sos", "{\"userId\":\"u1\"}\n\t ")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, repo.count())
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		scorer := &stubModel{scoreFunc: highRisk}
		repo := &memoryRepository{}
		router := newTestRouter(scorer, repo, nil)

		body := `{"userId":"` + strings.Repeat("a", 70<<10) + `"}`
		rec := doRequest(t, router, http.MethodPost, "/api/sos", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"malformed request body"}`, rec.Body.String())
		assert.Zero(t, scorer.calls)
		assert.Zero(t, repo.count())
	})

	t.Run("empty body is an empty request", func(t *testing.T) {
		scorer := &stubModel{scoreFunc: highRisk}
		repo := &memoryRepository{}
		router := newTestRouter(scorer, repo, nil)

		rec := doRequest(t, router, http.MethodPost, "/api/sos", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, scorer.calls)
		assert.Equal(t, 1, repo.count())
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		router := newTestRouter(&stubModel{scoreFunc: highRisk}, &memoryRepository{}, nil)

		rec := doRequest(t, router, http.MethodPost, "/api/sos", `{"userId":"u1","battery":12}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("model failure is 503 and nothing is stored", func(t *testing.T) {
		repo := &memoryRepository{}
		scorer := &stubModel{scoreFunc: func(context.Context, port.ModelRiskRequest) (port.ModelRiskResponse, error) {
			return port.ModelRiskResponse{}, errors.New("model API error (status 503)")
		}}
		router := newTestRouter(scorer, repo, nil)

		rec := doRequest(t, router, http.MethodPost, "/api/sos", fullSOSBody)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Zero(t, repo.count())
	})

	t.Run("client hang-up is not reported as a model outage", func(t *testing.T) {
		repo := &memoryRepository{}
		scorer := &stubModel{scoreFunc: func(context.Context, port.ModelRiskRequest) (port.ModelRiskResponse, error) {
			return port.ModelRiskResponse{}, fmt.Errorf("model request abandoned: %w", context.Canceled)
		}}
		router := newTestRouter(scorer, repo, nil)

		rec := doRequest(t, router, http.MethodPost, "/api/sos", fullSOSBody)

		assert.NotEqual(t, http.StatusServiceUnavailable, rec.Code)
		assert.Empty(t, rec.Body.String(), "nobody is listening for a response")
		assert.Zero(t, repo.count())
	})

	t.Run("storage failure tells the client nothing was stored", func(t *testing.T) {
		repo := &memoryRepository{appendErr: errors.New("disk full")}
		router := newTestRouter(&stubModel{scoreFunc: highRisk}, repo, nil)

		rec := doRequest(t, router, http.MethodPost, "/api/sos", fullSOSBody)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"incident could not be stored"}`, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "disk full")
	})

	t.Run("rate limit applies per client", func(t *testing.T) {
		router := newTestRouter(&stubModel{scoreFunc: highRisk}, &memoryRepository{}, rest.NewRateLimiter(0.001, 1))

		first := doRequest(t, router, http.MethodPost, "/api/sos", fullSOSBody)
		second := doRequest(t, router, http.MethodPost, "/api/sos", fullSOSBody)

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.Equal(t, "1", second.Header().Get("Retry-After"))

		other := httptest.NewRequest(http.MethodPost, "/api/sos", strings.NewReader(fullSOSBody))
		other.RemoteAddr = "203.0.113.9:5555"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, other)
		assert.Equal(t, http.StatusOK, rec.Code)

		list := doRequest(t, router, http.MethodGet, "/api/sos", "")
		assert.Equal(t, http.StatusOK, list.Code, "listing is not throttled")
	})
}

func TestListEndpoints(t *testing.T) {
	t.Run("empty store lists as empty array", func(t *testing.T) {
		router := newTestRouter(&stubModel{}, &memoryRepository{}, nil)

		for _, path := range []string{"/api/sos", "/api/user/u1", "/api/user"} {
			rec := doRequest(t, router, http.MethodGet, path, "")

			require.Equal(t, http.StatusOK, rec.Code, path)
			assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()), path)
		}
	})

	t.Run("history and per-user filtering", func(t *testing.T) {
		repo := &memoryRepository{}
		router := newTestRouter(&stubModel{scoreFunc: highRisk}, repo, nil)

		for _, body := range []string{
			`{"userId":"u1","username":"asha","latitude":1.5}`,
			`{"userId":"u2","username":"meera"}`,
			`{"userId":"u1","username":"asha","latitude":2.5}`,
		} {
			require.Equal(t, http.StatusOK, doRequest(t, router, http.MethodPost, "/api/sos", body).Code)
		}

		var all []map[string]any
		rec := doRequest(t, router, http.MethodGet, "/api/sos", "")
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
		require.Len(t, all, 3)
		first := all[0]
		for _, key := range []string{"id", "userId", "username", "latitude", "longitude", "hour",
			"crimeDensity", "poiCount", "night", "isolated", "riskScore", "riskLevel", "createdAt"} {
			assert.Contains(t, first, key)
		}
		assert.Equal(t, "HIGH", first["riskLevel"])

		var mine []map[string]any
		rec = doRequest(t, router, http.MethodGet, "/api/user/u1", "")
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
		require.Len(t, mine, 2)
		assert.Equal(t, "u1", mine[0]["userId"])
		assert.Equal(t, "u1", mine[1]["userId"])

		var users []map[string]any
		rec = doRequest(t, router, http.MethodGet, "/api/user", "")
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		require.Len(t, users, 2)
		assert.Equal(t, "u1", users[0]["userId"])
		assert.Equal(t, 2.5, users[0]["latitude"])
	})

	t.Run("storage failure on listing is 500", func(t *testing.T) {
		router := newTestRouter(&stubModel{}, &memoryRepository{listErr: errors.New("timeout")}, nil)

		rec := doRequest(t, router, http.MethodGet, "/api/sos", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
	})

	t.Run("wrong method is rejected by the mux", func(t *testing.T) {
		router := newTestRouter(&stubModel{}, &memoryRepository{}, nil)

		rec := doRequest(t, router, http.MethodDelete, "/api/sos", "")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
