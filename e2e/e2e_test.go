//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run against a deployed veerad (VEERA_URL) backed by a real
// database and model service.

var baseURL string

func TestMain(m *testing.M) {
	baseURL = os.Getenv("VEERA_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Wait for the service to be live.
	for i := 0; i < 30; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		time.Sleep(2 * time.Second)
	}

	os.Exit(m.Run())
}

func TestHealthCheck(t *testing.T) {
	resp, err := http.Get(baseURL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestSOSFlow(t *testing.T) {
	userID := "e2e-" + uuid.NewString()

	// Step 1: raise an SOS.
	resp := postJSON(t, "/api/sos", map[string]any{
		"userId":        userID,
		"username":      "e2e",
		"latitude":      12.97,
		"longitude":     77.59,
		"hour":          23,
		"crime_density": 0.7,
		"poi_count":     2,
		"isNight":       true,
		"isIsolated":    false,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var score struct {
		RiskLevel string `json:"riskLevel"`
		RiskScore int    `json:"riskScore"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&score))
	assert.Contains(t, []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}, score.RiskLevel)

	// Step 2: the incident shows up in the user's history.
	var history []map[string]any
	getJSON(t, fmt.Sprintf("/api/user/%s", userID), &history)
	require.Len(t, history, 1)
	assert.Equal(t, userID, history[0]["userId"])
	assert.Equal(t, score.RiskLevel, history[0]["riskLevel"])

	// Step 3: and in the user listing.
	var users []map[string]any
	getJSON(t, "/api/user", &users)
	found := false
	for _, u := range users {
		if u["userId"] == userID {
			found = true
		}
	}
	assert.True(t, found, "user %s missing from /api/user", userID)
}

func TestMalformedSOSIsRejected(t *testing.T) {
	resp, err := http.Post(baseURL+"/api/sos", "application/json", bytes.NewBufferString(`{"userId":`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, path string, out any) {
	t.Helper()
	resp, err := http.Get(baseURL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
