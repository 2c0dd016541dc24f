package port

import (
	"context"
	"errors"
)

// ErrModelUnavailable marks a scoring call that failed for good: a client
// error, a transport failure, or a server error that survived the retry.
var ErrModelUnavailable = errors.New("risk model unavailable")

// ModelRiskRequest is the identity-free feature vector sent to the model.
// Absent values are sent as JSON null.
type ModelRiskRequest struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Hour         *int     `json:"hour"`
	CrimeDensity *float64 `json:"crime_density"`
	PoiCount     *int     `json:"poi_count"`
	IsNight      *bool    `json:"isNight"`
	IsIsolated   *bool    `json:"isIsolated"`
}

// ModelRiskResponse is the model's answer. Either field may be missing.
type ModelRiskResponse struct {
	RiskScore *int    `json:"risk_score"`
	RiskLevel *string `json:"risk_level"`
}

// RiskModelClient scores a situational snapshot with the external model.
type RiskModelClient interface {
	Score(ctx context.Context, req ModelRiskRequest) (ModelRiskResponse, error)
}
