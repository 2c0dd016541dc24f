package dto

import (
	"time"

	"github.com/google/uuid"
)

// ClientRiskRequest is the snapshot posted by the mobile client. Every field
// is optional at the transport boundary.
type ClientRiskRequest struct {
	UserID       *string  `json:"userId"`
	Username     *string  `json:"username"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Hour         *int     `json:"hour"`
	CrimeDensity *float64 `json:"crime_density"`
	PoiCount     *int     `json:"poi_count"`
	IsNight      *bool    `json:"isNight"`
	IsIsolated   *bool    `json:"isIsolated"`
}

// ScoreResponse is returned to the client. Identity and location are not echoed.
type ScoreResponse struct {
	RiskLevel string `json:"riskLevel"`
	RiskScore int    `json:"riskScore"`
}

// IncidentResponse is the listing shape of a stored incident.
type IncidentResponse struct {
	CreatedAt    time.Time `json:"createdAt"`
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	RiskLevel    string    `json:"riskLevel"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	CrimeDensity float64   `json:"crimeDensity"`
	Hour         int       `json:"hour"`
	PoiCount     int       `json:"poiCount"`
	RiskScore    int       `json:"riskScore"`
	ID           uuid.UUID `json:"id"`
	Night        bool      `json:"night"`
	Isolated     bool      `json:"isolated"`
}

// UserSummaryResponse is one entry of the user listing.
type UserSummaryResponse struct {
	UserID    string  `json:"userId"`
	Username  string  `json:"username"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RiskScore int     `json:"riskScore"`
}
