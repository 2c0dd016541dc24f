package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/Mrinal-Agrawal21/veera-app/pkg/events"
)

const (
	// AggregateTypeIncident is the aggregate type of all incident events.
	AggregateTypeIncident = "Incident"

	// EventTypeIncidentRecorded is emitted once per persisted incident.
	EventTypeIncidentRecorded = "incident.recorded"

	// EventTypeHighRiskDetected is emitted when an incident is HIGH or CRITICAL.
	EventTypeHighRiskDetected = "incident.high_risk.detected"
)

// IncidentRecorded is the payload published when an incident has been stored.
type IncidentRecorded struct {
	RecordedAt time.Time `json:"recorded_at"`
	UserID     string    `json:"user_id"`
	RiskLevel  string    `json:"risk_level"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RiskScore  int       `json:"risk_score"`
	IncidentID uuid.UUID `json:"incident_id"`
}

// HighRiskDetected is the payload published for elevated incidents so that
// responders can be alerted.
type HighRiskDetected struct {
	DetectedAt time.Time `json:"detected_at"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	RiskLevel  string    `json:"risk_level"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RiskScore  int       `json:"risk_score"`
	Night      bool      `json:"night"`
	Isolated   bool      `json:"isolated"`
	IncidentID uuid.UUID `json:"incident_id"`
}

// NewIncidentRecorded wraps the payload in a domain event.
func NewIncidentRecorded(data IncidentRecorded) (events.DomainEvent, error) {
	return events.New(EventTypeIncidentRecorded, events.Aggregate{Type: AggregateTypeIncident, ID: data.IncidentID}, data)
}

// NewHighRiskDetected wraps the payload in a domain event.
func NewHighRiskDetected(data HighRiskDetected) (events.DomainEvent, error) {
	return events.New(EventTypeHighRiskDetected, events.Aggregate{Type: AggregateTypeIncident, ID: data.IncidentID}, data)
}
