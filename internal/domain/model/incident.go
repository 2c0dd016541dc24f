package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/event"
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/valueobject"
	"github.com/Mrinal-Agrawal21/veera-app/pkg/events"
)

// Incident is one scored safety-risk event: who, where, the environment at
// the time, and what the model said. Incidents are immutable once built.
type Incident struct {
	events.Buffer

	createdAt    time.Time
	riskLevel    valueobject.RiskLevel
	userID       string
	username     string
	latitude     float64
	longitude    float64
	crimeDensity float64
	hour         int
	poiCount     int
	riskScore    int
	id           uuid.UUID
	night        bool
	isolated     bool
}

// IncidentParams carries the values for NewIncident.
type IncidentParams struct {
	RiskLevel    valueobject.RiskLevel
	UserID       string
	Username     string
	Latitude     float64
	Longitude    float64
	CrimeDensity float64
	Hour         int
	PoiCount     int
	RiskScore    int
	Night        bool
	Isolated     bool
}

// NewIncident builds a new incident with a fresh identity. An unset risk
// level becomes DefaultRiskLevel so a stored incident never lacks one.
// IncidentRecorded (and HighRiskDetected for elevated levels) are buffered
// for publication after the incident is persisted.
func NewIncident(p IncidentParams) *Incident {
	level := p.RiskLevel
	if level.IsZero() {
		level = valueobject.DefaultRiskLevel
	}

	inc := &Incident{
		id:           uuid.New(),
		userID:       p.UserID,
		username:     p.Username,
		latitude:     p.Latitude,
		longitude:    p.Longitude,
		hour:         p.Hour,
		crimeDensity: p.CrimeDensity,
		poiCount:     p.PoiCount,
		night:        p.Night,
		isolated:     p.Isolated,
		riskScore:    p.RiskScore,
		riskLevel:    level,
		createdAt:    time.Now().UTC(),
	}
	inc.recordEvents()
	return inc
}

func (i *Incident) recordEvents() {
	recorded, err := event.NewIncidentRecorded(event.IncidentRecorded{
		IncidentID: i.id,
		UserID:     i.userID,
		RiskScore:  i.riskScore,
		RiskLevel:  i.riskLevel.String(),
		Latitude:   i.latitude,
		Longitude:  i.longitude,
		RecordedAt: i.createdAt,
	})
	if err == nil {
		i.Record(recorded)
	}

	if !i.riskLevel.IsElevated() {
		return
	}
	alert, err := event.NewHighRiskDetected(event.HighRiskDetected{
		IncidentID: i.id,
		UserID:     i.userID,
		Username:   i.username,
		RiskScore:  i.riskScore,
		RiskLevel:  i.riskLevel.String(),
		Latitude:   i.latitude,
		Longitude:  i.longitude,
		Night:      i.night,
		Isolated:   i.isolated,
		DetectedAt: i.createdAt,
	})
	if err == nil {
		i.Record(alert)
	}
}

// Reconstruct rebuilds an Incident from persisted data (no defaults, no events).
func Reconstruct(
	id uuid.UUID,
	userID, username string,
	latitude, longitude float64,
	hour int,
	crimeDensity float64,
	poiCount int,
	night, isolated bool,
	riskScore int,
	riskLevel valueobject.RiskLevel,
	createdAt time.Time,
) *Incident {
	return &Incident{
		id:           id,
		userID:       userID,
		username:     username,
		latitude:     latitude,
		longitude:    longitude,
		hour:         hour,
		crimeDensity: crimeDensity,
		poiCount:     poiCount,
		night:        night,
		isolated:     isolated,
		riskScore:    riskScore,
		riskLevel:    riskLevel,
		createdAt:    createdAt,
	}
}

// --- Accessors ---

func (i *Incident) ID() uuid.UUID                    { return i.id }
func (i *Incident) UserID() string                   { return i.userID }
func (i *Incident) Username() string                 { return i.username }
func (i *Incident) Latitude() float64                { return i.latitude }
func (i *Incident) Longitude() float64               { return i.longitude }
func (i *Incident) Hour() int                        { return i.hour }
func (i *Incident) CrimeDensity() float64            { return i.crimeDensity }
func (i *Incident) PoiCount() int                    { return i.poiCount }
func (i *Incident) Night() bool                      { return i.night }
func (i *Incident) Isolated() bool                   { return i.isolated }
func (i *Incident) RiskScore() int                   { return i.riskScore }
func (i *Incident) RiskLevel() valueobject.RiskLevel { return i.riskLevel }
func (i *Incident) CreatedAt() time.Time             { return i.createdAt }

// UserSummary is the latest known state of one user, derived from their most
// recent incident.
type UserSummary struct {
	UserID    string
	Username  string
	Latitude  float64
	Longitude float64
	RiskScore int
}
