package dto

import (
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/model"
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/port"
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/valueobject"
)

// DefaultRiskScore is substituted when the model omits risk_score.
const DefaultRiskScore = 0

// Resolution records which model fields had to be defaulted while building
// an incident.
type Resolution struct {
	// RawLevel is the label the model sent, if any.
	RawLevel *string

	ScoreDefaulted bool
	LevelDefaulted bool
}

// LevelUnrecognized reports whether the model sent a label that is not part
// of the risk level enumeration.
func (r Resolution) LevelUnrecognized() bool {
	return r.LevelDefaulted && r.RawLevel != nil
}

// Complete reports whether the model answered both fields usably.
func (r Resolution) Complete() bool {
	return !r.ScoreDefaulted && !r.LevelDefaulted
}

// ToModelRequest projects the client request onto the model's feature
// vector. Identity fields are dropped and absent values stay absent.
func ToModelRequest(req ClientRiskRequest) port.ModelRiskRequest {
	return port.ModelRiskRequest{
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Hour:         req.Hour,
		CrimeDensity: req.CrimeDensity,
		PoiCount:     req.PoiCount,
		IsNight:      req.IsNight,
		IsIsolated:   req.IsIsolated,
	}
}

// ToIncident combines the client's identity and environment with the model's
// answer. A missing score becomes DefaultRiskScore; a missing or unknown
// level becomes valueobject.DefaultRiskLevel.
func ToIncident(req ClientRiskRequest, res port.ModelRiskResponse) (*model.Incident, Resolution) {
	resolution := Resolution{RawLevel: res.RiskLevel}

	score := DefaultRiskScore
	if res.RiskScore != nil {
		score = *res.RiskScore
	} else {
		resolution.ScoreDefaulted = true
	}

	level, recognized := valueobject.RiskLevelFromModel(res.RiskLevel)
	resolution.LevelDefaulted = !recognized

	incident := model.NewIncident(model.IncidentParams{
		UserID:       deref(req.UserID),
		Username:     deref(req.Username),
		Latitude:     deref(req.Latitude),
		Longitude:    deref(req.Longitude),
		Hour:         deref(req.Hour),
		CrimeDensity: deref(req.CrimeDensity),
		PoiCount:     deref(req.PoiCount),
		Night:        deref(req.IsNight),
		Isolated:     deref(req.IsIsolated),
		RiskScore:    score,
		RiskLevel:    level,
	})
	return incident, resolution
}

// ToScoreResponse returns the score pair of a stored incident.
func ToScoreResponse(incident *model.Incident) ScoreResponse {
	return ScoreResponse{
		RiskScore: incident.RiskScore(),
		RiskLevel: incident.RiskLevel().String(),
	}
}

// FromIncident maps a domain incident to its listing shape.
func FromIncident(i *model.Incident) IncidentResponse {
	return IncidentResponse{
		ID:           i.ID(),
		UserID:       i.UserID(),
		Username:     i.Username(),
		Latitude:     i.Latitude(),
		Longitude:    i.Longitude(),
		Hour:         i.Hour(),
		CrimeDensity: i.CrimeDensity(),
		PoiCount:     i.PoiCount(),
		Night:        i.Night(),
		Isolated:     i.Isolated(),
		RiskScore:    i.RiskScore(),
		RiskLevel:    i.RiskLevel().String(),
		CreatedAt:    i.CreatedAt(),
	}
}

// FromIncidents maps a slice, never returning nil.
func FromIncidents(incidents []*model.Incident) []IncidentResponse {
	out := make([]IncidentResponse, 0, len(incidents))
	for _, i := range incidents {
		out = append(out, FromIncident(i))
	}
	return out
}

// FromUserSummaries maps user summaries, never returning nil.
func FromUserSummaries(users []model.UserSummary) []UserSummaryResponse {
	out := make([]UserSummaryResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummaryResponse{
			UserID:    u.UserID,
			Username:  u.Username,
			Latitude:  u.Latitude,
			Longitude: u.Longitude,
			RiskScore: u.RiskScore,
		})
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
