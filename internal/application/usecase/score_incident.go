package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mrinal-Agrawal21/veera-app/internal/application/dto"
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/port"
	"github.com/Mrinal-Agrawal21/veera-app/internal/metrics"
	"github.com/Mrinal-Agrawal21/veera-app/pkg/events"
)

const eventPublishTimeout = 3 * time.Second

// ScoreIncident is the use case behind an SOS: score the situation with the
// model, persist the incident, announce it.
type ScoreIncident struct {
	model     port.RiskModelClient
	repo      port.IncidentRepository
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewScoreIncident creates a new ScoreIncident use case.
func NewScoreIncident(
	model port.RiskModelClient,
	repo port.IncidentRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *ScoreIncident {
	return &ScoreIncident{
		model:     model,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute scores the request and stores the resulting incident.
//
// A model failure returns an error wrapping port.ErrModelUnavailable and
// nothing is stored. A caller that hangs up before scoring finishes gets an
// error wrapping context.Canceled instead. A partial model answer is completed with defaults and
// stored. A storage failure returns an error wrapping port.ErrStorage.
// Event publication never fails the call.
func (uc *ScoreIncident) Execute(ctx context.Context, req dto.ClientRiskRequest) (dto.ScoreResponse, error) {
	// 1. Score the identity-free feature vector.
	res, err := uc.model.Score(ctx, dto.ToModelRequest(req))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			metrics.ScoreRequests.WithLabelValues("cancelled").Inc()
			return dto.ScoreResponse{}, fmt.Errorf("scoring abandoned: %w", err)
		}
		metrics.ScoreRequests.WithLabelValues("model_unavailable").Inc()
		return dto.ScoreResponse{}, fmt.Errorf("%w: %w", port.ErrModelUnavailable, err)
	}

	// 2. Merge the answer with the client's identity and environment.
	incident, resolution := dto.ToIncident(req, res)
	uc.recordDefaults(req, resolution)

	// 3. Persist.
	stored, err := uc.repo.Append(ctx, incident)
	if err != nil {
		metrics.ScoreRequests.WithLabelValues("storage_error").Inc()
		uc.logger.Error("failed to store incident",
			"incident_id", incident.ID(),
			"user_id", incident.UserID(),
			"error", err,
		)
		return dto.ScoreResponse{}, fmt.Errorf("%w: failed to append incident: %w", port.ErrStorage, err)
	}

	// 4. Publish domain events, best effort.
	uc.publish(ctx, incident.Drain())

	metrics.ScoreRequests.WithLabelValues("ok").Inc()
	metrics.IncidentsRecorded.WithLabelValues(stored.RiskLevel().String()).Inc()

	uc.logger.Info("incident recorded",
		"incident_id", stored.ID(),
		"user_id", stored.UserID(),
		"risk_level", stored.RiskLevel().String(),
		"risk_score", stored.RiskScore(),
	)

	return dto.ToScoreResponse(stored), nil
}

func (uc *ScoreIncident) recordDefaults(req dto.ClientRiskRequest, r dto.Resolution) {
	if r.Complete() {
		return
	}
	if r.ScoreDefaulted {
		metrics.ModelDefaultsApplied.WithLabelValues("risk_score").Inc()
	}
	if r.LevelDefaulted {
		metrics.ModelDefaultsApplied.WithLabelValues("risk_level").Inc()
	}

	attrs := []any{
		"user_id", deref(req.UserID),
		"score_defaulted", r.ScoreDefaulted,
		"level_defaulted", r.LevelDefaulted,
	}
	if r.LevelUnrecognized() {
		metrics.UnrecognizedRiskLevels.Inc()
		attrs = append(attrs, "model_risk_level", *r.RawLevel)
	}
	uc.logger.Warn("model response incomplete, applying defaults", attrs...)
}

func (uc *ScoreIncident) publish(ctx context.Context, evts []events.DomainEvent) {
	if len(evts) == 0 {
		return
	}

	// The incident is already stored; a client hanging up must not drop its events.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	if err := uc.publisher.Publish(pubCtx, evts...); err != nil {
		metrics.EventPublishFailures.Add(float64(len(evts)))
		uc.logger.Warn("failed to publish incident events",
			"events", len(evts),
			"error", err,
		)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
