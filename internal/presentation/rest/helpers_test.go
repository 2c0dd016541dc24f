package rest_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/Mrinal-Agrawal21/veera-app/internal/application/usecase"
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/model"
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/port"
	"github.com/Mrinal-Agrawal21/veera-app/internal/presentation/rest"
	"github.com/Mrinal-Agrawal21/veera-app/pkg/events"
)

// --- Mock implementations ---

type memoryRepository struct {
	mu        sync.Mutex
	incidents []*model.Incident
	appendErr error
	listErr   error
}

func (m *memoryRepository) Append(_ context.Context, incident *model.Incident) (*model.Incident, error) {
	if m.appendErr != nil {
		return nil, m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incidents = append(m.incidents, incident)
	return incident, nil
}

func (m *memoryRepository) ListAll(_ context.Context) ([]*model.Incident, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Incident(nil), m.incidents...), nil
}

func (m *memoryRepository) ListByUser(_ context.Context, userID string) ([]*model.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Incident
	for _, i := range m.incidents {
		if i.UserID() == userID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *memoryRepository) ListUsers(_ context.Context) ([]model.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := map[string]*model.Incident{}
	for _, i := range m.incidents {
		if i.UserID() != "" {
			latest[i.UserID()] = i
		}
	}
	out := make([]model.UserSummary, 0, len(latest))
	for id, i := range latest {
		out = append(out, model.UserSummary{
			UserID:    id,
			Username:  i.Username(),
			Latitude:  i.Latitude(),
			Longitude: i.Longitude(),
			RiskScore: i.RiskScore(),
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].UserID < out[b].UserID })
	return out, nil
}

func (m *memoryRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.incidents)
}

type stubModel struct {
	mu        sync.Mutex
	calls     int
	scoreFunc func(ctx context.Context, req port.ModelRiskRequest) (port.ModelRiskResponse, error)
}

func (s *stubModel) Score(ctx context.Context, req port.ModelRiskRequest) (port.ModelRiskResponse, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.scoreFunc != nil {
		return s.scoreFunc(ctx, req)
	}
	return port.ModelRiskResponse{}, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...events.DomainEvent) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

// newTestRouter wires the real use cases over the given ports.
func newTestRouter(scorer port.RiskModelClient, repo port.IncidentRepository, limiter *rest.RateLimiter) http.Handler {
	logger := discardLogger()
	incidents := rest.NewIncidentHandler(
		usecase.NewScoreIncident(scorer, repo, nopPublisher{}, logger),
		usecase.NewListIncidents(repo, logger),
		usecase.NewListUserIncidents(repo, logger),
		usecase.NewListUsers(repo),
		logger,
	)
	return rest.NewRouter(rest.RouterConfig{
		Incidents:  incidents,
		Health:     rest.NewHealthHandler("veera", logger),
		SOSLimiter: limiter,
		Logger:     logger,
	})
}
