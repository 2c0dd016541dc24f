package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/model"
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/port"
	"github.com/Mrinal-Agrawal21/veera-app/pkg/events"
)

// --- Mock implementations ---

type mockModelClient struct {
	calls     []port.ModelRiskRequest
	scoreFunc func(ctx context.Context, req port.ModelRiskRequest) (port.ModelRiskResponse, error)
}

func (m *mockModelClient) Score(ctx context.Context, req port.ModelRiskRequest) (port.ModelRiskResponse, error) {
	m.calls = append(m.calls, req)
	if m.scoreFunc != nil {
		return m.scoreFunc(ctx, req)
	}
	return port.ModelRiskResponse{}, nil
}

type mockIncidentRepository struct {
	mu         sync.Mutex
	incidents  []*model.Incident
	appendFunc func(ctx context.Context, incident *model.Incident) (*model.Incident, error)
	listErr    error
	users      []model.UserSummary
}

func (m *mockIncidentRepository) Append(ctx context.Context, incident *model.Incident) (*model.Incident, error) {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, incident)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incidents = append(m.incidents, incident)
	return incident, nil
}

func (m *mockIncidentRepository) ListAll(_ context.Context) ([]*model.Incident, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Incident(nil), m.incidents...), nil
}

func (m *mockIncidentRepository) ListByUser(_ context.Context, userID string) ([]*model.Incident, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
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

func (m *mockIncidentRepository) ListUsers(_ context.Context) ([]model.UserSummary, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.users, nil
}

type mockEventPublisher struct {
	publishedEvents []events.DomainEvent
	publishFunc     func(ctx context.Context, evts ...events.DomainEvent) error
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }
