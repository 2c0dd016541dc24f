package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Mrinal-Agrawal21/veera-app/internal/application/dto"
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/port"
)

// ListIncidents returns every stored incident.
type ListIncidents struct {
	repo   port.IncidentRepository
	logger *slog.Logger
}

// NewListIncidents creates a new ListIncidents use case.
func NewListIncidents(repo port.IncidentRepository, logger *slog.Logger) *ListIncidents {
	return &ListIncidents{repo: repo, logger: logger}
}

// Execute lists all incidents in store order. An empty store yields an
// empty, non-nil slice.
func (uc *ListIncidents) Execute(ctx context.Context) ([]dto.IncidentResponse, error) {
	incidents, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list incidents: %w", port.ErrStorage, err)
	}

	uc.logger.Debug("listed incidents", "count", len(incidents))
	return dto.FromIncidents(incidents), nil
}

// ListUserIncidents returns the incidents of one user.
type ListUserIncidents struct {
	repo   port.IncidentRepository
	logger *slog.Logger
}

// NewListUserIncidents creates a new ListUserIncidents use case.
func NewListUserIncidents(repo port.IncidentRepository, logger *slog.Logger) *ListUserIncidents {
	return &ListUserIncidents{repo: repo, logger: logger}
}

// Execute lists incidents whose user ID matches userID exactly. An unknown
// user is not an error.
func (uc *ListUserIncidents) Execute(ctx context.Context, userID string) ([]dto.IncidentResponse, error) {
	incidents, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list incidents for user: %w", port.ErrStorage, err)
	}

	uc.logger.Debug("listed user incidents", "user_id", userID, "count", len(incidents))
	return dto.FromIncidents(incidents), nil
}

// ListUsers returns one summary per user that has raised an incident.
type ListUsers struct {
	repo port.IncidentRepository
}

// NewListUsers creates a new ListUsers use case.
func NewListUsers(repo port.IncidentRepository) *ListUsers {
	return &ListUsers{repo: repo}
}

// Execute lists the users with their latest position and score.
func (uc *ListUsers) Execute(ctx context.Context) ([]dto.UserSummaryResponse, error) {
	users, err := uc.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list users: %w", port.ErrStorage, err)
	}
	return dto.FromUserSummaries(users), nil
}
