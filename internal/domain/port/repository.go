package port

import (
	"context"
	"errors"

	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/model"
	"github.com/Mrinal-Agrawal21/veera-app/pkg/events"
)

// ErrStorage marks a failure to persist or read incidents.
var ErrStorage = errors.New("incident storage failed")

// IncidentRepository is the append-only persistence port for incidents.
type IncidentRepository interface {
	// Append stores a new incident and returns its persisted form.
	Append(ctx context.Context, incident *model.Incident) (*model.Incident, error)

	// ListAll returns every stored incident in store-defined order.
	ListAll(ctx context.Context) ([]*model.Incident, error)

	// ListByUser returns the incidents whose user ID equals userID exactly.
	// No match yields an empty slice, not an error.
	ListByUser(ctx context.Context, userID string) ([]*model.Incident, error)

	// ListUsers returns one summary per distinct non-empty user ID.
	ListUsers(ctx context.Context) ([]model.UserSummary, error)
}

// EventPublisher is the port for publishing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}
