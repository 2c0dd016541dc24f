// Package events holds the domain event kernel shared by aggregates and
// publishers.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact about an aggregate, published after the aggregate
// has been stored.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	AggregateType() string
	OccurredAt() time.Time
	Payload() []byte
}

// Aggregate identifies the aggregate an event belongs to.
type Aggregate struct {
	Type string
	ID   uuid.UUID
}

// Event is the DomainEvent implementation used throughout the service.
type Event struct {
	occurredAt time.Time
	name       string
	aggregate  Aggregate
	payload    json.RawMessage
	id         uuid.UUID
}

// New stamps data as a JSON payload with a fresh ID and the current UTC time.
func New(name string, aggregate Aggregate, data any) (Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("events: encode %s: %w", name, err)
	}
	return NewRaw(name, aggregate, payload), nil
}

// NewRaw is New for an already encoded payload. A nil payload is published
// as JSON null.
func NewRaw(name string, aggregate Aggregate, payload []byte) Event {
	return Event{
		id:         uuid.New(),
		name:       name,
		aggregate:  aggregate,
		occurredAt: time.Now().UTC(),
		payload:    payload,
	}
}

func (e Event) EventID() uuid.UUID     { return e.id }
func (e Event) EventType() string      { return e.name }
func (e Event) AggregateID() uuid.UUID { return e.aggregate.ID }
func (e Event) AggregateType() string  { return e.aggregate.Type }
func (e Event) OccurredAt() time.Time  { return e.occurredAt }
func (e Event) Payload() []byte        { return e.payload }
