package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact produced by an aggregate and published after its
// transaction commits.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	// CustomerID is the customer whose ledger or entitlements the event touches
	CustomerID() uuid.UUID
}

// EventHeader is embedded by every concrete event to satisfy DomainEvent.
type EventHeader struct {
	ID            uuid.UUID
	Type          string
	At            time.Time
	AggregateType string
	AggregateID   uuid.UUID
	Customer      uuid.UUID
}

func NewEventHeader(eventType, aggregateType string, aggregateID, customerID uuid.UUID) EventHeader {
	return EventHeader{
		ID:            uuid.New(),
		Type:          eventType,
		At:            time.Now(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Customer:      customerID,
	}
}

func (h *EventHeader) EventID() uuid.UUID    { return h.ID }
func (h *EventHeader) EventType() string     { return h.Type }
func (h *EventHeader) OccurredAt() time.Time { return h.At }
func (h *EventHeader) CustomerID() uuid.UUID { return h.Customer }
