package shared

import "time"

// AggregateRoot is implemented by the consistency boundaries of the ledger:
// bills, memberships and PT allocations. Events raised by a mutation are
// collected on the aggregate and published once its unit of work commits.
type AggregateRoot interface {
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot adds an optimistic lock version and pending events to BaseEntity.
//
// Version starts at 1 and grows by one per saved change. Repositories update a
// row only while it still holds Version-1, so of two writers that loaded the
// same version only the first commits.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	domainEvents []DomainEvent
}

// NewBaseAggregateRoot creates an unsaved aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// MarkChanged records one saved mutation made at the given instant
func (a *BaseAggregateRoot) MarkChanged(at time.Time) {
	a.UpdatedAt = at
	a.Version++
}

// AddDomainEvent queues an event for publication after commit
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns the events queued since the last clear
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents drops the queued events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
