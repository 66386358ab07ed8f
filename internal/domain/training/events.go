package training

import (
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type names
const (
	AggregateTypePtPackageAllocation = "PtPackageAllocation"
)

// Event type names
const (
	EventTypePtPackageAssigned  = "PtPackageAssigned"
	EventTypePtPackageCancelled = "PtPackageCancelled"
	EventTypePtSessionConsumed  = "PtSessionConsumed"
	EventTypePtPackageCompleted = "PtPackageCompleted"
)

// PtPackageAssignedEvent is raised when a customer buys a PT package
type PtPackageAssignedEvent struct {
	shared.EventHeader
	AllocationID  uuid.UUID         `json:"allocation_id"`
	PtPackageID   uuid.UUID         `json:"pt_package_id"`
	PackageName   string            `json:"package_name"`
	Price         valueobject.Money `json:"price"`
	SessionsTotal int               `json:"sessions_total"`
	CoachID       *uuid.UUID        `json:"coach_id,omitempty"`
}

// NewPtPackageAssignedEvent creates a new PtPackageAssignedEvent
func NewPtPackageAssignedEvent(a *PtPackageAllocation, pkg *PtPackage) *PtPackageAssignedEvent {
	return &PtPackageAssignedEvent{
		EventHeader:   shared.NewEventHeader(EventTypePtPackageAssigned, AggregateTypePtPackageAllocation, a.ID, a.CustomerID),
		AllocationID:  a.ID,
		PtPackageID:   pkg.ID,
		PackageName:   pkg.Name,
		Price:         pkg.Price,
		SessionsTotal: a.SessionsTotal,
		CoachID:       a.CoachID,
	}
}

// PtPackageCancelledEvent is raised when an allocation is cancelled
type PtPackageCancelledEvent struct {
	shared.EventHeader
	AllocationID      uuid.UUID  `json:"allocation_id"`
	BillID            *uuid.UUID `json:"bill_id,omitempty"`
	SessionsRemaining int        `json:"sessions_remaining"`
	Reason            string     `json:"reason"`
}

// NewPtPackageCancelledEvent creates a new PtPackageCancelledEvent
func NewPtPackageCancelledEvent(a *PtPackageAllocation) *PtPackageCancelledEvent {
	return &PtPackageCancelledEvent{
		EventHeader:       shared.NewEventHeader(EventTypePtPackageCancelled, AggregateTypePtPackageAllocation, a.ID, a.CustomerID),
		AllocationID:      a.ID,
		BillID:            a.BillID,
		SessionsRemaining: a.SessionsRemaining,
		Reason:            a.CancelReason,
	}
}

// PtSessionConsumedEvent is raised for every consumed session
type PtSessionConsumedEvent struct {
	shared.EventHeader
	AllocationID      uuid.UUID `json:"allocation_id"`
	SessionsRemaining int       `json:"sessions_remaining"`
}

// NewPtSessionConsumedEvent creates a new PtSessionConsumedEvent
func NewPtSessionConsumedEvent(a *PtPackageAllocation) *PtSessionConsumedEvent {
	return &PtSessionConsumedEvent{
		EventHeader:       shared.NewEventHeader(EventTypePtSessionConsumed, AggregateTypePtPackageAllocation, a.ID, a.CustomerID),
		AllocationID:      a.ID,
		SessionsRemaining: a.SessionsRemaining,
	}
}

// PtPackageCompletedEvent is raised when the last session is consumed
type PtPackageCompletedEvent struct {
	shared.EventHeader
	AllocationID  uuid.UUID `json:"allocation_id"`
	SessionsTotal int       `json:"sessions_total"`
}

// NewPtPackageCompletedEvent creates a new PtPackageCompletedEvent
func NewPtPackageCompletedEvent(a *PtPackageAllocation) *PtPackageCompletedEvent {
	return &PtPackageCompletedEvent{
		EventHeader:   shared.NewEventHeader(EventTypePtPackageCompleted, AggregateTypePtPackageAllocation, a.ID, a.CustomerID),
		AllocationID:  a.ID,
		SessionsTotal: a.SessionsTotal,
	}
}
