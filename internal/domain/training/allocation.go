package training

import (
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/google/uuid"
)

// AllocationStatus represents the lifecycle of a PT package allocation
type AllocationStatus string

const (
	AllocationStatusActive    AllocationStatus = "ACTIVE"
	AllocationStatusCompleted AllocationStatus = "COMPLETED"
	AllocationStatusCancelled AllocationStatus = "CANCELLED"
)

// IsValid checks if the status is a valid AllocationStatus
func (s AllocationStatus) IsValid() bool {
	switch s {
	case AllocationStatusActive, AllocationStatusCompleted, AllocationStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true once no more sessions can be consumed
func (s AllocationStatus) IsTerminal() bool {
	return s == AllocationStatusCompleted || s == AllocationStatusCancelled
}

// String returns the string representation of AllocationStatus
func (s AllocationStatus) String() string {
	return string(s)
}

// PtPackageAllocation is one customer's purchase of a PT package
type PtPackageAllocation struct {
	shared.BaseAggregateRoot
	CustomerID        uuid.UUID
	PtPackageID       uuid.UUID
	CoachID           *uuid.UUID
	StartDate         time.Time
	SessionsTotal     int
	SessionsRemaining int
	Status            AllocationStatus
	// BillID is the bill created for the package price
	BillID       *uuid.UUID
	CancelledAt  *time.Time
	CancelReason string
	CompletedAt  *time.Time
}

// NewPtPackageAllocation creates an ACTIVE allocation; the session count is copied from the package
func NewPtPackageAllocation(customerID uuid.UUID, pkg *PtPackage, coachID *uuid.UUID, startDate time.Time) (*PtPackageAllocation, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if pkg == nil {
		return nil, shared.ErrPackageNotFound
	}
	if pkg.SessionsTotal <= 0 {
		return nil, shared.NewValidationError("INVALID_SESSIONS", "Package must include at least one session")
	}
	if startDate.IsZero() {
		startDate = time.Now()
	}

	a := &PtPackageAllocation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		PtPackageID:       pkg.ID,
		CoachID:           coachID,
		StartDate:         startDate,
		SessionsTotal:     pkg.SessionsTotal,
		SessionsRemaining: pkg.SessionsTotal,
		Status:            AllocationStatusActive,
	}
	a.AddDomainEvent(NewPtPackageAssignedEvent(a, pkg))

	return a, nil
}

// LinkBill records the bill charged for this allocation
func (a *PtPackageAllocation) LinkBill(billID uuid.UUID) {
	a.BillID = &billID
}

// Cancel moves the allocation to CANCELLED. The caller must void the linked bill
// in the same unit of work.
func (a *PtPackageAllocation) Cancel(reason string) error {
	if a.Status.IsTerminal() {
		return shared.ErrAlreadyCancelled.WithMessage("allocation is already %s", a.Status)
	}

	now := time.Now()
	a.Status = AllocationStatusCancelled
	a.CancelledAt = &now
	a.CancelReason = reason
	a.MarkChanged(now)

	a.AddDomainEvent(NewPtPackageCancelledEvent(a))

	return nil
}

// ConsumeSession uses one session and completes the allocation on the last one
func (a *PtPackageAllocation) ConsumeSession() error {
	switch {
	case a.Status == AllocationStatusCancelled:
		return shared.ErrAlreadyCancelled.WithMessage("cannot consume a session of a cancelled allocation")
	case a.SessionsRemaining <= 0 || a.Status == AllocationStatusCompleted:
		return shared.ErrNoSessionsRemaining
	}

	now := time.Now()
	a.SessionsRemaining--
	a.MarkChanged(now)

	a.AddDomainEvent(NewPtSessionConsumedEvent(a))

	if a.SessionsRemaining == 0 {
		a.Status = AllocationStatusCompleted
		a.CompletedAt = &now
		a.AddDomainEvent(NewPtPackageCompletedEvent(a))
	}

	return nil
}

// SessionsUsed returns how many sessions have been consumed
func (a *PtPackageAllocation) SessionsUsed() int {
	return a.SessionsTotal - a.SessionsRemaining
}
