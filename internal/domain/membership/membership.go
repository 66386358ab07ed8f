package membership

import (
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/google/uuid"
)

// MembershipStatus is the status of a membership as stored or as seen at read time
type MembershipStatus string

const (
	MembershipStatusActive  MembershipStatus = "ACTIVE"
	MembershipStatusExpired MembershipStatus = "EXPIRED"
	// MembershipStatusNone is reported when a customer has no membership at all; it is never stored
	MembershipStatusNone MembershipStatus = "NONE"
)

// IsValid checks if the status may be stored
func (s MembershipStatus) IsValid() bool {
	return s == MembershipStatusActive || s == MembershipStatusExpired
}

// String returns the string representation of MembershipStatus
func (s MembershipStatus) String() string {
	return string(s)
}

// Membership is a customer's subscription to a plan
type Membership struct {
	shared.BaseAggregateRoot
	CustomerID       uuid.UUID
	MembershipPlanID uuid.UUID
	StartDate        time.Time
	EndDate          time.Time
	Status           MembershipStatus
	SupersededAt     *time.Time
	SupersededBy     *uuid.UUID
}

// NewMembership creates an ACTIVE membership with its end date derived from the plan
func NewMembership(customerID uuid.UUID, plan *MembershipPlan, startDate time.Time) (*Membership, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if plan == nil {
		return nil, shared.ErrPlanNotFound
	}
	if startDate.IsZero() {
		startDate = time.Now()
	}

	m := &Membership{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		MembershipPlanID:  plan.ID,
		StartDate:         startDate,
		EndDate:           plan.EndDateFor(startDate),
		Status:            MembershipStatusActive,
	}
	m.AddDomainEvent(NewMembershipAssignedEvent(m, plan))

	return m, nil
}

// Supersede marks the membership as no longer current, regardless of its end date
func (m *Membership) Supersede(by uuid.UUID) {
	if m.Status != MembershipStatusActive {
		return
	}
	now := time.Now()
	m.Status = MembershipStatusExpired
	m.SupersededAt = &now
	m.SupersededBy = &by
	m.MarkChanged(now)

	m.AddDomainEvent(NewMembershipSupersededEvent(m, by))
}

// StatusAt computes the status seen at instant now. Expiry is a read-time
// computation: the stored record is never changed by it. The end date is inclusive.
func (m *Membership) StatusAt(now time.Time) MembershipStatus {
	if m.Status != MembershipStatusActive {
		return MembershipStatusExpired
	}
	if dateOf(now).After(dateOf(m.EndDate.In(now.Location()))) {
		return MembershipStatusExpired
	}
	return MembershipStatusActive
}

// IsCurrentAt reports whether the membership counts as the customer's current one at now
func (m *Membership) IsCurrentAt(now time.Time) bool {
	return m.StatusAt(now) == MembershipStatusActive
}

// CurrentStatus reports the display status for a possibly missing membership
func CurrentStatus(m *Membership, now time.Time) MembershipStatus {
	if m == nil {
		return MembershipStatusNone
	}
	return m.StatusAt(now)
}

// Assign supersedes the current membership, if any, and creates the new one.
// Both records must be persisted in the same unit of work.
func Assign(current *Membership, customerID uuid.UUID, plan *MembershipPlan, startDate time.Time) (*Membership, error) {
	next, err := NewMembership(customerID, plan, startDate)
	if err != nil {
		return nil, err
	}
	if current != nil {
		if current.CustomerID != customerID {
			return nil, shared.NewValidationError("MEMBERSHIP_CUSTOMER_MISMATCH", "Current membership belongs to another customer")
		}
		current.Supersede(next.ID)
	}
	return next, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
