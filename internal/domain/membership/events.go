package membership

import (
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type names
const (
	AggregateTypeMembership = "Membership"
)

// Event type names
const (
	EventTypeMembershipAssigned   = "MembershipAssigned"
	EventTypeMembershipSuperseded = "MembershipSuperseded"
)

// MembershipAssignedEvent is raised when a customer is put on a plan
type MembershipAssignedEvent struct {
	shared.EventHeader
	MembershipID     uuid.UUID         `json:"membership_id"`
	MembershipPlanID uuid.UUID         `json:"membership_plan_id"`
	PlanName         string            `json:"plan_name"`
	PlanPrice        valueobject.Money `json:"plan_price"`
	StartDate        time.Time         `json:"start_date"`
	EndDate          time.Time         `json:"end_date"`
}

// NewMembershipAssignedEvent creates a new MembershipAssignedEvent
func NewMembershipAssignedEvent(m *Membership, plan *MembershipPlan) *MembershipAssignedEvent {
	return &MembershipAssignedEvent{
		EventHeader:      shared.NewEventHeader(EventTypeMembershipAssigned, AggregateTypeMembership, m.ID, m.CustomerID),
		MembershipID:     m.ID,
		MembershipPlanID: plan.ID,
		PlanName:         plan.Name,
		PlanPrice:        plan.Price,
		StartDate:        m.StartDate,
		EndDate:          m.EndDate,
	}
}

// MembershipSupersededEvent is raised when a newer membership replaces this one
type MembershipSupersededEvent struct {
	shared.EventHeader
	MembershipID     uuid.UUID `json:"membership_id"`
	MembershipPlanID uuid.UUID `json:"membership_plan_id"`
	SupersededBy     uuid.UUID `json:"superseded_by"`
}

// NewMembershipSupersededEvent creates a new MembershipSupersededEvent
func NewMembershipSupersededEvent(m *Membership, by uuid.UUID) *MembershipSupersededEvent {
	return &MembershipSupersededEvent{
		EventHeader:      shared.NewEventHeader(EventTypeMembershipSuperseded, AggregateTypeMembership, m.ID, m.CustomerID),
		MembershipID:     m.ID,
		MembershipPlanID: m.MembershipPlanID,
		SupersededBy:     by,
	}
}
