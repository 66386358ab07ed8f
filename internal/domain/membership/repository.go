package membership

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PlanCatalog is the read side of the membership plan catalog
type PlanCatalog interface {
	// Get returns a plan or shared.ErrPlanNotFound
	Get(ctx context.Context, id uuid.UUID) (*MembershipPlan, error)
}

// PlanRepository manages catalog plans
type PlanRepository interface {
	PlanCatalog
	FindAll(ctx context.Context) ([]MembershipPlan, error)
	Save(ctx context.Context, plan *MembershipPlan) error
}

// MembershipRepository defines the interface for membership persistence
type MembershipRepository interface {
	// FindByID finds a membership by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Membership, error)

	// FindCurrent returns the stored ACTIVE membership of a customer, or shared.ErrNotFound.
	// Read-time expiry is applied by the caller.
	FindCurrent(ctx context.Context, customerID uuid.UUID) (*Membership, error)

	// FindByCustomer lists a customer's memberships, newest start date first
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]Membership, error)

	// CountActiveByPlan counts ACTIVE memberships of a plan whose end date is on or after asOf
	CountActiveByPlan(ctx context.Context, planID uuid.UUID, asOf time.Time) (int64, error)

	// Save creates or updates a membership
	Save(ctx context.Context, membership *Membership) error
}
