package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/membership"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// MembershipService is Membership Assignment: one current membership per customer
type MembershipService struct {
	base
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(scope TransactionScope, repos TransactionalRepositories, opts ...Option) *MembershipService {
	return &MembershipService{base: newBase(scope, repos, opts...)}
}

// Assign supersedes the customer's current membership, if any, and creates an ACTIVE one
// for the plan in the same unit of work. Unless SkipBill is set, the plan price is billed
// as a MEMBERSHIP_SUBSCRIPTION bill linked to the new membership.
func (s *MembershipService) Assign(ctx context.Context, req AssignMembershipRequest) (*AssignMembershipResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "membership", "swap_membership")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
		telemetry.SpanAttrPlanID, req.PlanID.String(),
	)

	startDate := req.StartDate
	if startDate.IsZero() {
		startDate = s.now()
	}

	var (
		plan         *membership.MembershipPlan
		current      *membership.Membership
		next         *membership.Membership
		bill         *ledger.Bill
		previousPlan string
	)
	err := s.atomic(ctx, "swap_membership", func(repos TransactionalRepositories) error {
		if err := requireCustomer(ctx, repos, req.CustomerID); err != nil {
			return err
		}
		var err error
		plan, err = repos.PlanCatalog().Get(ctx, req.PlanID)
		if err != nil {
			return err
		}
		current, err = findCurrent(ctx, repos, req.CustomerID)
		if err != nil {
			return err
		}

		next, err = membership.Assign(current, req.CustomerID, plan, startDate)
		if err != nil {
			return err
		}
		// The superseded record is written first so at most one ACTIVE row exists at any point.
		if current != nil {
			if err := repos.MembershipRepo().Save(ctx, current); err != nil {
				return fmt.Errorf("supersede membership: %w", err)
			}
			previousPlan = planName(ctx, repos.PlanCatalog(), current.MembershipPlanID)
		}
		if err := repos.MembershipRepo().Save(ctx, next); err != nil {
			return fmt.Errorf("save membership: %w", err)
		}

		if req.SkipBill {
			return nil
		}
		// The bill is for next itself, so a backdated membership that has already
		// run out is still billed.
		bill, err = ledger.NewBill(req.CustomerID, ledger.BillTypeMembershipSubscription, plan.Price, req.Discount, startDate, &next.ID)
		if err != nil {
			return err
		}
		bill.Remark = plan.Name
		if err := repos.BillRepo().Save(ctx, bill); err != nil {
			return fmt.Errorf("save membership bill: %w", err)
		}
		return nil
	})
	s.metrics.RecordCompositeOperation(ctx, "swap_membership", err == nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.now()
	result := &AssignMembershipResult{
		Membership: ToMembershipResponse(next, plan.Name, now),
	}
	aggregates := []shared.AggregateRoot{next}
	if current != nil {
		superseded := ToMembershipResponse(current, previousPlan, now)
		result.Superseded = &superseded
		aggregates = append(aggregates, current)
	}
	if bill != nil {
		billResp := ToBillResponse(bill)
		result.Bill = &billResp
		aggregates = append(aggregates, bill)
		s.metrics.RecordBillCreated(ctx, bill.BillType.String())
	}
	s.publishDomainEvents(ctx, aggregates...)

	telemetry.SetOK(span)
	return result, nil
}

// CurrentMembership returns the customer's membership as seen today. Expiry is computed
// at read time: a stored ACTIVE membership past its end date is reported EXPIRED but
// never rewritten.
func (s *MembershipService) CurrentMembership(ctx context.Context, customerID uuid.UUID) (MembershipView, error) {
	if err := requireCustomer(ctx, s.repos, customerID); err != nil {
		return MembershipView{}, err
	}
	return currentMembershipView(ctx, s.repos, customerID, s.now())
}

// ListCustomerMemberships lists a customer's memberships, newest first
func (s *MembershipService) ListCustomerMemberships(ctx context.Context, customerID uuid.UUID) ([]MembershipResponse, error) {
	if err := requireCustomer(ctx, s.repos, customerID); err != nil {
		return nil, err
	}
	memberships, err := s.repos.MembershipRepo().FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	now := s.now()
	names := make(map[uuid.UUID]string)
	out := make([]MembershipResponse, len(memberships))
	for i := range memberships {
		planID := memberships[i].MembershipPlanID
		name, ok := names[planID]
		if !ok {
			name = planName(ctx, s.repos.PlanCatalog(), planID)
			names[planID] = name
		}
		out[i] = ToMembershipResponse(&memberships[i], name, now)
	}
	return out, nil
}

// PlanStats counts the plan's current members and derives its monthly revenue
func (s *MembershipService) PlanStats(ctx context.Context, planID uuid.UUID) (*PlanStatsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "membership", "plan_stats")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPlanID, planID.String())

	plan, err := s.repos.PlanCatalog().Get(ctx, planID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.now()
	count, err := s.repos.MembershipRepo().CountActiveByPlan(ctx, planID, startOfDay(now))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("count active members: %w", err)
	}

	stats := membership.ComputePlanStats(plan, count)
	telemetry.SetOK(span)
	return &PlanStatsResponse{
		PlanID:             plan.ID,
		PlanName:           plan.Name,
		ActiveMembersCount: stats.ActiveMembersCount,
		MonthlyRevenue:     stats.MonthlyRevenue,
		ComputedAt:         now,
	}, nil
}

// findCurrent returns the stored ACTIVE membership or nil
func findCurrent(ctx context.Context, repos TransactionalRepositories, customerID uuid.UUID) (*membership.Membership, error) {
	current, err := repos.MembershipRepo().FindCurrent(ctx, customerID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load current membership: %w", err)
	}
	return current, nil
}

func currentMembershipView(ctx context.Context, repos TransactionalRepositories, customerID uuid.UUID, now time.Time) (MembershipView, error) {
	current, err := findCurrent(ctx, repos, customerID)
	if err != nil {
		return MembershipView{}, err
	}
	view := MembershipView{Status: membership.CurrentStatus(current, now)}
	if current != nil {
		resp := ToMembershipResponse(current, planName(ctx, repos.PlanCatalog(), current.MembershipPlanID), now)
		view.Membership = &resp
	}
	return view, nil
}

// planName is best effort: a plan removed from the catalog leaves the name empty
func planName(ctx context.Context, catalog membership.PlanCatalog, planID uuid.UUID) string {
	plan, err := catalog.Get(ctx, planID)
	if err != nil {
		return ""
	}
	return plan.Name
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
