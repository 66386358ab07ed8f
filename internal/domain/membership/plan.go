package membership

import (
	"strings"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// IntervalUnit is the unit of a plan's billing period
type IntervalUnit string

const (
	IntervalDays   IntervalUnit = "days"
	IntervalWeeks  IntervalUnit = "weeks"
	IntervalMonths IntervalUnit = "months"
	IntervalYears  IntervalUnit = "years"
)

// IsValid checks if the interval unit is known
func (u IntervalUnit) IsValid() bool {
	switch u {
	case IntervalDays, IntervalWeeks, IntervalMonths, IntervalYears:
		return true
	}
	return false
}

// ParseIntervalUnit accepts singular or plural, any case
func ParseIntervalUnit(s string) (IntervalUnit, error) {
	u := strings.ToLower(strings.TrimSpace(s))
	if !strings.HasSuffix(u, "s") {
		u += "s"
	}
	unit := IntervalUnit(u)
	if !unit.IsValid() {
		return "", shared.NewValidationError("INVALID_INTERVAL_UNIT", "Interval unit must be days, weeks, months or years")
	}
	return unit, nil
}

// MembershipPlan is a catalog entry members subscribe to
type MembershipPlan struct {
	shared.BaseEntity
	Name         string
	Price        valueobject.Money
	PlanPeriod   int
	PlanInterval IntervalUnit
	Features     []string
}

// NewMembershipPlan creates a validated catalog plan
func NewMembershipPlan(name string, price valueobject.Money, period int, interval IntervalUnit, features []string) (*MembershipPlan, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("INVALID_PLAN_NAME", "Plan name cannot be empty")
	}
	if period <= 0 {
		return nil, shared.NewValidationError("INVALID_PLAN_PERIOD", "Plan period must be positive")
	}
	if !interval.IsValid() {
		return nil, shared.NewValidationError("INVALID_INTERVAL_UNIT", "Interval unit must be days, weeks, months or years")
	}
	return &MembershipPlan{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         strings.TrimSpace(name),
		Price:        price,
		PlanPeriod:   period,
		PlanInterval: interval,
		Features:     features,
	}, nil
}

// EndDateFor returns the last covered date of a membership starting on start.
// The start date counts as the first covered day, so a one-month plan from
// March 10 ends on April 9.
func (p *MembershipPlan) EndDateFor(start time.Time) time.Time {
	var next time.Time
	switch p.PlanInterval {
	case IntervalDays:
		next = start.AddDate(0, 0, p.PlanPeriod)
	case IntervalWeeks:
		next = start.AddDate(0, 0, 7*p.PlanPeriod)
	case IntervalYears:
		next = start.AddDate(p.PlanPeriod, 0, 0)
	default:
		next = start.AddDate(0, p.PlanPeriod, 0)
	}
	return next.AddDate(0, 0, -1)
}

// MonthlyEquivalent converts the plan price to a per-month amount.
// Weeks and days use 52 weeks and 365 days per year.
func (p *MembershipPlan) MonthlyEquivalent() valueobject.Money {
	period := int64(p.PlanPeriod)
	switch p.PlanInterval {
	case IntervalYears:
		return p.Price.Scale(1, 12*period)
	case IntervalWeeks:
		return p.Price.Scale(52, 12*period)
	case IntervalDays:
		return p.Price.Scale(365, 12*period)
	default:
		return p.Price.Scale(1, period)
	}
}

// PlanStats holds read-time aggregates for a plan
type PlanStats struct {
	PlanID             uuid.UUID
	ActiveMembersCount int64
	MonthlyRevenue     valueobject.Money
}

// ComputePlanStats derives monthly revenue from the active member count
func ComputePlanStats(plan *MembershipPlan, activeMembers int64) PlanStats {
	return PlanStats{
		PlanID:             plan.ID,
		ActiveMembersCount: activeMembers,
		MonthlyRevenue:     plan.MonthlyEquivalent().MultiplyByInt(activeMembers),
	}
}
