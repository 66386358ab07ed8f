package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/customer"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/membership"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) assignPlan(t *testing.T, plan *membership.MembershipPlan, skipBill bool) *AssignMembershipResult {
	t.Helper()
	res, err := f.memberships().Assign(context.Background(), AssignMembershipRequest{
		CustomerID: f.customer.ID,
		PlanID:     plan.ID,
		StartDate:  f.now,
		SkipBill:   skipBill,
	})
	require.NoError(t, err)
	return res
}

func activeMemberships(store *memoryStore, customerID uuid.UUID) []membership.Membership {
	var out []membership.Membership
	for _, m := range store.memberships {
		if m.CustomerID == customerID && m.Status == membership.MembershipStatusActive {
			out = append(out, m)
		}
	}
	return out
}

func TestMembershipService_SwapScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.assignPlan(t, f.planA, false)
	assert.Nil(t, first.Superseded)
	assert.Equal(t, membership.MembershipStatusActive, first.Membership.Status)
	assert.Equal(t, "Monthly", first.Membership.PlanName)

	second := f.assignPlan(t, f.planB, false)
	require.NotNil(t, second.Superseded)
	assert.Equal(t, first.Membership.ID, second.Superseded.ID)
	assert.Equal(t, membership.MembershipStatusExpired, second.Superseded.Status)
	assert.Equal(t, second.Membership.ID, *second.Superseded.SupersededBy)

	active := activeMemberships(f.store, f.customer.ID)
	require.Len(t, active, 1)
	assert.Equal(t, f.planB.ID, active[0].MembershipPlanID)

	view, err := f.memberships().CurrentMembership(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, membership.MembershipStatusActive, view.Status)
	require.NotNil(t, view.Membership)
	assert.Equal(t, "Annual", view.Membership.PlanName)
	assert.Equal(t, f.now.AddDate(1, 0, -1), view.Membership.EndDate)

	history, err := f.memberships().ListCustomerMemberships(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	assert.Equal(t, []string{
		membership.EventTypeMembershipAssigned,
		ledger.EventTypeBillCreated,
		membership.EventTypeMembershipAssigned,
		membership.EventTypeMembershipSuperseded,
		ledger.EventTypeBillCreated,
	}, f.events.GetEventTypes())
}

func TestMembershipService_Assign(t *testing.T) {
	ctx := context.Background()

	t.Run("bills the plan price against the new membership", func(t *testing.T) {
		f := newFixture(t)
		res := f.assignPlan(t, f.planA, false)

		require.NotNil(t, res.Bill)
		assert.Equal(t, ledger.BillTypeMembershipSubscription, res.Bill.BillType)
		assert.Equal(t, php(1500), res.Bill.NetAmount)
		require.NotNil(t, res.Bill.ReferenceID)
		assert.Equal(t, res.Membership.ID, *res.Bill.ReferenceID)
		assert.Equal(t, "Monthly", res.Bill.Remark)
		assert.Len(t, f.store.bills, 1)
	})

	t.Run("skip bill", func(t *testing.T) {
		f := newFixture(t)
		res := f.assignPlan(t, f.planA, true)
		assert.Nil(t, res.Bill)
		assert.Empty(t, f.store.bills)
	})

	t.Run("unknown plan", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.memberships().Assign(ctx, AssignMembershipRequest{
			CustomerID: f.customer.ID,
			PlanID:     uuid.New(),
		})
		assert.True(t, errors.Is(err, shared.ErrPlanNotFound))
		assert.Empty(t, f.store.memberships)
	})

	t.Run("unknown customer", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.memberships().Assign(ctx, AssignMembershipRequest{
			CustomerID: uuid.New(),
			PlanID:     f.planA.ID,
		})
		assert.True(t, errors.Is(err, shared.ErrCustomerNotFound))
	})

	t.Run("start date defaults to now", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.memberships().Assign(ctx, AssignMembershipRequest{
			CustomerID: f.customer.ID,
			PlanID:     f.planA.ID,
			SkipBill:   true,
		})
		require.NoError(t, err)
		assert.Equal(t, f.now, res.Membership.StartDate)
	})

	t.Run("backdated membership that already ended is still billed", func(t *testing.T) {
		f := newFixture(t)
		first := f.assignPlan(t, f.planB, true)

		res, err := f.memberships().Assign(ctx, AssignMembershipRequest{
			CustomerID: f.customer.ID,
			PlanID:     f.planA.ID,
			StartDate:  f.now.AddDate(0, -3, 0),
		})
		require.NoError(t, err)
		require.NotNil(t, res.Superseded)
		assert.Equal(t, first.Membership.ID, res.Superseded.ID)
		assert.Equal(t, membership.MembershipStatusExpired, res.Membership.Status)

		require.NotNil(t, res.Bill)
		assert.Equal(t, ledger.BillTypeMembershipSubscription, res.Bill.BillType)
		assert.Equal(t, res.Membership.ID, *res.Bill.ReferenceID)
		assert.Len(t, f.store.bills, 1)

		active := activeMemberships(f.store, f.customer.ID)
		require.Len(t, active, 1)
		assert.Equal(t, res.Membership.ID, active[0].ID)
	})

	t.Run("bill failure rolls back the swap", func(t *testing.T) {
		f := newFixture(t)
		first := f.assignPlan(t, f.planA, true)
		f.events.Reset()
		f.store.failOn("bills.save", errors.New("connection reset"))

		_, err := f.memberships().Assign(ctx, AssignMembershipRequest{
			CustomerID: f.customer.ID,
			PlanID:     f.planB.ID,
			StartDate:  f.now,
		})
		assert.True(t, errors.Is(err, shared.ErrAtomicity))

		active := activeMemberships(f.store, f.customer.ID)
		require.Len(t, active, 1)
		assert.Equal(t, first.Membership.ID, active[0].ID)
		assert.Len(t, f.store.memberships, 1)
		assert.Empty(t, f.store.bills)
		assert.Empty(t, f.events.GetEventTypes())
	})

	t.Run("membership save failure keeps the old membership", func(t *testing.T) {
		f := newFixture(t)
		first := f.assignPlan(t, f.planA, true)
		f.store.failOn("memberships.save", errors.New("deadlock"))

		_, err := f.memberships().Assign(ctx, AssignMembershipRequest{
			CustomerID: f.customer.ID,
			PlanID:     f.planB.ID,
			StartDate:  f.now,
		})
		assert.True(t, errors.Is(err, shared.ErrAtomicity))
		assert.Equal(t, membership.MembershipStatusActive, f.store.memberships[first.Membership.ID].Status)
	})
}

func TestMembershipService_CurrentMembership(t *testing.T) {
	ctx := context.Background()

	t.Run("NONE without a membership", func(t *testing.T) {
		f := newFixture(t)
		view, err := f.memberships().CurrentMembership(ctx, f.customer.ID)
		require.NoError(t, err)
		assert.Equal(t, membership.MembershipStatusNone, view.Status)
		assert.Nil(t, view.Membership)
	})

	t.Run("expiry is computed at read time", func(t *testing.T) {
		f := newFixture(t)
		res := f.assignPlan(t, f.planA, true)

		f.now = testNow.AddDate(0, 1, -1)
		view, err := f.memberships().CurrentMembership(ctx, f.customer.ID)
		require.NoError(t, err)
		assert.Equal(t, membership.MembershipStatusActive, view.Status, "end date is inclusive")

		f.now = testNow.AddDate(0, 1, 0)
		view, err = f.memberships().CurrentMembership(ctx, f.customer.ID)
		require.NoError(t, err)
		assert.Equal(t, membership.MembershipStatusExpired, view.Status)
		assert.Equal(t, membership.MembershipStatusActive, f.store.memberships[res.Membership.ID].Status)
	})

	t.Run("unknown customer", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.memberships().CurrentMembership(ctx, uuid.New())
		assert.True(t, errors.Is(err, shared.ErrCustomerNotFound))
	})
}

func TestMembershipService_PlanStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.assignPlan(t, f.planA, true)
	other, err := customer.NewCustomer("Maria", "Santos", "maria@example.com", "")
	require.NoError(t, err)
	f.store.customers[other.ID] = *other
	_, err = f.memberships().Assign(ctx, AssignMembershipRequest{
		CustomerID: other.ID,
		PlanID:     f.planA.ID,
		StartDate:  f.now,
		SkipBill:   true,
	})
	require.NoError(t, err)

	stats, err := f.memberships().PlanStats(ctx, f.planA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ActiveMembersCount)
	assert.Equal(t, php(3000), stats.MonthlyRevenue)
	assert.Equal(t, "Monthly", stats.PlanName)

	annual, err := f.memberships().PlanStats(ctx, f.planB.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), annual.ActiveMembersCount)
	assert.True(t, annual.MonthlyRevenue.IsZero())

	f.now = testNow.AddDate(0, 2, 0)
	later, err := f.memberships().PlanStats(ctx, f.planA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), later.ActiveMembersCount)

	_, err = f.memberships().PlanStats(ctx, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrPlanNotFound))
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("PHT", 8*60*60)
	got := startOfDay(time.Date(2026, 3, 10, 23, 59, 0, 0, loc))
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, loc), got)
}
