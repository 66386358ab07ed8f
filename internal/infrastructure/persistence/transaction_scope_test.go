package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/application/entitlement"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/membership"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/training"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_Execute(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)
	scope := NewGormTransactionScope(db.DB)
	repos := NewGormRepositories(db.DB)
	c := seedCustomer(t, repos)

	t.Run("commits on success", func(t *testing.T) {
		var bill *ledger.Bill
		err := scope.Execute(ctx, func(tx entitlement.TransactionalRepositories) error {
			var err error
			bill, err = ledger.NewBill(c.ID, ledger.BillTypeCustomAmount, php(100), valueobject.Percentage{}, day(time.May, 1), nil)
			if err != nil {
				return err
			}
			return tx.BillRepo().Save(ctx, bill)
		})
		require.NoError(t, err)

		_, err = repos.BillRepo().FindByID(ctx, bill.ID)
		assert.NoError(t, err)
	})

	t.Run("rolls back every write on error", func(t *testing.T) {
		boom := errors.New("boom")
		var bill *ledger.Bill
		err := scope.Execute(ctx, func(tx entitlement.TransactionalRepositories) error {
			var err error
			bill, err = ledger.NewBill(c.ID, ledger.BillTypeCustomAmount, php(200), valueobject.Percentage{}, day(time.May, 2), nil)
			if err != nil {
				return err
			}
			if err := tx.BillRepo().Save(ctx, bill); err != nil {
				return err
			}
			payment, err := ledger.NewPayment(bill, php(50), ledger.PaymentMethodCash, "", day(time.May, 2))
			if err != nil {
				return err
			}
			if err := tx.PaymentRepo().Save(ctx, payment); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = repos.BillRepo().FindByID(ctx, bill.ID)
		assert.ErrorIs(t, err, shared.ErrBillNotFound)
		payments, err := repos.PaymentRepo().FindByBill(ctx, bill.ID)
		require.NoError(t, err)
		assert.Empty(t, payments)
	})
}

// TestEntitlementServices_GORM runs the composite operations against a real database
func TestEntitlementServices_GORM(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)
	scope := NewGormTransactionScope(db.DB)
	repos := NewGormRepositories(db.DB)
	c := seedCustomer(t, repos)
	now := day(time.March, 1)
	opts := []entitlement.Option{
		entitlement.WithClock(func() time.Time { return now }),
		entitlement.WithCurrency(valueobject.PHP),
	}

	monthly, err := membership.NewMembershipPlan("Monthly", php(1500), 1, membership.IntervalMonths, nil)
	require.NoError(t, err)
	annual, err := membership.NewMembershipPlan("Annual", php(15000), 1, membership.IntervalYears, nil)
	require.NoError(t, err)
	require.NoError(t, NewGormPlanRepository(db.DB).Save(ctx, monthly))
	require.NoError(t, NewGormPlanRepository(db.DB).Save(ctx, annual))
	pkg, err := training.NewPtPackage("10 Sessions", php(5000), 10, "")
	require.NoError(t, err)
	require.NoError(t, NewGormPackageRepository(db.DB).Save(ctx, pkg))

	memberships := entitlement.NewMembershipService(scope, repos, opts...)
	payments := entitlement.NewPaymentService(scope, repos, opts...)
	allocations := entitlement.NewPtAllocationService(scope, repos, opts...)

	t.Run("membership swap keeps one active row", func(t *testing.T) {
		_, err := memberships.Assign(ctx, entitlement.AssignMembershipRequest{CustomerID: c.ID, PlanID: monthly.ID})
		require.NoError(t, err)
		result, err := memberships.Assign(ctx, entitlement.AssignMembershipRequest{CustomerID: c.ID, PlanID: annual.ID})
		require.NoError(t, err)
		require.NotNil(t, result.Superseded)
		require.NotNil(t, result.Bill)
		assert.Equal(t, int64(1500000), result.Bill.NetAmount.Minor())

		history, err := repos.MembershipRepo().FindByCustomer(ctx, c.ID)
		require.NoError(t, err)
		active := 0
		for _, m := range history {
			if m.Status == membership.MembershipStatusActive {
				active++
			}
		}
		assert.Equal(t, 1, active)

		view, err := memberships.CurrentMembership(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, membership.MembershipStatusActive, view.Status)
	})

	t.Run("payment is atomic with the bill status", func(t *testing.T) {
		open, err := repos.BillRepo().FindOpenByCustomer(ctx, c.ID)
		require.NoError(t, err)
		require.NotEmpty(t, open)
		bill := open[0]

		result, err := payments.AddPayment(ctx, entitlement.AddPaymentRequest{
			BillID: bill.ID,
			Amount: bill.NetAmount,
			Method: ledger.PaymentMethodCard,
		})
		require.NoError(t, err)
		assert.Equal(t, ledger.BillStatusPaid, result.Bill.Status)

		stored, err := repos.BillRepo().FindByID(ctx, bill.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.BillStatusPaid, stored.Status)
		assert.Equal(t, bill.NetAmount.Minor(), stored.PaidAmount.Minor())
	})

	t.Run("PT cancel voids the linked bill", func(t *testing.T) {
		assigned, err := allocations.Assign(ctx, entitlement.AssignPtPackageRequest{CustomerID: c.ID, PackageID: pkg.ID})
		require.NoError(t, err)
		require.NotNil(t, assigned.Bill)

		cancelled, err := allocations.Cancel(ctx, entitlement.CancelPtPackageRequest{
			AllocationID: assigned.Allocation.ID,
			Reason:       "injury",
		})
		require.NoError(t, err)
		assert.Equal(t, training.AllocationStatusCancelled, cancelled.Allocation.Status)

		bill, err := repos.BillRepo().FindByID(ctx, assigned.Bill.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.BillStatusVoided, bill.Status)
		assert.NotNil(t, bill.VoidedAt)
	})
}
