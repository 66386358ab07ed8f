package entitlement

import (
	"context"
	"errors"
	"testing"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/training"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) assignPackage(t *testing.T, pkg *training.PtPackage) *PtPackageResult {
	t.Helper()
	res, err := f.allocations().Assign(context.Background(), AssignPtPackageRequest{
		CustomerID: f.customer.ID,
		PackageID:  pkg.ID,
		StartDate:  f.now,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) balance(t *testing.T) valueobject.Money {
	t.Helper()
	open, err := f.store.BillRepo().FindOpenByCustomer(context.Background(), f.customer.ID)
	require.NoError(t, err)
	balance, err := ledger.CustomerBalance(valueobject.PHP, open)
	require.NoError(t, err)
	return balance
}

func TestPtAllocationService_CancelScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assigned := f.assignPackage(t, f.pkg)
	require.NotNil(t, assigned.Bill)
	assert.Equal(t, training.AllocationStatusActive, assigned.Allocation.Status)
	assert.Equal(t, 10, assigned.Allocation.SessionsRemaining)
	assert.Equal(t, ledger.BillTypePtPackage, assigned.Bill.BillType)
	assert.Equal(t, php(5000), assigned.Bill.NetAmount)
	assert.Equal(t, assigned.Allocation.ID, *assigned.Bill.ReferenceID)
	assert.Equal(t, assigned.Bill.ID, *assigned.Allocation.BillID)
	assert.Equal(t, php(5000), f.balance(t))

	cancelled, err := f.allocations().Cancel(ctx, CancelPtPackageRequest{
		AllocationID: assigned.Allocation.ID,
		Reason:       "moved abroad",
	})
	require.NoError(t, err)
	assert.Equal(t, training.AllocationStatusCancelled, cancelled.Allocation.Status)
	assert.Equal(t, "moved abroad", cancelled.Allocation.CancelReason)
	require.NotNil(t, cancelled.Bill)
	assert.Equal(t, ledger.BillStatusVoided, cancelled.Bill.Status)

	assert.Equal(t, ledger.BillStatusVoided, f.store.bills[assigned.Bill.ID].Status)
	assert.Equal(t, training.AllocationStatusCancelled, f.store.allocations[assigned.Allocation.ID].Status)
	assert.True(t, f.balance(t).IsZero())
}

func TestPtAllocationService_Assign(t *testing.T) {
	ctx := context.Background()

	t.Run("discount applies to the package bill", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.allocations().Assign(ctx, AssignPtPackageRequest{
			CustomerID: f.customer.ID,
			PackageID:  f.pkg.ID,
			Discount:   valueobject.MustPercentage(10),
		})
		require.NoError(t, err)
		assert.Equal(t, php(4500), res.Bill.NetAmount)
		assert.Equal(t, f.now, res.Allocation.StartDate)
	})

	t.Run("unknown package", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.allocations().Assign(ctx, AssignPtPackageRequest{
			CustomerID: f.customer.ID,
			PackageID:  uuid.New(),
		})
		assert.True(t, errors.Is(err, shared.ErrPackageNotFound))
	})

	t.Run("allocation failure leaves no bill", func(t *testing.T) {
		f := newFixture(t)
		f.store.failOn("allocations.save", errors.New("connection reset"))

		_, err := f.allocations().Assign(ctx, AssignPtPackageRequest{
			CustomerID: f.customer.ID,
			PackageID:  f.pkg.ID,
		})
		assert.True(t, errors.Is(err, shared.ErrAtomicity))
		assert.Empty(t, f.store.bills)
		assert.Empty(t, f.store.allocations)
		assert.Empty(t, f.events.GetEventTypes())
	})
}

func TestPtAllocationService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("paid bill is voided", func(t *testing.T) {
		f := newFixture(t)
		assigned := f.assignPackage(t, f.pkg)
		_, err := f.pay(t, assigned.Bill, 5000)
		require.NoError(t, err)

		cancelled, err := f.allocations().Cancel(ctx, CancelPtPackageRequest{AllocationID: assigned.Allocation.ID})
		require.NoError(t, err)
		assert.Equal(t, ledger.BillStatusVoided, cancelled.Bill.Status)
		assert.Equal(t, php(5000), cancelled.Bill.PaidAmount)
		assert.Equal(t, "PT package cancelled", f.store.bills[assigned.Bill.ID].VoidReason)
	})

	t.Run("second cancel is rejected", func(t *testing.T) {
		f := newFixture(t)
		assigned := f.assignPackage(t, f.pkg)
		_, err := f.allocations().Cancel(ctx, CancelPtPackageRequest{AllocationID: assigned.Allocation.ID})
		require.NoError(t, err)

		_, err = f.allocations().Cancel(ctx, CancelPtPackageRequest{AllocationID: assigned.Allocation.ID})
		assert.True(t, errors.Is(err, shared.ErrAlreadyCancelled))
		assert.Equal(t, shared.KindStateConflict, shared.KindOf(err))
	})

	t.Run("allocation failure keeps the bill open", func(t *testing.T) {
		f := newFixture(t)
		assigned := f.assignPackage(t, f.pkg)
		f.store.failOn("allocations.save", errors.New("deadlock"))

		_, err := f.allocations().Cancel(ctx, CancelPtPackageRequest{AllocationID: assigned.Allocation.ID})
		assert.True(t, errors.Is(err, shared.ErrAtomicity))
		assert.Equal(t, ledger.BillStatusActive, f.store.bills[assigned.Bill.ID].Status)
		assert.Equal(t, training.AllocationStatusActive, f.store.allocations[assigned.Allocation.ID].Status)
		assert.Equal(t, php(5000), f.balance(t))
	})

	t.Run("deleted bill leaves nothing to void", func(t *testing.T) {
		f := newFixture(t)
		assigned := f.assignPackage(t, f.pkg)
		_, err := f.bills().DeleteBill(ctx, assigned.Bill.ID)
		require.NoError(t, err)

		cancelled, err := f.allocations().Cancel(ctx, CancelPtPackageRequest{AllocationID: assigned.Allocation.ID})
		require.NoError(t, err)
		assert.Nil(t, cancelled.Bill)
		assert.Equal(t, training.AllocationStatusCancelled, cancelled.Allocation.Status)
	})

	t.Run("unknown allocation", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.allocations().Cancel(ctx, CancelPtPackageRequest{AllocationID: uuid.New()})
		assert.True(t, errors.Is(err, shared.ErrAllocationNotFound))
	})
}

func TestPtAllocationService_ConsumeSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pair, err := training.NewPtPackage("2 Sessions", php(1200), 2, "")
	require.NoError(t, err)
	f.store.packages[pair.ID] = *pair

	assigned := f.assignPackage(t, pair)
	id := assigned.Allocation.ID

	res, err := f.allocations().ConsumeSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SessionsRemaining)
	assert.Equal(t, training.AllocationStatusActive, res.Status)

	res, err = f.allocations().ConsumeSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, res.SessionsRemaining)
	assert.Equal(t, training.AllocationStatusCompleted, res.Status)
	assert.NotNil(t, res.CompletedAt)

	_, err = f.allocations().ConsumeSession(ctx, id)
	assert.True(t, errors.Is(err, shared.ErrNoSessionsRemaining))

	_, err = f.allocations().Cancel(ctx, CancelPtPackageRequest{AllocationID: id})
	assert.True(t, errors.Is(err, shared.ErrAlreadyCancelled))

	list, err := f.allocations().ListCustomerAllocations(ctx, f.customer.ID, training.AllocationStatusCompleted)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = f.allocations().ListCustomerAllocations(ctx, f.customer.ID, training.AllocationStatusActive)
	require.NoError(t, err)
	assert.Empty(t, list)
}
