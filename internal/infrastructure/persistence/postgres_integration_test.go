//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/application/entitlement"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/customer"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/membership"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDatabase starts a disposable PostgreSQL container and applies the
// embedded migrations to it.
func newPostgresDatabase(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("gym_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	version, dirty, err := m.Version()
	require.NoError(t, err)
	require.False(t, dirty)
	require.GreaterOrEqual(t, version, uint(1))

	database := &Database{DB: db, Driver: "postgres"}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestPostgres_LedgerFlow(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDatabase(t)
	scope := NewGormTransactionScope(db.DB)
	repos := NewGormRepositories(db.DB)

	c, err := customer.NewCustomer("Ana", "Reyes", "ana@example.com", "")
	require.NoError(t, err)
	require.NoError(t, repos.CustomerRepo().Save(ctx, c))

	plan, err := membership.NewMembershipPlan("Monthly", php(1500), 1, membership.IntervalMonths, []string{"gym floor"})
	require.NoError(t, err)
	require.NoError(t, NewGormPlanRepository(db.DB).Save(ctx, plan))

	opts := []entitlement.Option{entitlement.WithCurrency(valueobject.PHP)}
	bills := entitlement.NewBillService(scope, repos, opts...)
	payments := entitlement.NewPaymentService(scope, repos, opts...)
	memberships := entitlement.NewMembershipService(scope, repos, opts...)

	t.Run("bill and payments", func(t *testing.T) {
		bill, err := bills.CreateBill(ctx, entitlement.CreateBillRequest{
			CustomerID:  c.ID,
			BillType:    ledger.BillTypeCustomAmount,
			GrossAmount: php(1000),
			Discount:    valueobject.MustPercentage(10),
		})
		require.NoError(t, err)

		_, err = payments.AddPayment(ctx, entitlement.AddPaymentRequest{BillID: bill.ID, Amount: php(500), Method: ledger.PaymentMethodCash})
		require.NoError(t, err)
		result, err := payments.AddPayment(ctx, entitlement.AddPaymentRequest{BillID: bill.ID, Amount: php(400), Method: ledger.PaymentMethodGCash})
		require.NoError(t, err)
		assert.Equal(t, ledger.BillStatusPaid, result.Bill.Status)

		_, err = payments.AddPayment(ctx, entitlement.AddPaymentRequest{BillID: bill.ID, Amount: php(1), Method: ledger.PaymentMethodCash})
		assert.ErrorIs(t, err, shared.ErrOverPayment)
	})

	t.Run("concurrent payments never exceed the net amount", func(t *testing.T) {
		bill, err := bills.CreateBill(ctx, entitlement.CreateBillRequest{
			CustomerID:  c.ID,
			BillType:    ledger.BillTypeCustomAmount,
			GrossAmount: php(1000),
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = payments.AddPayment(ctx, entitlement.AddPaymentRequest{BillID: bill.ID, Amount: php(400), Method: ledger.PaymentMethodCash})
			}()
		}
		wg.Wait()

		stored, err := repos.BillRepo().FindByID(ctx, bill.ID)
		require.NoError(t, err)
		recorded, err := repos.PaymentRepo().FindByBill(ctx, bill.ID)
		require.NoError(t, err)

		var sum int64
		for _, p := range recorded {
			sum += p.Amount.Minor()
		}
		assert.Equal(t, sum, stored.PaidAmount.Minor())
		assert.LessOrEqual(t, stored.PaidAmount.Minor(), stored.NetAmount.Minor())
	})

	t.Run("partial unique index allows one active membership", func(t *testing.T) {
		_, err := memberships.Assign(ctx, entitlement.AssignMembershipRequest{CustomerID: c.ID, PlanID: plan.ID})
		require.NoError(t, err)
		_, err = memberships.Assign(ctx, entitlement.AssignMembershipRequest{CustomerID: c.ID, PlanID: plan.ID})
		require.NoError(t, err)

		var active int64
		require.NoError(t, db.DB.Table("memberships").
			Where("customer_id = ? AND status = ?", c.ID, "ACTIVE").
			Count(&active).Error)
		assert.Equal(t, int64(1), active)

		dup, err := membership.NewMembership(c.ID, plan, time.Now())
		require.NoError(t, err)
		assert.Error(t, repos.MembershipRepo().Save(ctx, dup))
	})
}
