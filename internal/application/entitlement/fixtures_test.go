package entitlement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/customer"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/membership"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/training"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.events))
	for i, e := range m.events {
		types[i] = e.EventType()
	}
	return types
}

func (m *MockEventPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = make([]shared.DomainEvent, 0)
}

// MockNotifier is a mock implementation of shared.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, kind shared.NotificationKind, message string) {
	m.Called(ctx, kind, message)
}

var testNow = time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)

func php(major int64) valueobject.Money {
	return valueobject.MustNewMoney(major*100, valueobject.PHP)
}

type fixture struct {
	store    *memoryStore
	events   *MockEventPublisher
	notifier *MockNotifier
	now      time.Time
	opts     []Option

	customer *customer.Customer
	planA    *membership.MembershipPlan
	planB    *membership.MembershipPlan
	pkg      *training.PtPackage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    newMemoryStore(),
		events:   NewMockEventPublisher(),
		notifier: new(MockNotifier),
		now:      testNow,
	}
	f.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything).Maybe()
	f.opts = []Option{
		WithEventPublisher(f.events),
		WithNotifier(f.notifier),
		WithClock(func() time.Time { return f.now }),
		WithCurrency(valueobject.PHP),
	}

	var err error
	f.customer, err = customer.NewCustomer("Juan", "Dela Cruz", "juan@example.com", "")
	require.NoError(t, err)
	f.store.customers[f.customer.ID] = *f.customer

	f.planA, err = membership.NewMembershipPlan("Monthly", php(1500), 1, membership.IntervalMonths, []string{"gym floor"})
	require.NoError(t, err)
	f.planB, err = membership.NewMembershipPlan("Annual", php(15000), 1, membership.IntervalYears, []string{"gym floor", "classes"})
	require.NoError(t, err)
	f.store.plans[f.planA.ID] = *f.planA
	f.store.plans[f.planB.ID] = *f.planB

	f.pkg, err = training.NewPtPackage("10 Sessions", php(5000), 10, "")
	require.NoError(t, err)
	f.store.packages[f.pkg.ID] = *f.pkg

	return f
}

func (f *fixture) bills() *BillService {
	return NewBillService(f.store, f.store, f.opts...)
}

func (f *fixture) payments() *PaymentService {
	return NewPaymentService(f.store, f.store, f.opts...)
}

func (f *fixture) memberships() *MembershipService {
	return NewMembershipService(f.store, f.store, f.opts...)
}

func (f *fixture) allocations() *PtAllocationService {
	return NewPtAllocationService(f.store, f.store, f.opts...)
}

func (f *fixture) createBill(t *testing.T, gross, discount int64) *BillResponse {
	t.Helper()
	bill, err := f.bills().CreateBill(context.Background(), CreateBillRequest{
		CustomerID:  f.customer.ID,
		BillType:    "CUSTOM_AMOUNT",
		GrossAmount: php(gross),
		Discount:    valueobject.MustPercentage(discount),
		BillDate:    f.now,
	})
	require.NoError(t, err)
	return bill
}

func (f *fixture) pay(t *testing.T, bill *BillResponse, amount int64) (*PaymentResult, error) {
	t.Helper()
	return f.payments().AddPayment(context.Background(), AddPaymentRequest{
		BillID:      bill.ID,
		Amount:      php(amount),
		Method:      "CASH",
		PaymentDate: f.now,
	})
}
