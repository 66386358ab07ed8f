package entitlement

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/customer"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/membership"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/training"
	"github.com/google/uuid"
)

// memoryStore is an in-memory ledger with a transaction scope that restores a
// snapshot when the unit of work fails. Faults can be injected per operation.
type memoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	customers   map[uuid.UUID]customer.Customer
	plans       map[uuid.UUID]membership.MembershipPlan
	packages    map[uuid.UUID]training.PtPackage
	bills       map[uuid.UUID]ledger.Bill
	payments    map[uuid.UUID]ledger.Payment
	memberships map[uuid.UUID]membership.Membership
	allocations map[uuid.UUID]training.PtPackageAllocation

	faults map[string]error
	calls  map[string]int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		customers:   make(map[uuid.UUID]customer.Customer),
		plans:       make(map[uuid.UUID]membership.MembershipPlan),
		packages:    make(map[uuid.UUID]training.PtPackage),
		bills:       make(map[uuid.UUID]ledger.Bill),
		payments:    make(map[uuid.UUID]ledger.Payment),
		memberships: make(map[uuid.UUID]membership.Membership),
		allocations: make(map[uuid.UUID]training.PtPackageAllocation),
		faults:      make(map[string]error),
		calls:       make(map[string]int),
	}
}

type snapshot struct {
	bills       map[uuid.UUID]ledger.Bill
	payments    map[uuid.UUID]ledger.Payment
	memberships map[uuid.UUID]membership.Membership
	allocations map[uuid.UUID]training.PtPackageAllocation
}

// Execute implements TransactionScope
func (s *memoryStore) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := snapshot{
		bills:       maps.Clone(s.bills),
		payments:    maps.Clone(s.payments),
		memberships: maps.Clone(s.memberships),
		allocations: maps.Clone(s.allocations),
	}
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.bills = snap.bills
		s.payments = snap.payments
		s.memberships = snap.memberships
		s.allocations = snap.allocations
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memoryStore) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

func (s *memoryStore) clearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string]error)
}

func (s *memoryStore) callCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// fault must be called with s.mu held
func (s *memoryStore) fault(op string) error {
	s.calls[op]++
	return s.faults[op]
}

func (s *memoryStore) BillRepo() ledger.BillRepository                 { return memBills{s} }
func (s *memoryStore) PaymentRepo() ledger.PaymentRepository           { return memPayments{s} }
func (s *memoryStore) MembershipRepo() membership.MembershipRepository { return memMemberships{s} }
func (s *memoryStore) AllocationRepo() training.AllocationRepository   { return memAllocations{s} }
func (s *memoryStore) CustomerRepo() customer.Repository               { return memCustomers{s} }
func (s *memoryStore) PlanCatalog() membership.PlanCatalog             { return memPlans{s} }
func (s *memoryStore) PackageCatalog() training.PackageCatalog         { return memPackages{s} }

var _ TransactionScope = (*memoryStore)(nil)
var _ TransactionalRepositories = (*memoryStore)(nil)

// ============================================
// Bills
// ============================================

type memBills struct{ s *memoryStore }

func (r memBills) FindByID(_ context.Context, id uuid.UUID) (*ledger.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("bills.find"); err != nil {
		return nil, err
	}
	b, ok := r.s.bills[id]
	if !ok {
		return nil, shared.ErrBillNotFound
	}
	b.ClearDomainEvents()
	return &b, nil
}

func (r memBills) FindByCustomer(_ context.Context, customerID uuid.UUID, filter ledger.BillFilter) ([]ledger.Bill, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []ledger.Bill
	for _, b := range r.s.bills {
		if b.CustomerID != customerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, b.Status) {
			continue
		}
		if filter.BillType != nil && b.BillType != *filter.BillType {
			continue
		}
		b.ClearDomainEvents()
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BillDate.After(out[j].BillDate) })
	total := int64(len(out))
	f := filter.Filter.Normalize()
	start := min(f.Offset(), len(out))
	end := min(start+f.PageSize, len(out))
	return out[start:end], total, nil
}

func (r memBills) FindOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]ledger.Bill, error) {
	bills, _, err := r.FindByCustomer(ctx, customerID, ledger.BillFilter{
		Filter:   shared.Filter{PageSize: 200},
		Statuses: []ledger.BillStatus{ledger.BillStatusActive, ledger.BillStatusPartial},
	})
	return bills, err
}

func (r memBills) FindByReference(_ context.Context, customerID, referenceID uuid.UUID, billType ledger.BillType) (*ledger.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bills {
		if b.CustomerID == customerID && b.BillType == billType && b.ReferenceID != nil && *b.ReferenceID == referenceID {
			b.ClearDomainEvents()
			return &b, nil
		}
	}
	return nil, shared.ErrBillNotFound
}

func (r memBills) Save(_ context.Context, bill *ledger.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("bills.save"); err != nil {
		return err
	}
	r.s.bills[bill.ID] = *bill
	return nil
}

func (r memBills) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("bills.delete"); err != nil {
		return err
	}
	delete(r.s.bills, id)
	return nil
}

func containsStatus(statuses []ledger.BillStatus, status ledger.BillStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// ============================================
// Payments
// ============================================

type memPayments struct{ s *memoryStore }

func (r memPayments) FindByID(_ context.Context, id uuid.UUID) (*ledger.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, shared.ErrPaymentNotFound
	}
	return &p, nil
}

func (r memPayments) FindByBill(_ context.Context, billID uuid.UUID) ([]ledger.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []ledger.Payment
	for _, p := range r.s.payments {
		if p.BillID == billID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memPayments) FindByCustomer(_ context.Context, customerID uuid.UUID, filter shared.Filter) ([]ledger.Payment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []ledger.Payment
	for _, p := range r.s.payments {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	f := filter.Normalize()
	start := min(f.Offset(), len(out))
	end := min(start+f.PageSize, len(out))
	return out[start:end], total, nil
}

func (r memPayments) Save(_ context.Context, payment *ledger.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("payments.save"); err != nil {
		return err
	}
	r.s.payments[payment.ID] = *payment
	return nil
}

func (r memPayments) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("payments.delete"); err != nil {
		return err
	}
	delete(r.s.payments, id)
	return nil
}

func (r memPayments) DeleteByBill(_ context.Context, billID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("payments.delete"); err != nil {
		return err
	}
	for id, p := range r.s.payments {
		if p.BillID == billID {
			delete(r.s.payments, id)
		}
	}
	return nil
}

// ============================================
// Memberships and plans
// ============================================

type memMemberships struct{ s *memoryStore }

func (r memMemberships) FindByID(_ context.Context, id uuid.UUID) (*membership.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.memberships[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	m.ClearDomainEvents()
	return &m, nil
}

func (r memMemberships) FindCurrent(_ context.Context, customerID uuid.UUID) (*membership.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.memberships {
		if m.CustomerID == customerID && m.Status == membership.MembershipStatusActive {
			m.ClearDomainEvents()
			return &m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memMemberships) FindByCustomer(_ context.Context, customerID uuid.UUID) ([]membership.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []membership.Membership
	for _, m := range r.s.memberships {
		if m.CustomerID == customerID {
			m.ClearDomainEvents()
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (r memMemberships) CountActiveByPlan(_ context.Context, planID uuid.UUID, asOf time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, m := range r.s.memberships {
		if m.MembershipPlanID == planID && m.Status == membership.MembershipStatusActive && !m.EndDate.Before(asOf) {
			n++
		}
	}
	return n, nil
}

func (r memMemberships) Save(_ context.Context, m *membership.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("memberships.save"); err != nil {
		return err
	}
	r.s.memberships[m.ID] = *m
	return nil
}

type memPlans struct{ s *memoryStore }

func (r memPlans) Get(_ context.Context, id uuid.UUID) (*membership.MembershipPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, shared.ErrPlanNotFound
	}
	return &p, nil
}

// ============================================
// Allocations and packages
// ============================================

type memAllocations struct{ s *memoryStore }

func (r memAllocations) FindByID(_ context.Context, id uuid.UUID) (*training.PtPackageAllocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.allocations[id]
	if !ok {
		return nil, shared.ErrAllocationNotFound
	}
	a.ClearDomainEvents()
	return &a, nil
}

func (r memAllocations) FindByCustomer(_ context.Context, customerID uuid.UUID, statuses ...training.AllocationStatus) ([]training.PtPackageAllocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []training.PtPackageAllocation
	for _, a := range r.s.allocations {
		if a.CustomerID != customerID {
			continue
		}
		if len(statuses) > 0 {
			match := false
			for _, st := range statuses {
				match = match || a.Status == st
			}
			if !match {
				continue
			}
		}
		a.ClearDomainEvents()
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memAllocations) Save(_ context.Context, a *training.PtPackageAllocation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("allocations.save"); err != nil {
		return err
	}
	r.s.allocations[a.ID] = *a
	return nil
}

type memPackages struct{ s *memoryStore }

func (r memPackages) Get(_ context.Context, id uuid.UUID) (*training.PtPackage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.packages[id]
	if !ok {
		return nil, shared.ErrPackageNotFound
	}
	return &p, nil
}

// ============================================
// Customers
// ============================================

type memCustomers struct{ s *memoryStore }

func (r memCustomers) FindByID(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("customers.find"); err != nil {
		return nil, err
	}
	c, ok := r.s.customers[id]
	if !ok {
		return nil, shared.ErrCustomerNotFound
	}
	return &c, nil
}

func (r memCustomers) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.customers[id]
	return ok, nil
}

func (r memCustomers) Save(_ context.Context, c *customer.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.customers[c.ID] = *c
	return nil
}
