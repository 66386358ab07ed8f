package entitlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/training"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/cache"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/logger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Synced is the outcome of a committed mutation together with the freshness of the
// customer's views. View.Fresh=false never means the mutation failed.
type Synced[T any] struct {
	Value T
	View  cache.SyncResult
}

// Coordinator is the entry point for every operation touching a customer's financial
// or entitlement state. Each mutation runs as one unit of work; once it commits, the
// customer's views are invalidated and the detail view is refreshed before returning.
// Callers are expected to have checked permissions already.
type Coordinator struct {
	base
	bills       *BillService
	payments    *PaymentService
	memberships *MembershipService
	allocations *PtAllocationService
	views       *cache.Synchronizer
}

// NewCoordinator creates a Coordinator. views may be nil, in which case every read
// is computed from the ledger and mutations report fresh views.
func NewCoordinator(scope TransactionScope, repos TransactionalRepositories, views *cache.Synchronizer, opts ...Option) *Coordinator {
	c := &Coordinator{
		base:        newBase(scope, repos, opts...),
		bills:       NewBillService(scope, repos, opts...),
		payments:    NewPaymentService(scope, repos, opts...),
		memberships: NewMembershipService(scope, repos, opts...),
		allocations: NewPtAllocationService(scope, repos, opts...),
		views:       views,
	}
	if views != nil {
		views.Register(cache.KindCustomerDetail, c.fetchCustomerDetail)
	}
	return c
}

// ============================================
// Composite operations
// ============================================

// AssignPtPackage allocates a PT package and bills it as one unit of work
func (c *Coordinator) AssignPtPackage(ctx context.Context, req AssignPtPackageRequest) (Synced[*PtPackageResult], error) {
	res, err := c.allocations.Assign(ctx, req)
	if err != nil {
		return Synced[*PtPackageResult]{}, c.fail(ctx, "assign the PT package", err)
	}
	return synced(ctx, c, res.Allocation.CustomerID, res), nil
}

// CancelPtPackage cancels an allocation and voids its bill as one unit of work
func (c *Coordinator) CancelPtPackage(ctx context.Context, req CancelPtPackageRequest) (Synced[*PtPackageResult], error) {
	res, err := c.allocations.Cancel(ctx, req)
	if err != nil {
		return Synced[*PtPackageResult]{}, c.fail(ctx, "cancel the PT package", err)
	}
	return synced(ctx, c, res.Allocation.CustomerID, res), nil
}

// SwapMembership supersedes the current membership and assigns a new plan as one unit of work
func (c *Coordinator) SwapMembership(ctx context.Context, req AssignMembershipRequest) (Synced[*AssignMembershipResult], error) {
	res, err := c.memberships.Assign(ctx, req)
	if err != nil {
		return Synced[*AssignMembershipResult]{}, c.fail(ctx, "assign the membership", err)
	}
	return synced(ctx, c, res.Membership.CustomerID, res), nil
}

// ============================================
// Single-entity mutations
// ============================================

// CreateBill creates a bill
func (c *Coordinator) CreateBill(ctx context.Context, req CreateBillRequest) (Synced[*BillResponse], error) {
	res, err := c.bills.CreateBill(ctx, req)
	if err != nil {
		return Synced[*BillResponse]{}, c.fail(ctx, "create the bill", err)
	}
	return synced(ctx, c, res.CustomerID, res), nil
}

// UpdateBill edits an unpaid bill
func (c *Coordinator) UpdateBill(ctx context.Context, billID uuid.UUID, req UpdateBillRequest) (Synced[*BillResponse], error) {
	res, err := c.bills.UpdateBill(ctx, billID, req)
	if err != nil {
		return Synced[*BillResponse]{}, c.fail(ctx, "update the bill", err)
	}
	return synced(ctx, c, res.CustomerID, res), nil
}

// DeleteBill removes a bill that is not PAID and its payments
func (c *Coordinator) DeleteBill(ctx context.Context, billID uuid.UUID) (Synced[*DeleteBillResult], error) {
	res, err := c.bills.DeleteBill(ctx, billID)
	if err != nil {
		return Synced[*DeleteBillResult]{}, c.fail(ctx, "delete the bill", err)
	}
	return synced(ctx, c, res.CustomerID, res), nil
}

// AddPayment records a payment against a bill
func (c *Coordinator) AddPayment(ctx context.Context, req AddPaymentRequest) (Synced[*PaymentResult], error) {
	res, err := c.payments.AddPayment(ctx, req)
	if err != nil {
		return Synced[*PaymentResult]{}, c.fail(ctx, "record the payment", err)
	}
	return synced(ctx, c, res.Bill.CustomerID, res), nil
}

// DeletePayment removes a payment and recomputes its bill
func (c *Coordinator) DeletePayment(ctx context.Context, paymentID uuid.UUID) (Synced[*BillResponse], error) {
	res, err := c.payments.DeletePayment(ctx, paymentID)
	if err != nil {
		return Synced[*BillResponse]{}, c.fail(ctx, "delete the payment", err)
	}
	return synced(ctx, c, res.CustomerID, res), nil
}

// ConsumePtSession uses one session of an allocation
func (c *Coordinator) ConsumePtSession(ctx context.Context, allocationID uuid.UUID) (Synced[*AllocationResponse], error) {
	res, err := c.allocations.ConsumeSession(ctx, allocationID)
	if err != nil {
		return Synced[*AllocationResponse]{}, c.fail(ctx, "record the PT session", err)
	}
	return synced(ctx, c, res.CustomerID, res), nil
}

// ============================================
// Reads
// ============================================

// CustomerDetail returns the customer detail view, refreshing it if it is not FRESH
func (c *Coordinator) CustomerDetail(ctx context.Context, customerID uuid.UUID) (*CustomerDetail, error) {
	if c.views == nil {
		return c.ComputeCustomerDetail(ctx, customerID)
	}
	data, err := c.views.Read(ctx, c.views.Keys().CustomerDetail(customerID))
	if err != nil {
		return nil, err
	}
	var detail CustomerDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, fmt.Errorf("decode customer detail view: %w", err)
	}
	return &detail, nil
}

// ComputeCustomerDetail builds the detail view from the ledger, bypassing the view store
func (c *Coordinator) ComputeCustomerDetail(ctx context.Context, customerID uuid.UUID) (*CustomerDetail, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "compute_detail")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrCustomerID, customerID.String())

	detail, err := c.computeCustomerDetail(ctx, customerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)
	return detail, nil
}

func (c *Coordinator) computeCustomerDetail(ctx context.Context, customerID uuid.UUID) (*CustomerDetail, error) {
	cust, err := c.repos.CustomerRepo().FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	open, err := c.repos.BillRepo().FindOpenByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load open bills: %w", err)
	}
	balance, err := ledger.CustomerBalance(c.currency, open)
	if err != nil {
		return nil, err
	}

	now := c.now()
	membershipView, err := currentMembershipView(ctx, c.repos, customerID, now)
	if err != nil {
		return nil, err
	}
	allocations, err := c.repos.AllocationRepo().FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load allocations: %w", err)
	}

	return &CustomerDetail{
		CustomerID:    cust.ID,
		Name:          cust.FullName(),
		Email:         cust.Email,
		Phone:         cust.Phone,
		Balance:       balance,
		OpenBillCount: ledger.CountOpen(open),
		Membership:    membershipView,
		PtSummary:     training.Summarize(allocations),
		ComputedAt:    now,
	}, nil
}

// CustomerBalance sums net minus paid over the customer's ACTIVE and PARTIAL bills
func (c *Coordinator) CustomerBalance(ctx context.Context, customerID uuid.UUID) (valueobject.Money, error) {
	if err := requireCustomer(ctx, c.repos, customerID); err != nil {
		return valueobject.Money{}, err
	}
	open, err := c.repos.BillRepo().FindOpenByCustomer(ctx, customerID)
	if err != nil {
		return valueobject.Money{}, fmt.Errorf("load open bills: %w", err)
	}
	return ledger.CustomerBalance(c.currency, open)
}

// GetBill retrieves a bill by ID
func (c *Coordinator) GetBill(ctx context.Context, billID uuid.UUID) (*BillResponse, error) {
	return c.bills.GetBill(ctx, billID)
}

// ListBillPayments lists a bill's payments, oldest first
func (c *Coordinator) ListBillPayments(ctx context.Context, billID uuid.UUID) ([]PaymentResponse, error) {
	return c.payments.ListBillPayments(ctx, billID)
}

// ListCustomerBills lists a customer's bills through the bill list view
func (c *Coordinator) ListCustomerBills(ctx context.Context, customerID uuid.UUID, filter BillListFilter) (shared.Paginated[BillResponse], error) {
	key := c.viewKey(cache.KindBillList, customerID, billListVariant(filter))
	return readView(ctx, c, key, func(ctx context.Context) (shared.Paginated[BillResponse], error) {
		return c.bills.ListCustomerBills(ctx, customerID, filter)
	})
}

// ListCustomerPayments lists a customer's payments through the payment list view
func (c *Coordinator) ListCustomerPayments(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (shared.Paginated[PaymentResponse], error) {
	filter = filter.Normalize()
	variant := fmt.Sprintf("p%d:s%d:%s", filter.Page, filter.PageSize, filter.OrderDir)
	key := c.viewKey(cache.KindPaymentList, customerID, variant)
	return readView(ctx, c, key, func(ctx context.Context) (shared.Paginated[PaymentResponse], error) {
		return c.payments.ListCustomerPayments(ctx, customerID, filter)
	})
}

// ListCustomerMemberships lists a customer's memberships through the membership list view
func (c *Coordinator) ListCustomerMemberships(ctx context.Context, customerID uuid.UUID) ([]MembershipResponse, error) {
	key := c.viewKey(cache.KindMembershipList, customerID, "")
	return readView(ctx, c, key, func(ctx context.Context) ([]MembershipResponse, error) {
		return c.memberships.ListCustomerMemberships(ctx, customerID)
	})
}

// ListCustomerAllocations lists a customer's PT allocations through the allocation list view
func (c *Coordinator) ListCustomerAllocations(ctx context.Context, customerID uuid.UUID, statuses ...training.AllocationStatus) ([]AllocationResponse, error) {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	sort.Strings(names)
	key := c.viewKey(cache.KindPtAllocationList, customerID, strings.Join(names, ","))
	return readView(ctx, c, key, func(ctx context.Context) ([]AllocationResponse, error) {
		return c.allocations.ListCustomerAllocations(ctx, customerID, statuses...)
	})
}

// CurrentMembership returns the customer's membership as seen today
func (c *Coordinator) CurrentMembership(ctx context.Context, customerID uuid.UUID) (MembershipView, error) {
	return c.memberships.CurrentMembership(ctx, customerID)
}

// PlanStats returns read-time aggregates for a membership plan
func (c *Coordinator) PlanStats(ctx context.Context, planID uuid.UUID) (*PlanStatsResponse, error) {
	return c.memberships.PlanStats(ctx, planID)
}

// ============================================
// Helpers
// ============================================

func (c *Coordinator) fetchCustomerDetail(ctx context.Context, key cache.Key) ([]byte, error) {
	detail, err := c.ComputeCustomerDetail(ctx, key.CustomerID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(detail)
}

// afterMutation runs the view synchronization protocol for a committed mutation
func (c *Coordinator) afterMutation(ctx context.Context, customerID uuid.UUID) cache.SyncResult {
	if c.views == nil {
		return cache.SyncResult{Fresh: true}
	}
	ctx = logger.WithCustomerID(ctx, customerID.String())
	result := c.views.AfterMutation(ctx, customerID)
	if !result.Fresh && result.Warning != nil {
		c.notifier.Notify(ctx, shared.NotifyWarning, "Saved. The customer summary may take a moment to update.")
	}
	return result
}

// fail notifies the user about a failed operation and returns err unchanged
func (c *Coordinator) fail(ctx context.Context, action string, err error) error {
	c.notifier.Notify(ctx, shared.NotifyError, fmt.Sprintf("Could not %s: %s", action, userMessage(err)))
	if shared.KindOf(err) == shared.KindAtomicity {
		c.log(ctx).Error("Composite operation rolled back",
			zap.String("action", action),
			zap.Error(err))
	}
	return err
}

func (c *Coordinator) viewKey(kind cache.KeyKind, customerID uuid.UUID, variant string) cache.Key {
	if c.views == nil {
		return cache.Key{Kind: kind, CustomerID: customerID, Variant: variant}
	}
	return c.views.Keys().Of(kind, customerID).WithVariant(variant)
}

func synced[T any](ctx context.Context, c *Coordinator, customerID uuid.UUID, value T) Synced[T] {
	return Synced[T]{Value: value, View: c.afterMutation(ctx, customerID)}
}

// readView serves a list view through the synchronizer. Views are stored as JSON.
func readView[T any](ctx context.Context, c *Coordinator, key cache.Key, load func(ctx context.Context) (T, error)) (T, error) {
	if c.views == nil {
		return load(ctx)
	}
	var zero T
	data, err := c.views.ReadWith(ctx, key, func(ctx context.Context, _ cache.Key) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, fmt.Errorf("decode %s view: %w", key.Kind, err)
	}
	return v, nil
}

func billListVariant(f BillListFilter) string {
	statuses := make([]string, len(f.Statuses))
	for i, st := range f.Statuses {
		statuses[i] = string(st)
	}
	sort.Strings(statuses)
	billType := ""
	if f.BillType != nil {
		billType = string(*f.BillType)
	}
	normalized := f.domain()
	return fmt.Sprintf("p%d:s%d:st=%s:t=%s", normalized.Page, normalized.PageSize, strings.Join(statuses, ","), billType)
}

func userMessage(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "an unexpected error occurred"
}
