package entitlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// BillService is the Bill Ledger: bill creation, edits and deletion
type BillService struct {
	base
}

// NewBillService creates a new BillService. repos serves reads outside a unit of work.
func NewBillService(scope TransactionScope, repos TransactionalRepositories, opts ...Option) *BillService {
	return &BillService{base: newBase(scope, repos, opts...)}
}

// CreateBill creates a bill with nothing paid.
// MEMBERSHIP_SUBSCRIPTION bills require the customer to hold a current membership.
func (s *BillService) CreateBill(ctx context.Context, req CreateBillRequest) (*BillResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "create_bill")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
		telemetry.SpanAttrBillType, string(req.BillType),
		telemetry.SpanAttrAmount, req.GrossAmount.Minor(),
	)

	var bill *ledger.Bill
	err := s.atomic(ctx, "create_bill", func(repos TransactionalRepositories) error {
		if err := requireCustomer(ctx, repos, req.CustomerID); err != nil {
			return err
		}
		hasMembership, err := s.hasCurrentMembership(ctx, repos, req.CustomerID, req.BillType)
		if err != nil {
			return err
		}
		if err := ledger.ValidateBillType(req.BillType, hasMembership); err != nil {
			return err
		}

		bill, err = ledger.NewBill(req.CustomerID, req.BillType, req.GrossAmount, req.Discount, req.BillDate, req.ReferenceID)
		if err != nil {
			return err
		}
		bill.Remark = req.Remark

		if err := repos.BillRepo().Save(ctx, bill); err != nil {
			return fmt.Errorf("save bill: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordBillCreated(ctx, bill.BillType.String())
	s.publishDomainEvents(ctx, bill)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBillID, bill.ID.String(),
		telemetry.SpanAttrBillStatus, bill.Status.String(),
	)
	telemetry.SetOK(span)

	response := ToBillResponse(bill)
	return &response, nil
}

// UpdateBill edits gross amount, discount, date or remark and recomputes the net amount.
// PAID and VOIDED bills are locked; the bill type is immutable.
func (s *BillService) UpdateBill(ctx context.Context, billID uuid.UUID, req UpdateBillRequest) (*BillResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "update_bill")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrBillID, billID.String())

	var bill *ledger.Bill
	err := s.atomic(ctx, "update_bill", func(repos TransactionalRepositories) error {
		var err error
		bill, err = repos.BillRepo().FindByID(ctx, billID)
		if err != nil {
			return err
		}
		if err := bill.Update(req.patch()); err != nil {
			return err
		}
		if err := repos.BillRepo().Save(ctx, bill); err != nil {
			return fmt.Errorf("save bill: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, bill)
	telemetry.SetOK(span)

	response := ToBillResponse(bill)
	return &response, nil
}

// DeleteBill removes a bill that is not PAID, together with its payments
func (s *BillService) DeleteBill(ctx context.Context, billID uuid.UUID) (*DeleteBillResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "delete_bill")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrBillID, billID.String())

	var (
		bill    *ledger.Bill
		removed int
	)
	err := s.atomic(ctx, "delete_bill", func(repos TransactionalRepositories) error {
		var err error
		bill, err = repos.BillRepo().FindByID(ctx, billID)
		if err != nil {
			return err
		}
		if err := bill.MarkDeleted(); err != nil {
			return err
		}

		payments, err := repos.PaymentRepo().FindByBill(ctx, billID)
		if err != nil {
			return fmt.Errorf("load payments: %w", err)
		}
		removed = len(payments)
		if removed > 0 {
			if err := repos.PaymentRepo().DeleteByBill(ctx, billID); err != nil {
				return fmt.Errorf("delete payments: %w", err)
			}
		}
		if err := repos.BillRepo().Delete(ctx, billID); err != nil {
			return fmt.Errorf("delete bill: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, bill)
	telemetry.SetOK(span)

	return &DeleteBillResult{
		BillID:          bill.ID,
		CustomerID:      bill.CustomerID,
		PaymentsRemoved: removed,
	}, nil
}

// GetBill retrieves a bill by ID
func (s *BillService) GetBill(ctx context.Context, billID uuid.UUID) (*BillResponse, error) {
	bill, err := s.repos.BillRepo().FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	response := ToBillResponse(bill)
	return &response, nil
}

// ListCustomerBills lists a customer's bills, newest bill date first
func (s *BillService) ListCustomerBills(ctx context.Context, customerID uuid.UUID, filter BillListFilter) (shared.Paginated[BillResponse], error) {
	if err := requireCustomer(ctx, s.repos, customerID); err != nil {
		return shared.Paginated[BillResponse]{}, err
	}
	domainFilter := filter.domain()
	bills, total, err := s.repos.BillRepo().FindByCustomer(ctx, customerID, domainFilter)
	if err != nil {
		return shared.Paginated[BillResponse]{}, fmt.Errorf("list bills: %w", err)
	}
	return shared.NewPaginated(ToBillResponses(bills), total, domainFilter.Page, domainFilter.PageSize), nil
}

// hasCurrentMembership is only consulted for membership subscription bills
func (s *BillService) hasCurrentMembership(ctx context.Context, repos TransactionalRepositories, customerID uuid.UUID, billType ledger.BillType) (bool, error) {
	if billType != ledger.BillTypeMembershipSubscription {
		return false, nil
	}
	current, err := repos.MembershipRepo().FindCurrent(ctx, customerID)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load current membership: %w", err)
	}
	return current.IsCurrentAt(s.now()), nil
}
