package entitlement

import (
	"context"
	"fmt"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// PaymentService is the Payment Journal. Every payment write is paired with a save
// of the owning bill so paid amount and status never drift from the recorded payments.
type PaymentService struct {
	base
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope TransactionScope, repos TransactionalRepositories, opts ...Option) *PaymentService {
	return &PaymentService{base: newBase(scope, repos, opts...)}
}

// AddPayment records a payment against a bill.
// Fails with OverPayment when the amount exceeds what is still due and with
// BillLocked when the bill is voided.
func (s *PaymentService) AddPayment(ctx context.Context, req AddPaymentRequest) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "add_payment")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBillID, req.BillID.String(),
		telemetry.SpanAttrAmount, req.Amount.Minor(),
	)

	var (
		bill    *ledger.Bill
		payment *ledger.Payment
	)
	err := s.atomic(ctx, "add_payment", func(repos TransactionalRepositories) error {
		var err error
		bill, err = repos.BillRepo().FindByID(ctx, req.BillID)
		if err != nil {
			return err
		}
		payment, err = ledger.NewPayment(bill, req.Amount, req.Method, req.ReferenceNumber, req.PaymentDate)
		if err != nil {
			return err
		}
		if err := bill.ApplyPayment(payment); err != nil {
			return err
		}

		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("save payment: %w", err)
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

	s.metrics.RecordPayment(ctx, string(payment.Method), payment.Amount.Minor())
	s.publishDomainEvents(ctx, bill)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, payment.ID.String(),
		telemetry.SpanAttrCustomerID, bill.CustomerID.String(),
		telemetry.SpanAttrBillStatus, bill.Status.String(),
	)
	telemetry.SetOK(span)

	return &PaymentResult{
		Payment: ToPaymentResponse(payment),
		Bill:    ToBillResponse(bill),
	}, nil
}

// DeletePayment removes a payment and recomputes the bill's paid amount from the
// payments that remain. A PAID bill drops back to PARTIAL or ACTIVE.
func (s *PaymentService) DeletePayment(ctx context.Context, paymentID uuid.UUID) (*BillResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete_payment")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, paymentID.String())

	var bill *ledger.Bill
	err := s.atomic(ctx, "delete_payment", func(repos TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		bill, err = repos.BillRepo().FindByID(ctx, payment.BillID)
		if err != nil {
			return err
		}

		if err := repos.PaymentRepo().Delete(ctx, paymentID); err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}
		remaining, err := repos.PaymentRepo().FindByBill(ctx, bill.ID)
		if err != nil {
			return fmt.Errorf("load remaining payments: %w", err)
		}
		if err := bill.RemovePayment(payment, remaining); err != nil {
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
	telemetry.SetAttribute(span, telemetry.SpanAttrBillStatus, bill.Status.String())
	telemetry.SetOK(span)

	response := ToBillResponse(bill)
	return &response, nil
}

// ListBillPayments lists the payments of a bill, oldest first
func (s *PaymentService) ListBillPayments(ctx context.Context, billID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.repos.BillRepo().FindByID(ctx, billID); err != nil {
		return nil, err
	}
	payments, err := s.repos.PaymentRepo().FindByBill(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return ToPaymentResponses(payments), nil
}

// ListCustomerPayments lists a customer's payments, newest first
func (s *PaymentService) ListCustomerPayments(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (shared.Paginated[PaymentResponse], error) {
	if err := requireCustomer(ctx, s.repos, customerID); err != nil {
		return shared.Paginated[PaymentResponse]{}, err
	}
	filter = filter.Normalize()
	payments, total, err := s.repos.PaymentRepo().FindByCustomer(ctx, customerID, filter)
	if err != nil {
		return shared.Paginated[PaymentResponse]{}, fmt.Errorf("list payments: %w", err)
	}
	return shared.NewPaginated(ToPaymentResponses(payments), total, filter.Page, filter.PageSize), nil
}
