package ledger

import (
	"strings"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentMethod represents how a payment was tendered
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodGCash        PaymentMethod = "GCASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodGCash,
		PaymentMethodBankTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// ParsePaymentMethod normalizes user input such as "gcash" or "bank_transfer"
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", shared.ErrInvalidPaymentMethod.WithMessage("unsupported payment method %q", s)
	}
	return m, nil
}

// Payment is one monetary application against a single bill.
// It is immutable once recorded; corrections are made by deleting it.
type Payment struct {
	shared.BaseEntity
	BillID          uuid.UUID
	CustomerID      uuid.UUID
	Amount          valueobject.Money
	PaymentDate     time.Time
	Method          PaymentMethod
	ReferenceNumber string
}

// NewPayment creates a payment for the given bill
func NewPayment(
	bill *Bill,
	amount valueobject.Money,
	method PaymentMethod,
	referenceNumber string,
	paymentDate time.Time,
) (*Payment, error) {
	if bill == nil {
		return nil, shared.ErrBillNotFound
	}
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount.WithMessage("payment amount must be positive")
	}
	if amount.Currency() != bill.NetAmount.Currency() {
		return nil, shared.NewValidationError("CURRENCY_MISMATCH", "Payment currency must match the bill currency")
	}
	if !method.IsValid() {
		return nil, shared.ErrInvalidPaymentMethod.WithMessage("unsupported payment method %q", method)
	}
	if len(referenceNumber) > 100 {
		return nil, shared.NewValidationError("INVALID_REFERENCE_NUMBER", "Reference number cannot exceed 100 characters")
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	return &Payment{
		BaseEntity:      shared.NewBaseEntity(),
		BillID:          bill.ID,
		CustomerID:      bill.CustomerID,
		Amount:          amount,
		PaymentDate:     paymentDate,
		Method:          method,
		ReferenceNumber: strings.TrimSpace(referenceNumber),
	}, nil
}
