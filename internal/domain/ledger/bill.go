package ledger

import (
	"fmt"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// BillType represents what a bill charges for
type BillType string

const (
	BillTypeMembershipSubscription BillType = "MEMBERSHIP_SUBSCRIPTION"
	BillTypeCustomAmount           BillType = "CUSTOM_AMOUNT"
	BillTypePtPackage              BillType = "PT_PACKAGE"
)

// IsValid checks if the bill type is a known BillType
func (t BillType) IsValid() bool {
	switch t {
	case BillTypeMembershipSubscription, BillTypeCustomAmount, BillTypePtPackage:
		return true
	}
	return false
}

// String returns the string representation of BillType
func (t BillType) String() string {
	return string(t)
}

// BillStatus represents the derived status of a bill
type BillStatus string

const (
	BillStatusActive  BillStatus = "ACTIVE"  // Nothing paid, net amount > 0
	BillStatusPartial BillStatus = "PARTIAL" // 0 < paid < net
	BillStatusPaid    BillStatus = "PAID"    // paid == net
	BillStatusVoided  BillStatus = "VOIDED"  // Explicitly voided, terminal
)

// IsValid checks if the status is a valid BillStatus
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusActive, BillStatusPartial, BillStatusPaid, BillStatusVoided:
		return true
	}
	return false
}

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// IsLocked returns true if the bill can no longer be edited or paid
func (s BillStatus) IsLocked() bool {
	return s == BillStatusPaid || s == BillStatusVoided
}

// IsOpen returns true if the bill still counts towards the customer balance
func (s BillStatus) IsOpen() bool {
	return s == BillStatusActive || s == BillStatusPartial
}

// DeriveBillStatus computes a bill status from its amounts. It is a pure function:
// VOIDED wins; otherwise PAID when paid == net (a zero net bill is PAID at once),
// PARTIAL when 0 < paid < net, else ACTIVE.
func DeriveBillStatus(netMinor, paidMinor int64, voided bool) BillStatus {
	switch {
	case voided:
		return BillStatusVoided
	case paidMinor == netMinor:
		return BillStatusPaid
	case paidMinor > 0 && paidMinor < netMinor:
		return BillStatusPartial
	default:
		return BillStatusActive
	}
}

// ValidateBillType checks that a customer may be billed with the given type.
// Membership subscription bills require a current membership.
func ValidateBillType(billType BillType, hasActiveMembership bool) error {
	if !billType.IsValid() {
		return shared.ErrInvalidBillType.WithMessage("unknown bill type %q", billType)
	}
	if billType == BillTypeMembershipSubscription && !hasActiveMembership {
		return shared.ErrInvalidBillType.WithMessage("customer has no active membership to bill")
	}
	return nil
}

// Bill is the aggregate root for a single billable obligation
type Bill struct {
	shared.BaseAggregateRoot
	CustomerID         uuid.UUID
	BillDate           time.Time
	BillType           BillType
	GrossAmount        valueobject.Money
	DiscountPercentage valueobject.Percentage
	NetAmount          valueobject.Money
	PaidAmount         valueobject.Money
	Status             BillStatus
	// ReferenceID links the bill to the membership plan or PT allocation it charges for
	ReferenceID *uuid.UUID
	Remark      string
	VoidedAt    *time.Time
	VoidReason  string
}

// NewBill creates a new bill with nothing paid
func NewBill(
	customerID uuid.UUID,
	billType BillType,
	grossAmount valueobject.Money,
	discount valueobject.Percentage,
	billDate time.Time,
	referenceID *uuid.UUID,
) (*Bill, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !billType.IsValid() {
		return nil, shared.ErrInvalidBillType.WithMessage("unknown bill type %q", billType)
	}
	if billDate.IsZero() {
		billDate = time.Now()
	}

	b := &Bill{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		CustomerID:         customerID,
		BillDate:           billDate,
		BillType:           billType,
		GrossAmount:        grossAmount,
		DiscountPercentage: discount,
		NetAmount:          grossAmount.ApplyDiscount(discount),
		PaidAmount:         valueobject.Zero(grossAmount.Currency()),
		ReferenceID:        referenceID,
	}
	b.recomputeStatus()

	b.AddDomainEvent(NewBillCreatedEvent(b))

	return b, nil
}

// BillPatch holds the editable fields of a bill; nil fields are left unchanged
type BillPatch struct {
	BillType           *BillType
	GrossAmount        *valueobject.Money
	DiscountPercentage *valueobject.Percentage
	BillDate           *time.Time
	Remark             *string
}

// Update applies a patch and recomputes the net amount and status
func (b *Bill) Update(patch BillPatch) error {
	if b.Status.IsLocked() {
		return shared.ErrBillLocked.WithMessage("cannot update bill in %s status", b.Status)
	}
	if patch.BillType != nil && *patch.BillType != b.BillType {
		return shared.ErrImmutableField.WithMessage("bill type cannot change from %s to %s", b.BillType, *patch.BillType)
	}

	gross := b.GrossAmount
	if patch.GrossAmount != nil {
		gross = *patch.GrossAmount
	}
	discount := b.DiscountPercentage
	if patch.DiscountPercentage != nil {
		discount = *patch.DiscountPercentage
	}
	net := gross.ApplyDiscount(discount)
	if net.Minor() < b.PaidAmount.Minor() {
		return shared.ErrOverPayment.WithMessage(
			"net amount %s would fall below the %s already paid", net, b.PaidAmount)
	}

	b.GrossAmount = gross
	b.DiscountPercentage = discount
	b.NetAmount = net
	if patch.BillDate != nil {
		b.BillDate = *patch.BillDate
	}
	if patch.Remark != nil {
		b.Remark = *patch.Remark
	}
	b.recomputeStatus()
	b.MarkChanged(time.Now())

	b.AddDomainEvent(NewBillUpdatedEvent(b))

	return nil
}

// ApplyPayment adds a recorded payment to the paid amount.
// A payment that would exceed the net amount is OverPayment even on a PAID bill;
// BillLocked is reported for voided bills.
func (b *Bill) ApplyPayment(payment *Payment) error {
	if b.IsVoided() {
		return shared.ErrBillLocked.WithMessage("cannot pay bill in %s status", b.Status)
	}
	if payment.BillID != b.ID {
		return shared.NewValidationError("PAYMENT_BILL_MISMATCH", "Payment does not belong to this bill")
	}
	due, err := b.NetAmount.Subtract(b.PaidAmount)
	if err != nil {
		return err
	}
	exceeds, err := payment.Amount.GreaterThan(due)
	if err != nil {
		return err
	}
	if exceeds {
		return shared.ErrOverPayment.WithMessage(
			"payment of %s exceeds the %s still due", payment.Amount, due)
	}
	if b.Status.IsLocked() {
		return shared.ErrBillLocked.WithMessage("cannot pay bill in %s status", b.Status)
	}
	paid, err := b.PaidAmount.Add(payment.Amount)
	if err != nil {
		return err
	}

	b.PaidAmount = paid
	b.recomputeStatus()
	b.MarkChanged(time.Now())

	b.AddDomainEvent(NewPaymentRecordedEvent(b, payment))

	return nil
}

// RemovePayment recomputes the paid amount from the payments left after removed was deleted.
// Summing the remaining rows keeps the total right even if other payments were removed concurrently.
func (b *Bill) RemovePayment(removed *Payment, remaining []Payment) error {
	if removed.BillID != b.ID {
		return shared.NewValidationError("PAYMENT_BILL_MISMATCH", "Payment does not belong to this bill")
	}
	paid := valueobject.Zero(b.NetAmount.Currency())
	for i := range remaining {
		if remaining[i].ID == removed.ID {
			continue
		}
		var err error
		paid, err = paid.Add(remaining[i].Amount)
		if err != nil {
			return err
		}
	}

	b.PaidAmount = paid
	b.recomputeStatus()
	b.MarkChanged(time.Now())

	b.AddDomainEvent(NewPaymentDeletedEvent(b, removed))

	return nil
}

// Void marks the bill as voided. Voiding is terminal and bypasses the PAID lock;
// it is reserved for controlled cascades such as PT package cancellation.
func (b *Bill) Void(reason string) error {
	if b.IsVoided() {
		return shared.ErrBillLocked.WithMessage("bill is already voided")
	}

	now := time.Now()
	previous := b.Status
	b.VoidedAt = &now
	b.VoidReason = reason
	b.recomputeStatus()
	b.MarkChanged(now)

	b.AddDomainEvent(NewBillVoidedEvent(b, previous))

	return nil
}

// MarkDeleted checks that the bill may be removed and raises BillDeleted
func (b *Bill) MarkDeleted() error {
	if b.Status == BillStatusPaid {
		return shared.ErrBillLocked.WithMessage("paid bills cannot be deleted")
	}
	b.AddDomainEvent(NewBillDeletedEvent(b))
	return nil
}

// IsVoided returns true once the bill has been voided
func (b *Bill) IsVoided() bool {
	return b.VoidedAt != nil
}

// Outstanding returns the amount still due; voided and paid bills owe nothing
func (b *Bill) Outstanding() valueobject.Money {
	if !b.Status.IsOpen() {
		return valueobject.Zero(b.NetAmount.Currency())
	}
	return valueobject.MustNewMoney(b.NetAmount.Minor()-b.PaidAmount.Minor(), b.NetAmount.Currency())
}

// String returns a short description used in logs and notifications
func (b *Bill) String() string {
	return fmt.Sprintf("%s bill %s (%s)", b.BillType, b.ID, b.NetAmount)
}

func (b *Bill) recomputeStatus() {
	b.Status = DeriveBillStatus(b.NetAmount.Minor(), b.PaidAmount.Minor(), b.IsVoided())
}
