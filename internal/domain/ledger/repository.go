package ledger

import (
	"context"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/google/uuid"
)

// BillFilter defines filtering options for bill queries
type BillFilter struct {
	shared.Filter
	Statuses []BillStatus // Empty means any status
	BillType *BillType
}

// BillRepository defines the interface for bill persistence
type BillRepository interface {
	// FindByID finds a bill by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)

	// FindByCustomer lists a customer's bills, newest bill date first, and the total count
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter BillFilter) ([]Bill, int64, error)

	// FindOpenByCustomer returns the ACTIVE and PARTIAL bills of a customer
	FindOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]Bill, error)

	// FindByReference finds the bill linked to a membership plan assignment or PT allocation
	FindByReference(ctx context.Context, customerID, referenceID uuid.UUID, billType BillType) (*Bill, error)

	// Save creates or updates a bill
	Save(ctx context.Context, bill *Bill) error

	// Delete removes a bill
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByBill returns all payments recorded against a bill, oldest first
	FindByBill(ctx context.Context, billID uuid.UUID) ([]Payment, error)

	// FindByCustomer lists a customer's payments, newest first, and the total count
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Payment, int64, error)

	// Save records a payment
	Save(ctx context.Context, payment *Payment) error

	// Delete removes a payment
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByBill removes every payment of a bill
	DeleteByBill(ctx context.Context, billID uuid.UUID) error
}
