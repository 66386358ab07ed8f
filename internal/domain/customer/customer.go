package customer

import (
	"context"
	"strings"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/google/uuid"
)

// Customer is the identity anchor for bills, memberships and PT allocations.
// It carries no balance: balances are always derived from bills.
type Customer struct {
	shared.BaseEntity
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// NewCustomer creates a customer record
func NewCustomer(firstName, lastName, email, phone string) (*Customer, error) {
	if strings.TrimSpace(firstName) == "" && strings.TrimSpace(lastName) == "" {
		return nil, shared.NewValidationError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	return &Customer{
		BaseEntity: shared.NewBaseEntity(),
		FirstName:  strings.TrimSpace(firstName),
		LastName:   strings.TrimSpace(lastName),
		Email:      strings.TrimSpace(email),
		Phone:      strings.TrimSpace(phone),
	}, nil
}

// FullName returns "First Last"
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Repository defines the interface for customer persistence
type Repository interface {
	// FindByID returns a customer or shared.ErrCustomerNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// Exists reports whether the customer is registered
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error
}
