package persistence

import (
	"context"

	"github.com/QodexGroup/gym-management-system-sub002/internal/application/entitlement"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/customer"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/membership"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/training"
	"gorm.io/gorm"
)

// GormTransactionScope implements entitlement.TransactionScope using GORM transactions.
// Every repository handed to fn writes through the same *gorm.DB transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos entitlement.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

// GormRepositories bundles the ledger and entitlement repositories over one
// *gorm.DB, which is either the root connection or an open transaction.
type GormRepositories struct {
	db *gorm.DB
}

// NewGormRepositories creates repositories bound to db.
func NewGormRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{db: db}
}

// BillRepo returns the bill repository.
func (r *GormRepositories) BillRepo() ledger.BillRepository {
	return NewGormBillRepository(r.db)
}

// PaymentRepo returns the payment repository.
func (r *GormRepositories) PaymentRepo() ledger.PaymentRepository {
	return NewGormPaymentRepository(r.db)
}

// MembershipRepo returns the membership repository.
func (r *GormRepositories) MembershipRepo() membership.MembershipRepository {
	return NewGormMembershipRepository(r.db)
}

// AllocationRepo returns the PT allocation repository.
func (r *GormRepositories) AllocationRepo() training.AllocationRepository {
	return NewGormAllocationRepository(r.db)
}

// CustomerRepo returns the customer repository.
func (r *GormRepositories) CustomerRepo() customer.Repository {
	return NewGormCustomerRepository(r.db)
}

// PlanCatalog returns the membership plan catalog.
func (r *GormRepositories) PlanCatalog() membership.PlanCatalog {
	return NewGormPlanRepository(r.db)
}

// PackageCatalog returns the PT package catalog.
func (r *GormRepositories) PackageCatalog() training.PackageCatalog {
	return NewGormPackageRepository(r.db)
}

// Ensure GormTransactionScope implements TransactionScope
var _ entitlement.TransactionScope = (*GormTransactionScope)(nil)

// Ensure GormRepositories implements TransactionalRepositories
var _ entitlement.TransactionalRepositories = (*GormRepositories)(nil)
