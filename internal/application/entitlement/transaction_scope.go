package entitlement

import (
	"context"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/customer"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/membership"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/training"
)

// TransactionScope is the persistence boundary's runAtomic. All repository
// operations made through the repositories handed to fn belong to one database
// transaction and are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed before Execute returns, so a
	// read issued after Execute returns observes the write.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger and entitlement repositories.
// All repositories returned share the same underlying database transaction when
// obtained inside TransactionScope.Execute.
//
// Aggregate boundary notes:
//   - BillRepo: Bill aggregate root. Paid amount and status are derived, never patched directly.
//   - PaymentRepo: Payments are owned by a Bill; creating or deleting one must be paired
//     with a save of the owning Bill in the same transaction.
//   - MembershipRepo: at most one stored ACTIVE membership per customer.
//   - AllocationRepo: PT allocations; cancellation must be paired with voiding the linked Bill.
//   - PlanCatalog / PackageCatalog: read-only catalog lookups.
type TransactionalRepositories interface {
	BillRepo() ledger.BillRepository
	PaymentRepo() ledger.PaymentRepository
	MembershipRepo() membership.MembershipRepository
	AllocationRepo() training.AllocationRepository
	CustomerRepo() customer.Repository
	PlanCatalog() membership.PlanCatalog
	PackageCatalog() training.PackageCatalog
}
