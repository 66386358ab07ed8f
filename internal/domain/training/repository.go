package training

import (
	"context"

	"github.com/google/uuid"
)

// PackageCatalog is the read side of the PT package catalog
type PackageCatalog interface {
	// Get returns a package or shared.ErrPackageNotFound
	Get(ctx context.Context, id uuid.UUID) (*PtPackage, error)
}

// PackageRepository manages catalog packages
type PackageRepository interface {
	PackageCatalog
	FindAll(ctx context.Context) ([]PtPackage, error)
	Save(ctx context.Context, pkg *PtPackage) error
}

// AllocationRepository defines the interface for PT allocation persistence
type AllocationRepository interface {
	// FindByID finds an allocation by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PtPackageAllocation, error)

	// FindByCustomer lists a customer's allocations, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, statuses ...AllocationStatus) ([]PtPackageAllocation, error)

	// Save creates or updates an allocation
	Save(ctx context.Context, allocation *PtPackageAllocation) error
}
