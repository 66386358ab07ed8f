package persistence

import (
	"context"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/training"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAllocationRepository implements training.AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByID finds an allocation by its ID
func (r *GormAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*training.PtPackageAllocation, error) {
	model, err := findOne[models.PtAllocationModel](r.db.WithContext(ctx).Where("id = ?", id), shared.ErrAllocationNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer lists a customer's allocations, newest first, optionally by status
func (r *GormAllocationRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, statuses ...training.AllocationStatus) ([]training.PtPackageAllocation, error) {
	query := r.db.WithContext(ctx).Where("customer_id = ?", customerID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var allocationModels []models.PtAllocationModel
	if err := query.Order("created_at DESC").Find(&allocationModels).Error; err != nil {
		return nil, err
	}

	allocations := make([]training.PtPackageAllocation, len(allocationModels))
	for i := range allocationModels {
		allocations[i] = *allocationModels[i].ToDomain()
	}
	return allocations, nil
}

// Save creates or updates an allocation
func (r *GormAllocationRepository) Save(ctx context.Context, allocation *training.PtPackageAllocation) error {
	return saveVersioned(ctx, r.db, models.PtAllocationModelFromDomain(allocation), allocation.ID, allocation.Version)
}

// ============================================
// Package catalog
// ============================================

// GormPackageRepository implements training.PackageRepository using GORM
type GormPackageRepository struct {
	db *gorm.DB
}

// NewGormPackageRepository creates a new GormPackageRepository
func NewGormPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{db: db}
}

// Get returns a package by ID
func (r *GormPackageRepository) Get(ctx context.Context, id uuid.UUID) (*training.PtPackage, error) {
	model, err := findOne[models.PtPackageModel](r.db.WithContext(ctx).Where("id = ?", id), shared.ErrPackageNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain()
}

// FindAll returns every package ordered by name
func (r *GormPackageRepository) FindAll(ctx context.Context) ([]training.PtPackage, error) {
	var packageModels []models.PtPackageModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&packageModels).Error; err != nil {
		return nil, err
	}

	packages := make([]training.PtPackage, 0, len(packageModels))
	for i := range packageModels {
		pkg, err := packageModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		packages = append(packages, *pkg)
	}
	return packages, nil
}

// Save creates or updates a package
func (r *GormPackageRepository) Save(ctx context.Context, pkg *training.PtPackage) error {
	return r.db.WithContext(ctx).Save(models.PtPackageModelFromDomain(pkg)).Error
}

var (
	_ training.AllocationRepository = (*GormAllocationRepository)(nil)
	_ training.PackageRepository    = (*GormPackageRepository)(nil)
)
