package persistence

import (
	"context"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/membership"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMembershipRepository implements membership.MembershipRepository using GORM
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewGormMembershipRepository creates a new GormMembershipRepository
func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

// FindByID finds a membership by its ID
func (r *GormMembershipRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Membership, error) {
	model, err := findOne[models.MembershipModel](r.db.WithContext(ctx).Where("id = ?", id), shared.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindCurrent returns the stored ACTIVE membership of a customer
func (r *GormMembershipRepository) FindCurrent(ctx context.Context, customerID uuid.UUID) (*membership.Membership, error) {
	model, err := findOne[models.MembershipModel](r.db.WithContext(ctx).
		Where("customer_id = ? AND status = ?", customerID, membership.MembershipStatusActive).
		Order("start_date DESC"),
		shared.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer lists a customer's memberships, newest start date first
func (r *GormMembershipRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]membership.Membership, error) {
	var membershipModels []models.MembershipModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("start_date DESC").
		Order("created_at DESC").
		Find(&membershipModels).Error; err != nil {
		return nil, err
	}

	memberships := make([]membership.Membership, len(membershipModels))
	for i := range membershipModels {
		memberships[i] = *membershipModels[i].ToDomain()
	}
	return memberships, nil
}

// CountActiveByPlan counts ACTIVE memberships of a plan still running on asOf
func (r *GormMembershipRepository) CountActiveByPlan(ctx context.Context, planID uuid.UUID, asOf time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MembershipModel{}).
		Where("membership_plan_id = ? AND status = ? AND end_date >= ?", planID, membership.MembershipStatusActive, asOf).
		Count(&count).Error
	return count, err
}

// Save creates or updates a membership
func (r *GormMembershipRepository) Save(ctx context.Context, m *membership.Membership) error {
	return saveVersioned(ctx, r.db, models.MembershipModelFromDomain(m), m.ID, m.Version)
}

// ============================================
// Plan catalog
// ============================================

// GormPlanRepository implements membership.PlanRepository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GormPlanRepository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// Get returns a plan by ID
func (r *GormPlanRepository) Get(ctx context.Context, id uuid.UUID) (*membership.MembershipPlan, error) {
	model, err := findOne[models.MembershipPlanModel](r.db.WithContext(ctx).Where("id = ?", id), shared.ErrPlanNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain()
}

// FindAll returns every plan ordered by name
func (r *GormPlanRepository) FindAll(ctx context.Context) ([]membership.MembershipPlan, error) {
	var planModels []models.MembershipPlanModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&planModels).Error; err != nil {
		return nil, err
	}

	plans := make([]membership.MembershipPlan, 0, len(planModels))
	for i := range planModels {
		plan, err := planModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	return plans, nil
}

// Save creates or updates a plan
func (r *GormPlanRepository) Save(ctx context.Context, plan *membership.MembershipPlan) error {
	model, err := models.MembershipPlanModelFromDomain(plan)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

var (
	_ membership.MembershipRepository = (*GormMembershipRepository)(nil)
	_ membership.PlanRepository       = (*GormPlanRepository)(nil)
)
