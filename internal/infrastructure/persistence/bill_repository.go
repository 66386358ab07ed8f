package persistence

import (
	"context"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBillRepository implements ledger.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill by its ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Bill, error) {
	model, err := findOne[models.BillModel](r.db.WithContext(ctx).Where("id = ?", id), shared.ErrBillNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain()
}

// FindByCustomer lists a customer's bills, newest bill date first
func (r *GormBillRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter ledger.BillFilter) ([]ledger.Bill, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BillModel{}).Where("customer_id = ?", customerID)
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.BillType != nil {
		query = query.Where("bill_type = ?", *filter.BillType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var billModels []models.BillModel
	if err := paginate(query, filter.Filter, "bill_date", "created_at").Find(&billModels).Error; err != nil {
		return nil, 0, err
	}

	bills, err := billsToDomain(billModels)
	if err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

// FindOpenByCustomer returns the ACTIVE and PARTIAL bills of a customer
func (r *GormBillRepository) FindOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]ledger.Bill, error) {
	var billModels []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status IN ?", customerID,
			[]ledger.BillStatus{ledger.BillStatusActive, ledger.BillStatusPartial}).
		Order("bill_date ASC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}
	return billsToDomain(billModels)
}

// FindByReference finds the bill generated for a membership or PT allocation
func (r *GormBillRepository) FindByReference(ctx context.Context, customerID, referenceID uuid.UUID, billType ledger.BillType) (*ledger.Bill, error) {
	model, err := findOne[models.BillModel](r.db.WithContext(ctx).
		Where("customer_id = ? AND reference_id = ? AND bill_type = ?", customerID, referenceID, billType).
		Order("created_at DESC"),
		shared.ErrBillNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain()
}

// Save creates or updates a bill
func (r *GormBillRepository) Save(ctx context.Context, bill *ledger.Bill) error {
	return saveVersioned(ctx, r.db, models.BillModelFromDomain(bill), bill.ID, bill.Version)
}

// Delete removes a bill
func (r *GormBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BillModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrBillNotFound
	}
	return nil
}

func billsToDomain(billModels []models.BillModel) ([]ledger.Bill, error) {
	bills := make([]ledger.Bill, 0, len(billModels))
	for i := range billModels {
		bill, err := billModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		bills = append(bills, *bill)
	}
	return bills, nil
}

// Ensure GormBillRepository implements BillRepository
var _ ledger.BillRepository = (*GormBillRepository)(nil)
