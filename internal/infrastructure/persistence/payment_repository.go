package persistence

import (
	"context"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements ledger.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	model, err := findOne[models.PaymentModel](r.db.WithContext(ctx).Where("id = ?", id), shared.ErrPaymentNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain()
}

// FindByBill returns the payments of a bill, oldest first
func (r *GormPaymentRepository) FindByBill(ctx context.Context, billID uuid.UUID) ([]ledger.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("payment_date ASC").
		Order("created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(paymentModels)
}

// FindByCustomer lists a customer's payments, newest first
func (r *GormPaymentRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]ledger.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).Where("customer_id = ?", customerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var paymentModels []models.PaymentModel
	if err := paginate(query, filter, "payment_date", "created_at").Find(&paymentModels).Error; err != nil {
		return nil, 0, err
	}

	payments, err := paymentsToDomain(paymentModels)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// Save records a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	return r.db.WithContext(ctx).Save(models.PaymentModelFromDomain(payment)).Error
}

// Delete removes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrPaymentNotFound
	}
	return nil
}

// DeleteByBill removes every payment of a bill
func (r *GormPaymentRepository) DeleteByBill(ctx context.Context, billID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "bill_id = ?", billID).Error
}

func paymentsToDomain(paymentModels []models.PaymentModel) ([]ledger.Payment, error) {
	payments := make([]ledger.Payment, 0, len(paymentModels))
	for i := range paymentModels {
		payment, err := paymentModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	return payments, nil
}

var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)
