package models

import (
	"fmt"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillModel is the persistence model for the Bill aggregate.
// Amounts are minor units in Currency.
type BillModel struct {
	AggregateModel
	CustomerID         uuid.UUID         `gorm:"type:uuid;not null;index"`
	BillDate           time.Time         `gorm:"not null"`
	BillType           ledger.BillType   `gorm:"type:varchar(32);not null"`
	Currency           string            `gorm:"type:varchar(3);not null"`
	GrossAmountMinor   int64             `gorm:"not null"`
	DiscountPercentage decimal.Decimal   `gorm:"type:numeric(5,2);not null;default:0"`
	NetAmountMinor     int64             `gorm:"not null"`
	PaidAmountMinor    int64             `gorm:"not null;default:0"`
	Status             ledger.BillStatus `gorm:"type:varchar(16);not null;index"`
	ReferenceID        *uuid.UUID        `gorm:"type:uuid;index"`
	Remark             string            `gorm:"type:text"`
	VoidedAt           *time.Time
	VoidReason         string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill
func (m *BillModel) ToDomain() (*ledger.Bill, error) {
	gross, err := restoreMoney(m.GrossAmountMinor, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("bill %s gross amount: %w", m.ID, err)
	}
	net, err := restoreMoney(m.NetAmountMinor, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("bill %s net amount: %w", m.ID, err)
	}
	paid, err := restoreMoney(m.PaidAmountMinor, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("bill %s paid amount: %w", m.ID, err)
	}
	discount, err := valueobject.NewPercentage(m.DiscountPercentage)
	if err != nil {
		return nil, fmt.Errorf("bill %s discount: %w", m.ID, err)
	}

	return &ledger.Bill{
		BaseAggregateRoot:  m.root(),
		CustomerID:         m.CustomerID,
		BillDate:           m.BillDate,
		BillType:           m.BillType,
		GrossAmount:        gross,
		DiscountPercentage: discount,
		NetAmount:          net,
		PaidAmount:         paid,
		Status:             m.Status,
		ReferenceID:        m.ReferenceID,
		Remark:             m.Remark,
		VoidedAt:           m.VoidedAt,
		VoidReason:         m.VoidReason,
	}, nil
}

// BillModelFromDomain creates a persistence model from a domain Bill
func BillModelFromDomain(b *ledger.Bill) *BillModel {
	m := &BillModel{
		CustomerID:         b.CustomerID,
		BillDate:           b.BillDate,
		BillType:           b.BillType,
		Currency:           string(b.NetAmount.Currency()),
		GrossAmountMinor:   b.GrossAmount.Minor(),
		DiscountPercentage: b.DiscountPercentage.Decimal(),
		NetAmountMinor:     b.NetAmount.Minor(),
		PaidAmountMinor:    b.PaidAmount.Minor(),
		Status:             b.Status,
		ReferenceID:        b.ReferenceID,
		Remark:             b.Remark,
		VoidedAt:           b.VoidedAt,
		VoidReason:         b.VoidReason,
	}
	m.setRoot(b.BaseAggregateRoot)
	return m
}

// PaymentModel is the persistence model for the Payment entity
type PaymentModel struct {
	BaseModel
	BillID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	Currency        string               `gorm:"type:varchar(3);not null"`
	AmountMinor     int64                `gorm:"not null"`
	PaymentDate     time.Time            `gorm:"not null"`
	Method          ledger.PaymentMethod `gorm:"type:varchar(20);not null"`
	ReferenceNumber string               `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() (*ledger.Payment, error) {
	amount, err := restoreMoney(m.AmountMinor, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("payment %s amount: %w", m.ID, err)
	}
	return &ledger.Payment{
		BaseEntity:      m.entity(),
		BillID:          m.BillID,
		CustomerID:      m.CustomerID,
		Amount:          amount,
		PaymentDate:     m.PaymentDate,
		Method:          m.Method,
		ReferenceNumber: m.ReferenceNumber,
	}, nil
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{
		BillID:          p.BillID,
		CustomerID:      p.CustomerID,
		Currency:        string(p.Amount.Currency()),
		AmountMinor:     p.Amount.Minor(),
		PaymentDate:     p.PaymentDate,
		Method:          p.Method,
		ReferenceNumber: p.ReferenceNumber,
	}
	m.setEntity(p.BaseEntity)
	return m
}
