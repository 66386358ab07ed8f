package models

import (
	"fmt"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/training"
	"github.com/google/uuid"
)

// PtPackageModel is the persistence model for catalog PT packages
type PtPackageModel struct {
	BaseModel
	Name          string `gorm:"type:varchar(100);not null"`
	Currency      string `gorm:"type:varchar(3);not null"`
	PriceMinor    int64  `gorm:"not null"`
	SessionsTotal int    `gorm:"not null"`
	Description   string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PtPackageModel) TableName() string {
	return "pt_packages"
}

// ToDomain converts the persistence model to a domain PtPackage
func (m *PtPackageModel) ToDomain() (*training.PtPackage, error) {
	price, err := restoreMoney(m.PriceMinor, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("package %s price: %w", m.ID, err)
	}
	return &training.PtPackage{
		BaseEntity:    m.entity(),
		Name:          m.Name,
		Price:         price,
		SessionsTotal: m.SessionsTotal,
		Description:   m.Description,
	}, nil
}

// PtPackageModelFromDomain creates a persistence model from a domain PtPackage
func PtPackageModelFromDomain(p *training.PtPackage) *PtPackageModel {
	m := &PtPackageModel{
		Name:          p.Name,
		Currency:      string(p.Price.Currency()),
		PriceMinor:    p.Price.Minor(),
		SessionsTotal: p.SessionsTotal,
		Description:   p.Description,
	}
	m.setEntity(p.BaseEntity)
	return m
}

// PtAllocationModel is the persistence model for the PtPackageAllocation aggregate
type PtAllocationModel struct {
	AggregateModel
	CustomerID        uuid.UUID                 `gorm:"type:uuid;not null;index"`
	PtPackageID       uuid.UUID                 `gorm:"type:uuid;not null"`
	CoachID           *uuid.UUID                `gorm:"type:uuid"`
	StartDate         time.Time                 `gorm:"not null"`
	SessionsTotal     int                       `gorm:"not null"`
	SessionsRemaining int                       `gorm:"not null"`
	Status            training.AllocationStatus `gorm:"type:varchar(16);not null;index"`
	BillID            *uuid.UUID                `gorm:"type:uuid"`
	CancelledAt       *time.Time
	CancelReason      string `gorm:"type:text"`
	CompletedAt       *time.Time
}

// TableName returns the table name for GORM
func (PtAllocationModel) TableName() string {
	return "pt_package_allocations"
}

// ToDomain converts the persistence model to a domain PtPackageAllocation
func (m *PtAllocationModel) ToDomain() *training.PtPackageAllocation {
	return &training.PtPackageAllocation{
		BaseAggregateRoot: m.root(),
		CustomerID:        m.CustomerID,
		PtPackageID:       m.PtPackageID,
		CoachID:           m.CoachID,
		StartDate:         m.StartDate,
		SessionsTotal:     m.SessionsTotal,
		SessionsRemaining: m.SessionsRemaining,
		Status:            m.Status,
		BillID:            m.BillID,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		CompletedAt:       m.CompletedAt,
	}
}

// PtAllocationModelFromDomain creates a persistence model from a domain PtPackageAllocation
func PtAllocationModelFromDomain(a *training.PtPackageAllocation) *PtAllocationModel {
	m := &PtAllocationModel{
		CustomerID:        a.CustomerID,
		PtPackageID:       a.PtPackageID,
		CoachID:           a.CoachID,
		StartDate:         a.StartDate,
		SessionsTotal:     a.SessionsTotal,
		SessionsRemaining: a.SessionsRemaining,
		Status:            a.Status,
		BillID:            a.BillID,
		CancelledAt:       a.CancelledAt,
		CancelReason:      a.CancelReason,
		CompletedAt:       a.CompletedAt,
	}
	m.setRoot(a.BaseAggregateRoot)
	return m
}
