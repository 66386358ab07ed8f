package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/membership"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MembershipPlanModel is the persistence model for catalog plans.
// Features is a JSON array of strings.
type MembershipPlanModel struct {
	BaseModel
	Name         string                  `gorm:"type:varchar(100);not null"`
	Currency     string                  `gorm:"type:varchar(3);not null"`
	PriceMinor   int64                   `gorm:"not null"`
	PlanPeriod   int                     `gorm:"not null"`
	PlanInterval membership.IntervalUnit `gorm:"type:varchar(10);not null"`
	Features     datatypes.JSON
}

// TableName returns the table name for GORM
func (MembershipPlanModel) TableName() string {
	return "membership_plans"
}

// ToDomain converts the persistence model to a domain MembershipPlan
func (m *MembershipPlanModel) ToDomain() (*membership.MembershipPlan, error) {
	price, err := restoreMoney(m.PriceMinor, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("plan %s price: %w", m.ID, err)
	}
	unit, err := membership.ParseIntervalUnit(string(m.PlanInterval))
	if err != nil {
		return nil, fmt.Errorf("plan %s interval: %w", m.ID, err)
	}
	var features []string
	if len(m.Features) > 0 {
		if err := json.Unmarshal(m.Features, &features); err != nil {
			return nil, fmt.Errorf("plan %s features: %w", m.ID, err)
		}
	}
	return &membership.MembershipPlan{
		BaseEntity:   m.entity(),
		Name:         m.Name,
		Price:        price,
		PlanPeriod:   m.PlanPeriod,
		PlanInterval: unit,
		Features:     features,
	}, nil
}

// MembershipPlanModelFromDomain creates a persistence model from a domain MembershipPlan
func MembershipPlanModelFromDomain(p *membership.MembershipPlan) (*MembershipPlanModel, error) {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return nil, err
	}
	m := &MembershipPlanModel{
		Name:         p.Name,
		Currency:     string(p.Price.Currency()),
		PriceMinor:   p.Price.Minor(),
		PlanPeriod:   p.PlanPeriod,
		PlanInterval: p.PlanInterval,
		Features:     datatypes.JSON(raw),
	}
	m.setEntity(p.BaseEntity)
	return m, nil
}

// MembershipModel is the persistence model for the Membership aggregate.
// At most one ACTIVE row per customer is enforced by a partial unique index.
type MembershipModel struct {
	AggregateModel
	CustomerID       uuid.UUID                   `gorm:"type:uuid;not null;index;uniqueIndex:idx_memberships_one_active,where:status = 'ACTIVE'"`
	MembershipPlanID uuid.UUID                   `gorm:"type:uuid;not null;index"`
	StartDate        time.Time                   `gorm:"not null"`
	EndDate          time.Time                   `gorm:"not null"`
	Status           membership.MembershipStatus `gorm:"type:varchar(16);not null"`
	SupersededAt     *time.Time
	SupersededBy     *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (MembershipModel) TableName() string {
	return "memberships"
}

// ToDomain converts the persistence model to a domain Membership
func (m *MembershipModel) ToDomain() *membership.Membership {
	return &membership.Membership{
		BaseAggregateRoot: m.root(),
		CustomerID:        m.CustomerID,
		MembershipPlanID:  m.MembershipPlanID,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		Status:            m.Status,
		SupersededAt:      m.SupersededAt,
		SupersededBy:      m.SupersededBy,
	}
}

// MembershipModelFromDomain creates a persistence model from a domain Membership
func MembershipModelFromDomain(ms *membership.Membership) *MembershipModel {
	m := &MembershipModel{
		CustomerID:       ms.CustomerID,
		MembershipPlanID: ms.MembershipPlanID,
		StartDate:        ms.StartDate,
		EndDate:          ms.EndDate,
		Status:           ms.Status,
		SupersededAt:     ms.SupersededAt,
		SupersededBy:     ms.SupersededBy,
	}
	m.setRoot(ms.BaseAggregateRoot)
	return m
}
