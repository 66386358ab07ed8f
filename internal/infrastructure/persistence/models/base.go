package models

import (
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// BaseModel holds the identity and audit columns shared by every table
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) setEntity(e shared.BaseEntity) {
	m.ID, m.CreatedAt, m.UpdatedAt = e.ID, e.CreatedAt, e.UpdatedAt
}

// AggregateModel adds the optimistic-lock version used by saveVersioned
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// root rebuilds the aggregate base with no pending events
func (m *AggregateModel) root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.entity(), Version: m.Version}
}

func (m *AggregateModel) setRoot(a shared.BaseAggregateRoot) {
	m.setEntity(a.BaseEntity)
	m.Version = a.Version
}

// restoreMoney rebuilds a stored amount. Negative amounts are rejected by NewMoney
// and surface as an error rather than a silently wrong balance.
func restoreMoney(minor int64, currency string) (valueobject.Money, error) {
	return valueobject.NewMoney(minor, valueobject.Currency(currency))
}

// AllModels lists every model for AutoMigrate in tests and sqlite development databases
func AllModels() []any {
	return []any{
		&CustomerModel{},
		&MembershipPlanModel{},
		&PtPackageModel{},
		&BillModel{},
		&PaymentModel{},
		&MembershipModel{},
		&PtAllocationModel{},
	}
}
