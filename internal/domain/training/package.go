package training

import (
	"strings"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
)

// PtPackage is a catalog block of personal-training sessions
type PtPackage struct {
	shared.BaseEntity
	Name          string
	Price         valueobject.Money
	SessionsTotal int
	Description   string
}

// NewPtPackage creates a validated catalog package
func NewPtPackage(name string, price valueobject.Money, sessions int, description string) (*PtPackage, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("INVALID_PACKAGE_NAME", "Package name cannot be empty")
	}
	if sessions <= 0 {
		return nil, shared.NewValidationError("INVALID_SESSIONS", "Package must include at least one session")
	}
	return &PtPackage{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          strings.TrimSpace(name),
		Price:         price,
		SessionsTotal: sessions,
		Description:   description,
	}, nil
}
