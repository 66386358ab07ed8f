package valueobject

import (
	"encoding/json"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Percentage is a discount rate in the closed range [0, 100]
type Percentage struct {
	value decimal.Decimal
}

// NewPercentage validates and wraps a percentage value
func NewPercentage(value decimal.Decimal) (Percentage, error) {
	if value.IsNegative() || value.GreaterThan(hundred) {
		return Percentage{}, shared.ErrInvalidDiscount
	}
	return Percentage{value: value}, nil
}

// ParsePercentage parses a string such as "12.5"
func ParsePercentage(s string) (Percentage, error) {
	if s == "" {
		return Percentage{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Percentage{}, shared.ErrInvalidDiscount.WithMessage("invalid discount percentage %q", s)
	}
	return NewPercentage(d)
}

// MustPercentage is NewPercentage for constants and tests
func MustPercentage(value int64) Percentage {
	p, err := NewPercentage(decimal.NewFromInt(value))
	if err != nil {
		panic(err)
	}
	return p
}

// Decimal returns the raw percentage value
func (p Percentage) Decimal() decimal.Decimal {
	return p.value
}

// IsZero returns true when no discount applies
func (p Percentage) IsZero() bool {
	return p.value.IsZero()
}

// Equals compares two percentages numerically
func (p Percentage) Equals(other Percentage) bool {
	return p.value.Equal(other.value)
}

// String returns the percentage as a plain decimal string
func (p Percentage) String() string {
	return p.value.String()
}

// MarshalJSON encodes the percentage as a decimal string
func (p Percentage) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.value.String())
}

// UnmarshalJSON decodes and validates a decimal string
func (p *Percentage) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePercentage(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
