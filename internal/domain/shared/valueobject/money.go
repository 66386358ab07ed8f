package valueobject

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	PHP Currency = "PHP" // Philippine Peso (default)
	USD Currency = "USD" // US Dollar
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = PHP

// minorUnitsPerMajor is the number of minor units (centavos, cents) in one major unit
const minorUnitsPerMajor = 100

// MaxMinorUnits is the largest amount Money can hold, in minor units
const MaxMinorUnits int64 = math.MaxInt64

var (
	hundred  = decimal.NewFromInt(100)
	maxMinor = decimal.NewFromInt(MaxMinorUnits)
)

// Money is a value object representing a non-negative monetary amount.
// The amount is held as an integer count of minor units so that sums and
// comparisons are exact. It is immutable; all operations return new values.
type Money struct {
	minor    int64
	currency Currency
}

// NewMoney creates Money from an amount in minor units
func NewMoney(minor int64, currency Currency) (Money, error) {
	if minor < 0 {
		return Money{}, shared.ErrInvalidAmount
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{minor: minor, currency: currency}, nil
}

// MustNewMoney creates Money from minor units, panics on a negative amount
func MustNewMoney(minor int64, currency Currency) Money {
	m, err := NewMoney(minor, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoneyFromDecimal creates Money from an amount in major units.
// Fractions of a minor unit are rounded half-up. Amounts beyond MaxMinorUnits are rejected.
func NewMoneyFromDecimal(amount decimal.Decimal, currency Currency) (Money, error) {
	if amount.IsNegative() {
		return Money{}, shared.ErrInvalidAmount
	}
	minor := amount.Mul(decimal.NewFromInt(minorUnitsPerMajor)).Round(0)
	if minor.GreaterThan(maxMinor) {
		return Money{}, shared.ErrInvalidAmount.WithMessage("amount %s is too large", amount.String())
	}
	return NewMoney(minor.IntPart(), currency)
}

// InRange reports whether a major-unit amount fits in Money
func InRange(amount decimal.Decimal) bool {
	return !amount.IsNegative() &&
		amount.Mul(decimal.NewFromInt(minorUnitsPerMajor)).Round(0).LessThanOrEqual(maxMinor)
}

// NewMoneyFromString creates Money from a major-unit string such as "1500.50"
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, shared.ErrInvalidAmount.WithMessage("invalid amount %q", amount)
	}
	return NewMoneyFromDecimal(d, currency)
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{currency: currency}
}

// Minor returns the amount in minor units
func (m Money) Minor() int64 {
	return m.minor
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

// Decimal returns the amount in major units
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.minor, -2)
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.minor == 0
}

// IsPositive returns true if the amount is greater than zero
func (m Money) IsPositive() bool {
	return m.minor > 0
}

// Add returns the sum of both amounts. A sum beyond MaxMinorUnits is rejected.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	if other.minor > MaxMinorUnits-m.minor {
		return Money{}, shared.ErrInvalidAmount.WithMessage(
			"sum of %s and %s is too large", m.String(), other.String())
	}
	return Money{minor: m.minor + other.minor, currency: m.Currency()}, nil
}

// Subtract returns the difference; a negative result is rejected
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	if other.minor > m.minor {
		return Money{}, shared.ErrInvalidAmount.WithMessage(
			"cannot subtract %s from %s", other.String(), m.String())
	}
	return Money{minor: m.minor - other.minor, currency: m.Currency()}, nil
}

// MultiplyByInt multiplies the amount by a non-negative integer factor.
// The product saturates at MaxMinorUnits.
func (m Money) MultiplyByInt(factor int64) Money {
	if factor <= 0 || m.minor == 0 {
		return Zero(m.Currency())
	}
	if m.minor > MaxMinorUnits/factor {
		return Money{minor: MaxMinorUnits, currency: m.Currency()}
	}
	return Money{minor: m.minor * factor, currency: m.Currency()}
}

// Scale returns m × num / den, rounded half-up to a whole minor unit.
// The result saturates at MaxMinorUnits.
func (m Money) Scale(num, den int64) Money {
	if den <= 0 || num <= 0 {
		return Zero(m.Currency())
	}
	scaled := decimal.NewFromInt(m.minor).
		Mul(decimal.NewFromInt(num)).
		Div(decimal.NewFromInt(den)).
		Round(0)
	if scaled.GreaterThan(maxMinor) {
		return Money{minor: MaxMinorUnits, currency: m.Currency()}
	}
	return Money{minor: scaled.IntPart(), currency: m.Currency()}
}

// ApplyDiscount returns the amount after a percentage discount,
// rounded half-up to a whole minor unit
func (m Money) ApplyDiscount(discount Percentage) Money {
	net := decimal.NewFromInt(m.minor).
		Mul(hundred.Sub(discount.value)).
		Div(hundred).
		Round(0)
	return Money{minor: net.IntPart(), currency: m.Currency()}
}

// Equals compares amount and currency
func (m Money) Equals(other Money) bool {
	return m.minor == other.minor && m.Currency() == other.Currency()
}

// LessThan reports whether m < other; currencies must match
func (m Money) LessThan(other Money) (bool, error) {
	if err := m.sameCurrency(other); err != nil {
		return false, err
	}
	return m.minor < other.minor, nil
}

// GreaterThan reports whether m > other; currencies must match
func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.sameCurrency(other); err != nil {
		return false, err
	}
	return m.minor > other.minor, nil
}

// FormatMajor returns the amount in major units with two decimals, e.g. "900.00"
func (m Money) FormatMajor() string {
	return m.Decimal().StringFixed(2)
}

// String returns a display form such as "PHP 900.00"
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Currency(), m.FormatMajor())
}

func (m Money) sameCurrency(other Money) error {
	if m.Currency() != other.Currency() {
		return shared.NewValidationError("CURRENCY_MISMATCH",
			fmt.Sprintf("currency mismatch: %s and %s", m.Currency(), other.Currency()))
	}
	return nil
}

type moneyJSON struct {
	AmountMinor int64    `json:"amount_minor"`
	Amount      string   `json:"amount"`
	Currency    Currency `json:"currency"`
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		AmountMinor: m.minor,
		Amount:      m.FormatMajor(),
		Currency:    m.Currency(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. amount_minor is authoritative.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := NewMoney(v.AmountMinor, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Sum adds up amounts of the same currency. An empty list sums to zero in the default currency.
func Sum(currency Currency, amounts ...Money) (Money, error) {
	total := Zero(currency)
	for _, a := range amounts {
		var err error
		total, err = total.Add(a)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
