package valueobject

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money in minor units", func(t *testing.T) {
		m, err := NewMoney(90000, PHP)
		require.NoError(t, err)
		assert.Equal(t, PHP, m.Currency())
		assert.Equal(t, int64(90000), m.Minor())
		assert.Equal(t, "900.00", m.FormatMajor())
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewMoney(-1, PHP)
		assert.True(t, errors.Is(err, shared.ErrInvalidAmount))
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("empty currency defaults", func(t *testing.T) {
		m, err := NewMoney(1, "")
		require.NoError(t, err)
		assert.Equal(t, DefaultCurrency, m.Currency())
	})
}

func TestNewMoneyFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"whole", "1000", 100000, false},
		{"two decimals", "12.34", 1234, false},
		{"rounds half up", "0.005", 1, false},
		{"float adjacent", "0.1", 10, false},
		{"negative", "-5", 0, true},
		{"garbage", "abc", 0, true},
		{"largest amount", "92233720368547758.07", MaxMinorUnits, false},
		{"beyond int64 minor units", "92233720368547758.08", 0, true},
		{"twenty digit amount", "100000000000000000000.00", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.input, PHP)
			if tt.wantErr {
				assert.True(t, errors.Is(err, shared.ErrInvalidAmount))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Minor())
		})
	}
}

func TestMoneyAddSubtract(t *testing.T) {
	a := MustNewMoney(50000, PHP)
	b := MustNewMoney(40000, PHP)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(90000), sum.Minor())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), diff.Minor())

	_, err = b.Subtract(a)
	assert.True(t, errors.Is(err, shared.ErrInvalidAmount))

	_, err = a.Add(MustNewMoney(1, USD))
	assert.Error(t, err)
}

func TestMoneyAddOverflow(t *testing.T) {
	largest := MustNewMoney(MaxMinorUnits, PHP)

	_, err := largest.Add(MustNewMoney(1, PHP))
	assert.True(t, errors.Is(err, shared.ErrInvalidAmount))

	_, err = MustNewMoney(50000, PHP).Add(MustNewMoney(MaxMinorUnits-1000, PHP))
	assert.True(t, errors.Is(err, shared.ErrInvalidAmount))

	sum, err := MustNewMoney(MaxMinorUnits-1, PHP).Add(MustNewMoney(1, PHP))
	require.NoError(t, err)
	assert.Equal(t, MaxMinorUnits, sum.Minor())

	_, err = Sum(PHP, largest, MustNewMoney(1, PHP))
	assert.True(t, errors.Is(err, shared.ErrInvalidAmount))
}

func TestMoneyMultiplyByInt(t *testing.T) {
	m := MustNewMoney(2500, PHP)
	assert.Equal(t, int64(10000), m.MultiplyByInt(4).Minor())
	assert.True(t, m.MultiplyByInt(0).IsZero())
	assert.True(t, m.MultiplyByInt(-3).IsZero())
	assert.Equal(t, MaxMinorUnits, MustNewMoney(MaxMinorUnits/2+1, PHP).MultiplyByInt(2).Minor())
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(decimal.RequireFromString("92233720368547758.07")))
	assert.False(t, InRange(decimal.RequireFromString("92233720368547758.08")))
	assert.False(t, InRange(decimal.NewFromInt(-1)))
	assert.True(t, InRange(decimal.Zero))
}

func TestMoneyApplyDiscount(t *testing.T) {
	tests := []struct {
		name     string
		gross    int64
		discount Percentage
		want     int64
	}{
		{"ten percent", 100000, MustPercentage(10), 90000},
		{"no discount", 100000, MustPercentage(0), 100000},
		{"full discount", 100000, MustPercentage(100), 0},
		{"rounds half up", 5, MustPercentage(50), 3},
		{"rounds down below half", 1, MustPercentage(70), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MustNewMoney(tt.gross, PHP).ApplyDiscount(tt.discount)
			assert.Equal(t, tt.want, got.Minor())
		})
	}

	t.Run("fractional percentage", func(t *testing.T) {
		p, err := ParsePercentage("12.5")
		require.NoError(t, err)
		assert.Equal(t, int64(8750), MustNewMoney(10000, PHP).ApplyDiscount(p).Minor())
	})
}

func TestMoneyScale(t *testing.T) {
	m := MustNewMoney(120000, PHP)
	assert.Equal(t, int64(10000), m.Scale(1, 12).Minor())
	assert.Equal(t, int64(520000), m.Scale(52, 12).Minor())
	assert.Equal(t, int64(1), MustNewMoney(1, PHP).Scale(1, 2).Minor())
	assert.True(t, m.Scale(1, 0).IsZero())
	assert.Equal(t, MaxMinorUnits, MustNewMoney(MaxMinorUnits, PHP).Scale(365, 12).Minor())
}

func TestMoneyCompare(t *testing.T) {
	a := MustNewMoney(100, PHP)
	b := MustNewMoney(200, PHP)

	lt, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := a.GreaterThan(b)
	require.NoError(t, err)
	assert.False(t, gt)

	assert.True(t, a.Equals(MustNewMoney(100, PHP)))
	assert.False(t, a.Equals(MustNewMoney(100, USD)))
}

func TestMoneyJSON(t *testing.T) {
	m := MustNewMoney(123456, PHP)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount_minor":123456,"amount":"1234.56","currency":"PHP"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))

	err = json.Unmarshal([]byte(`{"amount_minor":-1,"currency":"PHP"}`), &decoded)
	assert.True(t, errors.Is(err, shared.ErrInvalidAmount))
}

func TestSum(t *testing.T) {
	total, err := Sum(PHP, MustNewMoney(1, PHP), MustNewMoney(2, PHP), MustNewMoney(3, PHP))
	require.NoError(t, err)
	assert.Equal(t, int64(6), total.Minor())

	empty, err := Sum(PHP)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func TestPercentage(t *testing.T) {
	t.Run("range", func(t *testing.T) {
		_, err := NewPercentage(decimal.NewFromInt(-1))
		assert.True(t, errors.Is(err, shared.ErrInvalidDiscount))
		_, err = NewPercentage(decimal.NewFromInt(101))
		assert.True(t, errors.Is(err, shared.ErrInvalidDiscount))
		_, err = NewPercentage(decimal.NewFromInt(100))
		assert.NoError(t, err)
	})

	t.Run("parse empty is zero", func(t *testing.T) {
		p, err := ParsePercentage("")
		require.NoError(t, err)
		assert.True(t, p.IsZero())
	})

	t.Run("json", func(t *testing.T) {
		var p Percentage
		require.NoError(t, json.Unmarshal([]byte(`"15"`), &p))
		assert.True(t, p.Equals(MustPercentage(15)))
		assert.Error(t, json.Unmarshal([]byte(`"150"`), &p))
	})
}
