// Package types provides common type aliases and utilities.
package types

import (
	"math"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// MoneyScale is the number of fractional digits published in totals and
// stored monetary columns. Intermediate arithmetic keeps full precision.
const MoneyScale int32 = 2

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// SanitizeAmount converts a raw float into Money, coercing NaN, infinities
// and negative values to zero. Raw numeric input from the API or imported
// data must pass through here before entering any calculation.
func SanitizeAmount(f float64) Money {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// SanitizeMoney floors a Money value at zero. Decimals cannot carry NaN,
// so only the sign needs correcting.
func SanitizeMoney(m Money) Money {
	if m.IsNegative() {
		return decimal.Zero
	}
	return m
}

// ClampMoney restricts m to the inclusive range [lo, hi].
func ClampMoney(m, lo, hi Money) Money {
	if m.LessThan(lo) {
		return lo
	}
	if m.GreaterThan(hi) {
		return hi
	}
	return m
}

// ClampPercent restricts a percentage to [0, 100].
func ClampPercent(p Money) Money {
	return ClampMoney(p, decimal.Zero, decimal.NewFromInt(100))
}

// RoundMoney rounds to the published money scale (half up).
func RoundMoney(m Money) Money {
	return m.Round(MoneyScale)
}
