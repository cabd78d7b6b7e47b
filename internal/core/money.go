// Package core holds the domain model of the expense tracker: owners,
// categories, expenses, budgets and the aggregate values derived from them.
//
// Monetary amounts are decimal with at most two fractional digits. Arithmetic
// is performed on decimals (or exact integer cents in storage), never on
// binary floats.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a validated monetary amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. The value
// must be strictly positive and carry at most two fractional digits.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("12.345") -> error (too many decimals)
//	ParseAmount("-1")     -> error (not positive)
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount rejects non-positive amounts and amounts with more than two
// fractional digits.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	if d.Exponent() < -2 && !d.Equal(d.Truncate(2)) {
		return ErrInvalidAmount
	}
	return nil
}

// Cents returns the exact integer-cents representation used by storage.
// Callers must validate the amount first; 12.34 becomes 1234.
func Cents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).IntPart()
}

// FromCents converts storage cents back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
