package utils

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DecimalScale is the number of fractional digits stored for every balance,
// price, quantity and total (numeric(20,10) columns).
const DecimalScale int32 = 10

// IntegerDigits is the number of digits left of the point a numeric(20,10)
// column can hold.
const IntegerDigits = 10

var (
	ErrNonPositive     = errors.New("value must be greater than zero")
	ErrExcessPrecision = fmt.Errorf("value must have at most %d decimal places", DecimalScale)
	ErrOutOfRange      = fmt.Errorf("value must be less than 1e%d", IntegerDigits)
)

// ValidateQuantity checks that d is strictly positive and storable at
// DecimalScale without rounding. Only the exponent and the digit count are
// inspected before the range is known, so inputs like 1e50000000 are
// rejected without being expanded.
func ValidateQuantity(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrNonPositive
	}
	if err := CheckRange(d); err != nil {
		return err
	}
	// A non-zero coefficient with more trailing places than digits cannot
	// be divisible down to DecimalScale.
	if -int64(d.Exponent()) > coefficientDigits(d)+int64(DecimalScale) {
		return ErrExcessPrecision
	}
	if !d.Equal(d.Truncate(DecimalScale)) {
		return ErrExcessPrecision
	}
	return nil
}

// CheckRange reports ErrOutOfRange when |d| >= 1e10.
func CheckRange(d decimal.Decimal) error {
	if d.IsZero() {
		return nil
	}
	if coefficientDigits(d)+int64(d.Exponent()) > IntegerDigits {
		return ErrOutOfRange
	}
	return nil
}

func coefficientDigits(d decimal.Decimal) int64 {
	c := d.Coefficient()
	return int64(len(c.Abs(c).String()))
}

// TotalValue returns amount × price rounded half-to-even at DecimalScale.
func TotalValue(amount, price decimal.Decimal) decimal.Decimal {
	return amount.Mul(price).RoundBank(DecimalScale)
}

// ParseStoredDecimal parses a numeric column read as text.
func ParseStoredDecimal(column, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s: %w", column, err)
	}
	return d, nil
}
