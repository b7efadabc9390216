package utils_test

import (
	"testing"

	"brokerage/src/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestValidateQuantity(t *testing.T) {
	cases := []struct {
		in      string
		wantErr error
	}{
		{"10", nil},
		{"0.0000000001", nil},
		{"0", utils.ErrNonPositive},
		{"-1", utils.ErrNonPositive},
		{"0.00000000001", utils.ErrExcessPrecision},
		{"1.12345678901", utils.ErrExcessPrecision},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			err := utils.ValidateQuantity(decimal.RequireFromString(c.in))
			if c.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, c.wantErr)
			}
		})
	}
}

func TestValidateQuantityRange(t *testing.T) {
	cases := []struct {
		in      string
		wantErr error
	}{
		{"9999999999.9999999999", nil},
		{"9999999999", nil},
		{"1000", nil},
		{"1e10", utils.ErrOutOfRange},
		{"10000000000", utils.ErrOutOfRange},
		{"12345678901.5", utils.ErrOutOfRange},
		{"1e30", utils.ErrOutOfRange},
		{"10000000000.0000000000", utils.ErrOutOfRange},
		{"1e50000000", utils.ErrOutOfRange},
		{"1e-50000000", utils.ErrExcessPrecision},
		{"1.50000000000000000000", nil},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			err := utils.ValidateQuantity(decimal.RequireFromString(c.in))
			if c.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, c.wantErr)
			}
		})
	}
}

func TestCheckRange(t *testing.T) {
	assert.NoError(t, utils.CheckRange(decimal.Zero))
	assert.NoError(t, utils.CheckRange(decimal.RequireFromString("-9999999999.5")))
	assert.ErrorIs(t, utils.CheckRange(decimal.RequireFromString("-10000000000")), utils.ErrOutOfRange)
}

func TestTotalValue(t *testing.T) {
	t.Run("exact product", func(t *testing.T) {
		total := utils.TotalValue(decimal.NewFromInt(10), decimal.RequireFromString("50.50"))
		assert.Equal(t, "505", total.String())
	})

	t.Run("rounds half to even at scale 10", func(t *testing.T) {
		// 0.00000000005 * 1 has 11 fractional digits, ending in 5.
		amount := decimal.RequireFromString("0.0000000001")
		price := decimal.RequireFromString("0.5")
		assert.True(t, utils.TotalValue(amount, price).IsZero())

		price = decimal.RequireFromString("1.5")
		assert.Equal(t, "0.0000000002", utils.TotalValue(amount, price).String())
	})
}

func TestProperty_TotalValueFitsScale(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		amount := decimal.New(rapid.Int64Range(1, 1_000_000_000).Draw(t, "amount"), -rapid.Int32Range(0, 10).Draw(t, "amountExp"))
		price := decimal.New(rapid.Int64Range(1, 1_000_000_000).Draw(t, "price"), -rapid.Int32Range(0, 10).Draw(t, "priceExp"))

		total := utils.TotalValue(amount, price)
		if !total.Equal(total.Truncate(utils.DecimalScale)) {
			t.Fatalf("total %s exceeds scale", total)
		}
		if total.Sub(amount.Mul(price)).Abs().GreaterThan(decimal.New(5, -11)) {
			t.Fatalf("total %s drifted from %s", total, amount.Mul(price))
		}
	})
}
