package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
)

func TestParseSignedAmount(t *testing.T) {
	t.Run("Valid amounts", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected string
		}{
			{"100.00", "100"},
			{"0.01", "0.01"},
			{"-25.50", "-25.5"},
			{"+12", "12"},
			{"1,234,567.89", "1234567.89"},
			{" 7.1234 ", "7.1234"},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				got, err := ParseSignedAmount(tc.input)
				require.NoError(t, err)
				assert.True(t, decimal.RequireFromString(tc.expected).Equal(got), "got %s", got)
			})
		}
	})

	t.Run("Invalid amounts", func(t *testing.T) {
		testCases := []struct {
			input       string
			description string
		}{
			{"", "empty string"},
			{"abc", "not a number"},
			{"1e5", "exponent"},
			{"$10.00", "currency symbol"},
			{"1.23456", "too many decimal places"},
			{"1.2.3", "multiple decimal points"},
		}

		for _, tc := range testCases {
			t.Run(tc.description, func(t *testing.T) {
				_, err := ParseSignedAmount(tc.input)
				assert.ErrorIs(t, err, errs.ErrInvalidAmount)
			})
		}
	})
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount("25.50")
	require.NoError(t, err)
	assert.Equal(t, "25.50", FormatAmount(got))

	_, err = ParseAmount("-1")
	assert.ErrorIs(t, err, errs.ErrNegativeAmount)
}

func TestSplitSigned(t *testing.T) {
	mag, typ := SplitSigned(decimal.RequireFromString("-42.10"))
	assert.Equal(t, "42.10", FormatAmount(mag))
	assert.Equal(t, TransactionTypeExpense, typ)

	mag, typ = SplitSigned(decimal.RequireFromString("3000"))
	assert.Equal(t, "3000.00", FormatAmount(mag))
	assert.Equal(t, TransactionTypeIncome, typ)
}

func TestDecimalSumIsExact(t *testing.T) {
	sum := decimal.Zero
	for i := 0; i < 10; i++ {
		sum = sum.Add(decimal.RequireFromString("0.10"))
	}
	assert.Equal(t, "1.00", FormatAmount(sum))
	assert.True(t, sum.Equal(decimal.NewFromInt(1)))
}
