package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
)

// MaxDecimalPlaces defines the maximum number of decimal places accepted for money amounts
const MaxDecimalPlaces = 4

// ParseSignedAmount parses a decimal money string such as "-25.50" or "+1,200.00".
// Thousands separators are accepted; exponents and currency symbols are not.
func ParseSignedAmount(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}
	amount = strings.ReplaceAll(amount, ",", "")
	if strings.ContainsAny(amount, "eE") {
		return decimal.Zero, fmt.Errorf("%w: exponent notation not allowed", errs.ErrInvalidAmount)
	}

	value, err := decimal.NewFromString(strings.TrimPrefix(amount, "+"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}
	if -value.Exponent() > MaxDecimalPlaces {
		return decimal.Zero, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
	}
	return value, nil
}

// ParseAmount parses a non-negative money magnitude
func ParseAmount(amount string) (decimal.Decimal, error) {
	value, err := ParseSignedAmount(amount)
	if err != nil {
		return decimal.Zero, err
	}
	if value.IsNegative() {
		return decimal.Zero, errs.ErrNegativeAmount
	}
	return value, nil
}

// SplitSigned converts a signed bank amount into the stored magnitude and
// direction: negative amounts are expenses, everything else is income.
func SplitSigned(amount decimal.Decimal) (decimal.Decimal, TransactionType) {
	if amount.IsNegative() {
		return amount.Abs(), TransactionTypeExpense
	}
	return amount, TransactionTypeIncome
}

// FormatAmount renders an amount with exactly 2 decimal places, rounding half
// away from zero.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
