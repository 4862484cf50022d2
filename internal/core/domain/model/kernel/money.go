package kernel

import (
	"fmt"

	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fraction digits stored for amounts.
const MoneyScale = 2

var hundred = decimal.NewFromInt(100)

// ValidateAmount rejects negative amounts and amounts with more than two
// fraction digits.
func ValidateAmount(name string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%s is negative", amount))
	}
	if !amount.Equal(amount.Round(MoneyScale)) {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%s has more than %d fraction digits", amount, MoneyScale))
	}
	return nil
}

// ToCents converts an amount to the integer minor units some gateways expect.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromCents is the inverse of ToCents.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -MoneyScale)
}

// FormatAmount renders an amount with exactly two fraction digits.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(MoneyScale)
}
