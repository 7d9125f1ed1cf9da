package domain

import "github.com/shopspring/decimal"

// Money columns are numeric(20,4).
const (
	MoneyScale         = 4
	MoneyIntegerDigits = 16
)

// ErrAmountOutOfRange indicates an amount that cannot be stored without rounding.
// It matches ErrInvalidAmount under errors.Is.
var ErrAmountOutOfRange error = amountRangeError{}

type amountRangeError struct{}

func (amountRangeError) Error() string {
	return "amount must have at most 16 integer and 4 decimal digits"
}

func (amountRangeError) Is(target error) bool {
	return target == ErrInvalidAmount
}

var moneyUpperBound = decimal.New(1, MoneyIntegerDigits)

// ValidateMoney returns ErrAmountOutOfRange unless d fits a money column exactly.
//
// Exponent and digit count are checked before any arithmetic, values like 1e999999999
// would otherwise expand into huge integers.
func ValidateMoney(d decimal.Decimal) error {
	if d.IsZero() {
		return nil
	}

	exp := d.Exponent()
	if exp > MoneyIntegerDigits || exp < -(MoneyIntegerDigits+MoneyScale) ||
		d.NumDigits() > MoneyIntegerDigits+MoneyScale {
		return ErrAmountOutOfRange
	}

	if !d.Equal(d.Truncate(MoneyScale)) {
		return ErrAmountOutOfRange
	}

	if d.Abs().GreaterThanOrEqual(moneyUpperBound) {
		return ErrAmountOutOfRange
	}

	return nil
}
