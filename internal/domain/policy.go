package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrAmountBelowMinimum indicates that the amount is lower than the allowed minimum.
	ErrAmountBelowMinimum = errors.New("amount below minimum")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrBalanceLimitExceeded indicates that the resulting balance is above the allowed maximum.
	ErrBalanceLimitExceeded = errors.New("balance limit exceeded")
)

// BusinessRuleError is a syntactically valid request rejected by a ledger rule.
//
// Err is one of ErrAmountBelowMinimum, ErrInsufficientBalance or ErrBalanceLimitExceeded.
type BusinessRuleError struct {
	Err    error
	Detail string
}

func (e *BusinessRuleError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}

	return e.Err.Error() + ": " + e.Detail
}

func (e *BusinessRuleError) Unwrap() error {
	return e.Err
}

// IsBusinessRuleViolation reports whether any error in err's chain is a BusinessRuleError.
func IsBusinessRuleViolation(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// Default ledger limits.
var (
	DefaultMinTransactionAmount = decimal.RequireFromString("0.01")
	DefaultMaxAccountBalance    = decimal.RequireFromString("1000000")
)

// LedgerPolicy holds the business rules applied to every transaction.
type LedgerPolicy struct {
	MinTransactionAmount decimal.Decimal
	MaxAccountBalance    decimal.Decimal
}

// DefaultLedgerPolicy returns the policy with default limits.
func DefaultLedgerPolicy() LedgerPolicy {
	return LedgerPolicy{
		MinTransactionAmount: DefaultMinTransactionAmount,
		MaxAccountBalance:    DefaultMaxAccountBalance,
	}
}

// Apply validates the change of balance by amount and returns the new balance.
func (p LedgerPolicy) Apply(balance decimal.Decimal, t TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateMoney(amount); err != nil {
		return balance, err
	}

	if amount.LessThan(p.MinTransactionAmount) {
		return balance, &BusinessRuleError{
			Err:    ErrAmountBelowMinimum,
			Detail: fmt.Sprintf("minimum transaction amount is %s", p.MinTransactionAmount),
		}
	}

	var newBalance decimal.Decimal

	switch t {
	case Deposit:
		newBalance = balance.Add(amount)
	case Withdrawal:
		newBalance = balance.Sub(amount)
		if newBalance.IsNegative() {
			return balance, &BusinessRuleError{Err: ErrInsufficientBalance}
		}
	default:
		return balance, ErrInvalidTransactionType
	}

	if newBalance.GreaterThan(p.MaxAccountBalance) {
		return balance, &BusinessRuleError{
			Err:    ErrBalanceLimitExceeded,
			Detail: fmt.Sprintf("maximum account balance is %s", p.MaxAccountBalance),
		}
	}

	return newBalance, nil
}

// CheckInitialBalance validates the balance an account is opened with.
func (p LedgerPolicy) CheckInitialBalance(balance decimal.Decimal) error {
	if err := ValidateMoney(balance); err != nil {
		return err
	}

	if balance.IsNegative() {
		return ErrInvalidAmount
	}

	if balance.GreaterThan(p.MaxAccountBalance) {
		return &BusinessRuleError{
			Err:    ErrBalanceLimitExceeded,
			Detail: fmt.Sprintf("maximum account balance is %s", p.MaxAccountBalance),
		}
	}

	return nil
}
