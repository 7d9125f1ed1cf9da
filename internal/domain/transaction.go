package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("Transaction not found.")
	// ErrInvalidAmount indicates that the amount is not a positive number.
	ErrInvalidAmount = errors.New("amount must be a positive number")
	// ErrInvalidTransactionType indicates unsupported transaction type.
	ErrInvalidTransactionType = errors.New("transaction type must be DEPOSIT or WITHDRAWAL")
)

// TransactionType is the direction of a balance change.
type TransactionType string

// Supported transaction types.
const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
)

// ParseTransactionType converts s to TransactionType ignoring case.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidTransactionType
	}

	return t, nil
}

// Valid reports whether t is one of the supported types.
func (t TransactionType) Valid() bool {
	return t == Deposit || t == Withdrawal
}

// Transaction is an immutable ledger record of a single balance change.
type Transaction struct {
	ID        int64           `json:"id"`
	AccountID int64           `json:"account_id"`
	Type      TransactionType `json:"type"`
	Amount    decimal.Decimal `json:"amount"` // always positive
	CreatedAt time.Time       `json:"created_at"`
}

// CreateTransactionParams is the input data for the ledger transaction.
type CreateTransactionParams struct {
	AccountID int64
	Type      TransactionType
	Amount    decimal.Decimal
}

// TransactionTxResult is the result of the ledger transaction.
type TransactionTxResult struct {
	Transaction Transaction `json:"transaction"`
	Account     Account     `json:"account"`
}

// LedgerTx provides the statements executed inside a single ledger database transaction.
type LedgerTx interface {
	// GetAccountForUpdate loads the account and locks it until the transaction ends.
	GetAccountForUpdate(ctx context.Context, id int64) (Account, error)
	UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) (Account, error)
	CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error)
}
