// Package helpers seeds the database for integration tests.
package helpers

import (
	"context"
	"testing"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/shopspring/decimal"
)

// SeedAccount creates Account of a random owner with the given balance.
func SeedAccount(t *testing.T, tx dbpkg.SQLInterface, balance decimal.Decimal) domain.Account {
	t.Helper()

	accountRepo := accountrepo.NewRepoPGS(tx)
	ownerID := randompkg.OwnerID()

	account, err := accountRepo.Create(context.Background(), ownerID, balance)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %v, %v) returned error: %v", ownerID, balance, err)
	}

	return account
}

// SeedAccountWith1000Balance creates Account with 1000 on balance.
func SeedAccountWith1000Balance(t *testing.T, tx dbpkg.SQLInterface) domain.Account {
	t.Helper()

	return SeedAccount(t, tx, decimal.NewFromInt(1000))
}

// SeedTransaction appends Transaction to the ledger without changing the balance.
func SeedTransaction(t *testing.T, tx dbpkg.SQLInterface, accountID int64, txType domain.TransactionType, amount decimal.Decimal) domain.Transaction {
	t.Helper()

	transactionRepo := transactionrepo.NewTxRepoPGS(tx)
	arg := domain.CreateTransactionParams{
		AccountID: accountID,
		Type:      txType,
		Amount:    amount,
	}

	transaction, err := transactionRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("transactionRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return transaction
}

// SeedTransactions appends count deposits with random amounts.
func SeedTransactions(t *testing.T, tx dbpkg.SQLInterface, count int, accountID int64) []domain.Transaction {
	t.Helper()

	transactions := make([]domain.Transaction, count)

	for i := range transactions {
		transactions[i] = SeedTransaction(t, tx, accountID, domain.Deposit, randompkg.MoneyAmountBetween(1, 1000))
	}

	return transactions
}
