// Package transactionservice manages business logic layer of ledger transactions.
package transactionservice

import (
	"context"
	"errors"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	ExecTx(ctx context.Context, fn func(domain.LedgerTx) error) error
	Get(ctx context.Context, id int64) (domain.Transaction, error)
	List(ctx context.Context, limit, offset int32) ([]domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID int64, limit, offset int32) ([]domain.Transaction, error)
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo   Repo
	policy domain.LedgerPolicy
}

// New returns transaction service struct to manage ledger bussines logic.
func New(tr Repo, policy domain.LedgerPolicy) *Service {
	return &Service{
		repo:   tr,
		policy: policy,
	}
}

func validRequest(arg domain.CreateTransactionParams) error {
	if err := domain.ValidateMoney(arg.Amount); err != nil {
		return err
	}

	if !arg.Type.Valid() {
		return domain.ErrInvalidTransactionType
	}

	if arg.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}

	return nil
}

// Create applies the deposit or withdrawal to the account and records it in the ledger.
//
// The account row stays locked from the balance read to the commit, so concurrent
// transactions on one account are applied one after another and never lose an update.
// A rejected transaction leaves neither a record nor a balance change.
func (s *Service) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.TransactionTxResult, error) {
	l := zerolog.Ctx(ctx)

	audit := l.Info().
		Str("event", "ledger.transaction").
		Int64("account_id", arg.AccountID).
		Str("type", string(arg.Type))

	if err := validRequest(arg); err != nil {
		if !errors.Is(err, domain.ErrAmountOutOfRange) {
			audit.Str("amount", arg.Amount.String())
		}

		audit.Str("outcome", "rejected").Str("reason", err.Error()).Send()

		return domain.TransactionTxResult{}, err
	}

	audit.Str("amount", arg.Amount.String())

	var (
		result     domain.TransactionTxResult
		oldBalance decimal.Decimal
	)

	err := s.repo.ExecTx(ctx, func(tx domain.LedgerTx) error {
		account, err := tx.GetAccountForUpdate(ctx, arg.AccountID)
		if err != nil {
			return err
		}

		oldBalance = account.Balance

		newBalance, err := s.policy.Apply(account.Balance, arg.Type, arg.Amount)
		if err != nil {
			return err
		}

		result.Transaction, err = tx.CreateTransaction(ctx, arg)
		if err != nil {
			return err
		}

		result.Account, err = tx.UpdateAccountBalance(ctx, account.ID, newBalance)

		return err
	})

	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) || domain.IsBusinessRuleViolation(err) {
			audit.Str("outcome", "rejected").Str("reason", err.Error()).Send()
		} else {
			audit.Discard()
		}

		return domain.TransactionTxResult{}, err
	}

	audit.
		Str("outcome", "accepted").
		Int64("transaction_id", result.Transaction.ID).
		Str("old_balance", oldBalance.String()).
		Str("new_balance", result.Account.Balance.String()).
		Send()

	return result, nil
}

// Get returns the transaction with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return t, err
	}

	return t, nil
}

// List returns a page of ledger transactions.
func (s *Service) List(ctx context.Context, limit, skip int64) ([]domain.Transaction, error) {
	page := domain.NewPage(limit, skip)

	transactions, err := s.repo.List(ctx, page.Limit, page.Skip)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int("count", len(transactions)).
		Int32("limit", page.Limit).
		Int32("skip", page.Skip).
		Msg("transactions listed")

	return transactions, nil
}

// ListByAccount returns a page of the account's transactions.
//
// An unknown account yields an empty list.
func (s *Service) ListByAccount(ctx context.Context, accountID, limit, skip int64) ([]domain.Transaction, error) {
	page := domain.NewPage(limit, skip)

	transactions, err := s.repo.ListByAccount(ctx, accountID, page.Limit, page.Skip)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int64("account_id", accountID).
		Int("count", len(transactions)).
		Int32("limit", page.Limit).
		Int32("skip", page.Skip).
		Msg("account transactions listed")

	return transactions, nil
}
