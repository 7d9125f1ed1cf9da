// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"errors"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, ownerID int64, balance decimal.Decimal) (domain.Account, error)
	GetByOwner(ctx context.Context, ownerID int64) (domain.Account, error)
	List(ctx context.Context, limit, offset int32) ([]domain.Account, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo   Repo
	policy domain.LedgerPolicy
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo, policy domain.LedgerPolicy) *Service {
	return &Service{repo: ar, policy: policy}
}

// Create opens the account of the given owner with the initial balance.
//
// An owner holds at most one account. The lookup below only short-circuits the common
// case, the unique constraint on owner_id settles concurrent creations.
func (s *Service) Create(ctx context.Context, ownerID int64, balance decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if ownerID <= 0 {
		return domain.Account{}, domain.ErrInvalidOwner
	}

	if err := s.policy.CheckInitialBalance(balance); err != nil {
		event := l.Info().Err(err).Int64("owner_id", ownerID)
		if !errors.Is(err, domain.ErrAmountOutOfRange) {
			event.Str("balance", balance.String())
		}

		event.Send()

		return domain.Account{}, err
	}

	_, err := s.repo.GetByOwner(ctx, ownerID)
	switch {
	case err == nil:
		l.Warn().Int64("owner_id", ownerID).Msg("duplicate account creation attempt")
		return domain.Account{}, domain.ErrDuplicateAccount
	case !errors.Is(err, domain.ErrAccountNotFound):
		return domain.Account{}, err
	}

	account, err := s.repo.Create(ctx, ownerID, balance)
	if err != nil {
		return domain.Account{}, err
	}

	l.Info().
		Int64("account_id", account.ID).
		Int64("owner_id", account.OwnerID).
		Str("balance", account.Balance.String()).
		Msg("account created")

	return account, nil
}

// List returns a page of accounts, limit and skip are clamped to the allowed range.
func (s *Service) List(ctx context.Context, limit, skip int64) ([]domain.Account, error) {
	page := domain.NewPage(limit, skip)

	accounts, err := s.repo.List(ctx, page.Limit, page.Skip)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int("count", len(accounts)).
		Int32("limit", page.Limit).
		Int32("skip", page.Skip).
		Msg("accounts listed")

	return accounts, nil
}
