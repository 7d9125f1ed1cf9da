// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.Balance,
		&a.CreatedAt,
	)

	return a, err
}

const createQuery = `
INSERT INTO
    accounts (owner_id, balance)
VALUES
    ($1, $2)
RETURNING id, owner_id, balance, created_at
`

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, ownerID int64, balance decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, createQuery, ownerID, balance))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "accounts_owner_id_key":
				l.Info().Err(err).Int64("owner_id", ownerID).Msg("duplicate account")
				return domain.Account{}, domain.ErrDuplicateAccount
			case "accounts_balance_check":
				return domain.Account{}, domain.ErrInvalidAmount
			}
		}

		l.Error().Err(err).Int64("owner_id", ownerID).Send()

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

const getForUpdateQuery = `
SELECT
	id, owner_id, balance, created_at
FROM accounts
WHERE id = $1
FOR NO KEY UPDATE
`

// GetForUpdate returns the account with the given id and locks its row.
//
// The lock is held until the surrounding transaction ends, so it must run on a *sql.Tx.
func (r *RepoPGS) GetForUpdate(ctx context.Context, id int64) (domain.Account, error) {
	return r.get(ctx, getForUpdateQuery, id)
}

const getByOwnerQuery = `
SELECT
	id, owner_id, balance, created_at
FROM accounts
WHERE owner_id = $1
`

// GetByOwner returns the account of the given owner.
func (r *RepoPGS) GetByOwner(ctx context.Context, ownerID int64) (domain.Account, error) {
	return r.get(ctx, getByOwnerQuery, ownerID)
}

func (r *RepoPGS) get(ctx context.Context, query string, arg int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

const updateBalanceQuery = `
UPDATE accounts
SET balance = $1
WHERE id = $2
RETURNING id, owner_id, balance, created_at
`

// UpdateBalance sets the account's balance and returns the changed account.
func (r *RepoPGS) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, updateBalanceQuery, balance, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "accounts_balance_check" {
			return domain.Account{}, &domain.BusinessRuleError{Err: domain.ErrInsufficientBalance}
		}

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

const listQuery = `
SELECT
	id, owner_id, balance, created_at
FROM accounts
ORDER BY id
LIMIT $1 OFFSET $2
`

// List returns the specified number of accounts in creation order.
func (r *RepoPGS) List(ctx context.Context, limit, offset int32) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
