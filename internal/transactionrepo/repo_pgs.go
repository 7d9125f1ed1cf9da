// Package transactionrepo manages repository layer of ledger transactions.
package transactionrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transaction RepoPGS bound to an open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transaction RepoPGS wiht connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (domain.Transaction, error) {
	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Type,
		&t.Amount,
		&t.CreatedAt,
	)

	return t, err
}

const createQuery = `
INSERT INTO
    transactions (account_id, type, amount)
VALUES
    ($1, $2, $3)
RETURNING id, account_id, type, amount, created_at
`

// Create appends the transaction to the ledger and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	t, err := scanTransaction(r.db.QueryRowContext(ctx, createQuery, arg.AccountID, arg.Type, arg.Amount))
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx context.Context, %+v)", arg)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "transactions_account_id_fkey":
				return domain.Transaction{}, domain.ErrAccountNotFound
			case "transactions_amount_check":
				return domain.Transaction{}, domain.ErrInvalidAmount
			case "transactions_type_check":
				return domain.Transaction{}, domain.ErrInvalidTransactionType
			}
		}

		return domain.Transaction{}, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, account_id, type, amount, created_at
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	t, err := scanTransaction(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.ErrTransactionNotFound
		}

		l.Error().Err(err).Send()

		return domain.Transaction{}, errorspkg.ErrInternal
	}

	return t, nil
}

const listQuery = `
SELECT
	id, account_id, type, amount, created_at
FROM transactions
ORDER BY id
LIMIT $1 OFFSET $2
`

// List returns the ledger transactions in creation order.
func (r *RepoPGS) List(ctx context.Context, limit, offset int32) ([]domain.Transaction, error) {
	return r.list(ctx, listQuery, limit, offset)
}

const listByAccountQuery = `
SELECT
	id, account_id, type, amount, created_at
FROM transactions
WHERE account_id = $3
ORDER BY id
LIMIT $1 OFFSET $2
`

// ListByAccount returns the transactions of the given account in creation order.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountID int64, limit, offset int32) ([]domain.Transaction, error) {
	return r.list(ctx, listByAccountQuery, limit, offset, accountID)
}

func (r *RepoPGS) list(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
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

// ledgerTx binds account and transaction statements to one database transaction.
type ledgerTx struct {
	accounts     *accountrepo.RepoPGS
	transactions *RepoPGS
}

func (q ledgerTx) GetAccountForUpdate(ctx context.Context, id int64) (domain.Account, error) {
	return q.accounts.GetForUpdate(ctx, id)
}

func (q ledgerTx) UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) (domain.Account, error) {
	return q.accounts.UpdateBalance(ctx, id, balance)
}

func (q ledgerTx) CreateTransaction(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	return q.transactions.Create(ctx, arg)
}

// ExecTx runs fn within a single read committed database transaction.
//
// Row locks taken by fn through GetAccountForUpdate serialize writers of the same account.
// The transaction commits only when fn returns nil.
func (r *RepoPGS) ExecTx(ctx context.Context, fn func(domain.LedgerTx) error) error {
	l := zerolog.Ctx(ctx)

	if r.conn == nil {
		l.Error().Msg("ExecTx called on a transaction bound repo")
		return errorspkg.ErrInternal
	}

	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}

	err := dbpkg.ExecTx(ctx, r.conn, opts, func(tx *sql.Tx) error {
		return fn(ledgerTx{
			accounts:     accountrepo.NewRepoPGS(tx),
			transactions: NewTxRepoPGS(tx),
		})
	})

	if err != nil && !isDomainError(err) {
		l.Error().Stack().Err(err).Msg("ledger transaction failed")
		return errorspkg.ErrInternal
	}

	return err
}

func isDomainError(err error) bool {
	for _, target := range []error{
		errorspkg.ErrInternal,
		domain.ErrAccountNotFound,
		domain.ErrInvalidAmount,
		domain.ErrInvalidTransactionType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return domain.IsBusinessRuleViolation(err)
}
