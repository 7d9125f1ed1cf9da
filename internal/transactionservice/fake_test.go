package transactionservice

import (
	"context"
	"sync"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// fakeLedger is an in-memory Repo holding a row lock per account like the database does.
// Writes of a transaction are staged and become visible only on commit.
type fakeLedger struct {
	mu       sync.Mutex
	locks    map[int64]*sync.Mutex
	accounts map[int64]domain.Account
	txs      []domain.Transaction
	nextID   int64
}

func newFakeLedger(accounts ...domain.Account) *fakeLedger {
	f := &fakeLedger{
		locks:    make(map[int64]*sync.Mutex),
		accounts: make(map[int64]domain.Account),
	}

	for _, a := range accounts {
		f.accounts[a.ID] = a
		f.locks[a.ID] = &sync.Mutex{}
	}

	return f
}

func (f *fakeLedger) account(id int64) domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.accounts[id]
}

func (f *fakeLedger) transactions() []domain.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]domain.Transaction(nil), f.txs...)
}

func (f *fakeLedger) ExecTx(ctx context.Context, fn func(domain.LedgerTx) error) error {
	tx := &fakeTx{
		ledger:   f,
		balances: make(map[int64]decimal.Decimal),
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}

	tx.commit()

	return nil
}

func (f *fakeLedger) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.txs {
		if t.ID == id {
			return t, nil
		}
	}

	return domain.Transaction{}, domain.ErrTransactionNotFound
}

func (f *fakeLedger) List(ctx context.Context, limit, offset int32) ([]domain.Transaction, error) {
	return page(f.transactions(), limit, offset), nil
}

func (f *fakeLedger) ListByAccount(ctx context.Context, accountID int64, limit, offset int32) ([]domain.Transaction, error) {
	var items []domain.Transaction

	for _, t := range f.transactions() {
		if t.AccountID == accountID {
			items = append(items, t)
		}
	}

	return page(items, limit, offset), nil
}

func page(items []domain.Transaction, limit, offset int32) []domain.Transaction {
	res := []domain.Transaction{}

	for i := int(offset); i < len(items) && len(res) < int(limit); i++ {
		res = append(res, items[i])
	}

	return res
}

type fakeTx struct {
	ledger   *fakeLedger
	held     []*sync.Mutex
	balances map[int64]decimal.Decimal
	txs      []domain.Transaction
}

func (tx *fakeTx) GetAccountForUpdate(ctx context.Context, id int64) (domain.Account, error) {
	tx.ledger.mu.Lock()
	lock, ok := tx.ledger.locks[id]
	tx.ledger.mu.Unlock()

	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	lock.Lock()
	tx.held = append(tx.held, lock)

	return tx.ledger.account(id), nil
}

func (tx *fakeTx) UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) (domain.Account, error) {
	a := tx.ledger.account(id)
	a.Balance = balance
	tx.balances[id] = balance

	return a, nil
}

func (tx *fakeTx) CreateTransaction(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	tx.ledger.mu.Lock()
	tx.ledger.nextID++
	id := tx.ledger.nextID
	tx.ledger.mu.Unlock()

	t := domain.Transaction{
		ID:        id,
		AccountID: arg.AccountID,
		Type:      arg.Type,
		Amount:    arg.Amount,
	}
	tx.txs = append(tx.txs, t)

	return t, nil
}

func (tx *fakeTx) commit() {
	tx.ledger.mu.Lock()
	defer tx.ledger.mu.Unlock()

	for id, balance := range tx.balances {
		a := tx.ledger.accounts[id]
		a.Balance = balance
		tx.ledger.accounts[id] = a
	}

	tx.ledger.txs = append(tx.ledger.txs, tx.txs...)
}

func (tx *fakeTx) release() {
	for _, lock := range tx.held {
		lock.Unlock()
	}
}
