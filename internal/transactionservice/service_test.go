package transactionservice

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateInvalidRequest(t *testing.T) {
	testCases := []struct {
		name    string
		arg     domain.CreateTransactionParams
		wantErr error
	}{
		{
			name:    "Unknown type",
			arg:     domain.CreateTransactionParams{AccountID: 1, Type: "TRANSFER", Amount: amount("10")},
			wantErr: domain.ErrInvalidTransactionType,
		},
		{
			name:    "Zero amount",
			arg:     domain.CreateTransactionParams{AccountID: 1, Type: domain.Deposit, Amount: decimal.Zero},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "Negative amount",
			arg:     domain.CreateTransactionParams{AccountID: 1, Type: domain.Withdrawal, Amount: amount("-5")},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "Amount with 5 decimal places",
			arg:     domain.CreateTransactionParams{AccountID: 1, Type: domain.Deposit, Amount: amount("0.00001")},
			wantErr: domain.ErrAmountOutOfRange,
		},
		{
			name:    "Amount with huge exponent",
			arg:     domain.CreateTransactionParams{AccountID: 1, Type: "TRANSFER", Amount: decimal.New(1, 999999999)},
			wantErr: domain.ErrAmountOutOfRange,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			repo.EXPECT().ExecTx(gomock.Any(), gomock.Any()).Times(0)

			s := New(repo, domain.DefaultLedgerPolicy())
			res, err := s.Create(context.Background(), tc.arg)

			require.Empty(t, res)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateRepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	repo.EXPECT().ExecTx(gomock.Any(), gomock.Any()).
		Times(1).
		Return(errorspkg.ErrInternal)

	s := New(repo, domain.DefaultLedgerPolicy())
	res, err := s.Create(context.Background(), domain.CreateTransactionParams{
		AccountID: 1,
		Type:      domain.Deposit,
		Amount:    amount("10"),
	})

	require.Empty(t, res)
	require.ErrorIs(t, err, errorspkg.ErrInternal)
}

func TestCreatePolicy(t *testing.T) {
	const accountID = 1

	testCases := []struct {
		name        string
		balance     string
		txType      domain.TransactionType
		amount      string
		wantErr     error
		wantBalance string
	}{
		{
			name:        "Deposit",
			balance:     "100",
			txType:      domain.Deposit,
			amount:      "50.25",
			wantBalance: "150.25",
		},
		{
			name:        "Withdrawal",
			balance:     "100",
			txType:      domain.Withdrawal,
			amount:      "40",
			wantBalance: "60",
		},
		{
			name:        "Withdraw whole balance",
			balance:     "100",
			txType:      domain.Withdrawal,
			amount:      "100",
			wantBalance: "0",
		},
		{
			name:        "Insufficient balance",
			balance:     "100",
			txType:      domain.Withdrawal,
			amount:      "150",
			wantErr:     domain.ErrInsufficientBalance,
			wantBalance: "100",
		},
		{
			name:        "Balance limit exceeded",
			balance:     "100",
			txType:      domain.Deposit,
			amount:      "999950",
			wantErr:     domain.ErrBalanceLimitExceeded,
			wantBalance: "100",
		},
		{
			name:        "Deposit up to limit",
			balance:     "100",
			txType:      domain.Deposit,
			amount:      "999900",
			wantBalance: "1000000",
		},
		{
			name:        "Amount below minimum",
			balance:     "100",
			txType:      domain.Deposit,
			amount:      "0.001",
			wantErr:     domain.ErrAmountBelowMinimum,
			wantBalance: "100",
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ledger := newFakeLedger(domain.Account{ID: accountID, OwnerID: 7, Balance: amount(tc.balance)})
			s := New(ledger, domain.DefaultLedgerPolicy())

			res, err := s.Create(context.Background(), domain.CreateTransactionParams{
				AccountID: accountID,
				Type:      tc.txType,
				Amount:    amount(tc.amount),
			})

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.True(t, domain.IsBusinessRuleViolation(err))
				require.Empty(t, res)
				require.Empty(t, ledger.transactions())
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.txType, res.Transaction.Type)
				require.True(t, amount(tc.amount).Equal(res.Transaction.Amount))
				require.True(t, amount(tc.wantBalance).Equal(res.Account.Balance))
				require.Len(t, ledger.transactions(), 1)
			}

			got := ledger.account(accountID).Balance
			require.True(t, amount(tc.wantBalance).Equal(got), "balance %s, want %s", got, tc.wantBalance)
		})
	}
}

func TestCreateAccountNotFound(t *testing.T) {
	ledger := newFakeLedger()
	s := New(ledger, domain.DefaultLedgerPolicy())

	res, err := s.Create(context.Background(), domain.CreateTransactionParams{
		AccountID: 42,
		Type:      domain.Deposit,
		Amount:    amount("10"),
	})

	require.Empty(t, res)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	require.Empty(t, ledger.transactions())
}

func TestCreateRejectsUnstorableAmount(t *testing.T) {
	ledger := newFakeLedger(domain.Account{ID: 1, OwnerID: 1, Balance: amount("50.0001")})
	s := New(ledger, domain.DefaultLedgerPolicy())

	res, err := s.Create(context.Background(), domain.CreateTransactionParams{
		AccountID: 1,
		Type:      domain.Withdrawal,
		Amount:    amount("50.00005"),
	})

	require.Empty(t, res)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	require.Empty(t, ledger.transactions())
	require.True(t, amount("50.0001").Equal(ledger.account(1).Balance))
}

func TestCreateAuditEvent(t *testing.T) {
	testCases := []struct {
		name      string
		arg       domain.CreateTransactionParams
		wantLog   []string
		absentLog []string
	}{
		{
			name: "Accepted",
			arg:  domain.CreateTransactionParams{AccountID: 1, Type: domain.Deposit, Amount: amount("10")},
			wantLog: []string{
				`"event":"ledger.transaction"`, `"outcome":"accepted"`, `"amount":"10"`,
				`"old_balance":"100"`, `"new_balance":"110"`,
			},
		},
		{
			name: "Business rule",
			arg:  domain.CreateTransactionParams{AccountID: 1, Type: domain.Withdrawal, Amount: amount("500")},
			wantLog: []string{
				`"event":"ledger.transaction"`, `"outcome":"rejected"`, `"reason":"insufficient balance"`,
			},
		},
		{
			name: "Invalid type",
			arg:  domain.CreateTransactionParams{AccountID: 1, Type: "TRANSFER", Amount: amount("10")},
			wantLog: []string{
				`"event":"ledger.transaction"`, `"outcome":"rejected"`, `"type":"TRANSFER"`, `"amount":"10"`,
			},
		},
		{
			name: "Non-positive amount",
			arg:  domain.CreateTransactionParams{AccountID: 1, Type: domain.Deposit, Amount: amount("-1")},
			wantLog: []string{
				`"event":"ledger.transaction"`, `"outcome":"rejected"`, `"account_id":1`,
			},
		},
		{
			name: "Unstorable amount",
			arg:  domain.CreateTransactionParams{AccountID: 1, Type: domain.Deposit, Amount: decimal.New(1, 999999999)},
			wantLog: []string{
				`"event":"ledger.transaction"`, `"outcome":"rejected"`,
			},
			absentLog: []string{`"amount"`},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := zerolog.New(&buf).WithContext(context.Background())

			ledger := newFakeLedger(domain.Account{ID: 1, OwnerID: 1, Balance: amount("100")})
			s := New(ledger, domain.DefaultLedgerPolicy())

			_, _ = s.Create(ctx, tc.arg)

			for _, want := range tc.wantLog {
				assert.Contains(t, buf.String(), want)
			}

			for _, absent := range tc.absentLog {
				assert.NotContains(t, buf.String(), absent)
			}
		})
	}
}

func TestConcurrentWithdrawals(t *testing.T) {
	const (
		accountID = 1
		n         = 50
	)

	ledger := newFakeLedger(domain.Account{ID: accountID, OwnerID: 1, Balance: amount("1000")})
	s := New(ledger, domain.DefaultLedgerPolicy())

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := s.Create(context.Background(), domain.CreateTransactionParams{
				AccountID: accountID,
				Type:      domain.Withdrawal,
				Amount:    amount("30"),
			})

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
				rejected++

				return
			}

			accepted++
		}()
	}

	wg.Wait()

	require.Equal(t, 33, accepted)
	require.Equal(t, n-33, rejected)
	require.Len(t, ledger.transactions(), 33)
	require.True(t, amount("10").Equal(ledger.account(accountID).Balance))
}

func TestBalanceEqualsReplayedLedger(t *testing.T) {
	const workers = 8

	initial := map[int64]decimal.Decimal{
		1: amount("0"),
		2: amount("500"),
		3: amount("999000"),
	}

	accounts := make([]domain.Account, 0, len(initial))
	for id, b := range initial {
		accounts = append(accounts, domain.Account{ID: id, OwnerID: id, Balance: b})
	}

	ledger := newFakeLedger(accounts...)
	s := New(ledger, domain.DefaultLedgerPolicy())

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := 0; i < 100; i++ {
				txType := domain.Deposit
				if randompkg.Intn(2) == 0 {
					txType = domain.Withdrawal
				}

				_, err := s.Create(context.Background(), domain.CreateTransactionParams{
					AccountID: randompkg.IntBetween(1, len(initial)),
					Type:      txType,
					Amount:    randompkg.MoneyAmountBetween(0.01, 2000),
				})
				if err != nil {
					assert.True(t, domain.IsBusinessRuleViolation(err), "unexpected error: %v", err)
				}
			}
		}()
	}

	wg.Wait()

	replayed := make(map[int64]decimal.Decimal, len(initial))
	for id, b := range initial {
		replayed[id] = b
	}

	for _, tx := range ledger.transactions() {
		switch tx.Type {
		case domain.Deposit:
			replayed[tx.AccountID] = replayed[tx.AccountID].Add(tx.Amount)
		case domain.Withdrawal:
			replayed[tx.AccountID] = replayed[tx.AccountID].Sub(tx.Amount)
		}
	}

	for id := range initial {
		balance := ledger.account(id).Balance

		require.True(t, replayed[id].Equal(balance), "account %d: balance %s, replayed %s", id, balance, replayed[id])
		require.False(t, balance.IsNegative())
		require.False(t, balance.GreaterThan(domain.DefaultMaxAccountBalance))
	}
}

func TestGet(t *testing.T) {
	testTx := domain.Transaction{ID: 3, AccountID: 1, Type: domain.Deposit, Amount: amount("12.5")}

	testCases := []struct {
		name    string
		repoRes domain.Transaction
		repoErr error
	}{
		{name: "OK", repoRes: testTx},
		{name: "Not found", repoErr: domain.ErrTransactionNotFound},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			repo.EXPECT().Get(gomock.Any(), gomock.Eq(testTx.ID)).
				Times(1).
				Return(tc.repoRes, tc.repoErr)

			s := New(repo, domain.DefaultLedgerPolicy())
			res, err := s.Get(context.Background(), testTx.ID)

			require.ErrorIs(t, err, tc.repoErr)
			require.Equal(t, tc.repoRes, res)
		})
	}
}

func TestListClamps(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	repo.EXPECT().List(gomock.Any(), gomock.Eq(int32(domain.MaxPageLimit)), gomock.Eq(int32(0))).
		Times(1).
		Return([]domain.Transaction{}, nil)
	repo.EXPECT().ListByAccount(gomock.Any(), gomock.Eq(int64(9)), gomock.Eq(int32(domain.MinPageLimit)), gomock.Eq(int32(20))).
		Times(1).
		Return([]domain.Transaction{}, nil)

	s := New(repo, domain.DefaultLedgerPolicy())

	res, err := s.List(context.Background(), 500, -1)
	require.NoError(t, err)
	require.Empty(t, res)

	res, err = s.ListByAccount(context.Background(), 9, 0, 20)
	require.NoError(t, err)
	require.Empty(t, res)
}

func TestListByAccountUnknownAccount(t *testing.T) {
	ledger := newFakeLedger(domain.Account{ID: 1, OwnerID: 1, Balance: amount("100")})
	s := New(ledger, domain.DefaultLedgerPolicy())

	_, err := s.Create(context.Background(), domain.CreateTransactionParams{
		AccountID: 1,
		Type:      domain.Deposit,
		Amount:    amount("1"),
	})
	require.NoError(t, err)

	res, err := s.ListByAccount(context.Background(), 2, domain.DefaultPageLimit, 0)
	require.NoError(t, err)
	require.Empty(t, res)

	res, err = s.ListByAccount(context.Background(), 1, domain.DefaultPageLimit, 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
}

func TestListLogsPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transactions := []domain.Transaction{{ID: 1, AccountID: 3}, {ID: 2, AccountID: 3}}

	repo := NewMockRepo(ctrl)
	repo.EXPECT().List(gomock.Any(), gomock.Eq(int32(10)), gomock.Eq(int32(5))).
		Times(1).
		Return(transactions, nil)
	repo.EXPECT().ListByAccount(gomock.Any(), gomock.Eq(int64(3)), gomock.Eq(int32(10)), gomock.Eq(int32(0))).
		Times(1).
		Return(transactions[:1], nil)

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	s := New(repo, domain.DefaultLedgerPolicy())

	res, err := s.List(ctx, 10, 5)
	require.NoError(t, err)
	require.Len(t, res, 2)

	res, err = s.ListByAccount(ctx, 3, 10, 0)
	require.NoError(t, err)
	require.Len(t, res, 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], `"message":"transactions listed"`)
	assert.Contains(t, lines[0], `"count":2`)
	assert.Contains(t, lines[0], `"limit":10`)
	assert.Contains(t, lines[0], `"skip":5`)

	assert.Contains(t, lines[1], `"message":"account transactions listed"`)
	assert.Contains(t, lines[1], `"account_id":3`)
	assert.Contains(t, lines[1], `"count":1`)
	assert.Contains(t, lines[1], `"skip":0`)
}
