package imports

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/federicogioffre/finance-tracker/internal/accounts"
	"github.com/federicogioffre/finance-tracker/internal/statement"
	"github.com/federicogioffre/finance-tracker/internal/transactions"
)

const (
	alice = "11111111-1111-1111-1111-111111111111"
	bob   = "22222222-2222-2222-2222-222222222222"
)

type fakeAccount struct {
	owner   string
	balance decimal.Decimal
}

// ledger is an in-memory Store. A batch is staged and applied only when
// every row succeeds, matching the all-or-nothing contract.
type ledger struct {
	mu       sync.Mutex
	accounts map[int64]*fakeAccount
	rows     map[int64][]transactions.NewTransaction
	failAt   int
}

func newLedger() *ledger {
	return &ledger{
		accounts: map[int64]*fakeAccount{
			1: {owner: alice, balance: decimal.RequireFromString("100.00")},
			2: {owner: bob, balance: decimal.RequireFromString("50.00")},
		},
		rows: map[int64][]transactions.NewTransaction{},
	}
}

func (l *ledger) ImportBatch(_ context.Context, userID string, accountID int64, rows []transactions.NewTransaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[accountID]
	if !ok || acc.owner != userID {
		return accounts.ErrNotFound
	}

	delta := decimal.Zero
	staged := make([]transactions.NewTransaction, 0, len(rows))
	for i, r := range rows {
		if l.failAt == i+1 {
			return errors.New("insert failed")
		}
		staged = append(staged, r)
		delta = delta.Add(r.Amount)
	}

	l.rows[accountID] = append(l.rows[accountID], staged...)
	acc.balance = acc.balance.Add(delta)
	return nil
}

func (l *ledger) balance(id int64) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[id].balance
}

func (l *ledger) inserted(id int64) []transactions.NewTransaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]transactions.NewTransaction(nil), l.rows[id]...)
}

func newService(t *testing.T, store Store) *Service {
	t.Helper()
	profiles, err := statement.DefaultProfiles()
	require.NoError(t, err)
	parser, err := statement.NewParser(profiles, statement.DefaultProfile)
	require.NoError(t, err)
	return NewService(parser, store, 10<<20, zerolog.New(io.Discard))
}

// workbook writes rows to a new .xlsx and returns its bytes.
func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", axis, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

var header = []any{"Data_Operazione", "Data_Valuta", "Entrate", "Uscite", "Descrizione", "Descrizione_Completa"}

func finecoStatement(t *testing.T) []byte {
	return workbook(t,
		[]any{"Conto Corrente: 1234567"},
		[]any{},
		header,
		[]any{"2026-02-24", "2026-02-24", "1.234,56", "", "Bonifico", "Stipendio febbraio"},
		[]any{"2026-02-25", "2026-02-25", "", "-5,95", "Pagamento", "Coffee shop"},
		[]any{"2026-02-26", "2026-02-26", "", "-20", "Prelievo", ""},
	)
}
