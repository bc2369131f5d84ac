package imports

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/federicogioffre/finance-tracker/internal/money"
	"github.com/federicogioffre/finance-tracker/internal/statement"
	"github.com/federicogioffre/finance-tracker/internal/transactions"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrNoTransactions      = errors.New("no transactions found")
	ErrInvalidRow          = errors.New("invalid import row")
)

// DefaultExtensions are the accepted upload extensions, compared
// case-insensitively.
var DefaultExtensions = []string{".xlsx", ".xls"}

const dateLayout = "2006-01-02"

// Store persists a confirmed batch. ImportBatch must apply every row and the
// balance delta atomically, holding the account lock for the duration, and
// return accounts.ErrNotFound when the account is missing or not owned by
// userID.
type Store interface {
	ImportBatch(ctx context.Context, userID string, accountID int64, rows []transactions.NewTransaction) error
}

// Row is one reviewed statement line, exchanged between preview and confirm.
type Row struct {
	Date            string       `json:"date"`
	Description     *string      `json:"description"`
	Amount          money.Number `json:"amount"`
	TransactionType string       `json:"transactionType"`
}

type Preview struct {
	Rows          []Row        `json:"rows"`
	TotalIncome   money.Number `json:"totalIncome"`
	TotalExpenses money.Number `json:"totalExpenses"`
}

type ConfirmRequest struct {
	AccountID int64 `json:"accountId"`
	Rows      []Row `json:"rows"`
}

type ConfirmResponse struct {
	Imported int `json:"imported"`
}

type Service struct {
	Parser     *statement.Parser
	Store      Store
	MaxBytes   int
	Extensions []string
	Log        zerolog.Logger
}

func NewService(parser *statement.Parser, store Store, maxBytes int, log zerolog.Logger) *Service {
	return &Service{
		Parser:     parser,
		Store:      store,
		MaxBytes:   maxBytes,
		Extensions: DefaultExtensions,
		Log:        log,
	}
}

// CheckUpload applies the extension allow-list and the size ceiling. Both
// run before any parsing.
func (s *Service) CheckUpload(filename string, size int) error {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	allowed := false
	for _, e := range s.Extensions {
		if ext == strings.ToLower(e) {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrUnsupportedFileType
	}
	if s.MaxBytes > 0 && size > s.MaxBytes {
		return ErrFileTooLarge
	}
	return nil
}

// Preview parses an uploaded statement and totals it. Nothing is persisted.
func (s *Service) Preview(ctx context.Context, filename string, data []byte) (Preview, error) {
	if err := s.CheckUpload(filename, len(data)); err != nil {
		return Preview{}, err
	}

	candidates, err := s.Parser.Parse(data)
	if err != nil {
		s.Log.Warn().Err(err).Str("file", filename).Int("bytes", len(data)).Msg("statement parse failed")
		return Preview{}, err
	}
	if len(candidates) == 0 {
		return Preview{}, ErrNoTransactions
	}

	p := Summarize(candidates)
	s.Log.Info().
		Str("file", filename).
		Int("bytes", len(data)).
		Int("rows", len(p.Rows)).
		Str("total_income", p.TotalIncome.String()).
		Str("total_expenses", p.TotalExpenses.String()).
		Msg("import previewed")
	return p, nil
}

// Summarize converts candidates to preview rows, in order, and totals each
// direction.
func Summarize(candidates []statement.Candidate) Preview {
	p := Preview{Rows: make([]Row, 0, len(candidates))}
	income, expense := decimal.Zero, decimal.Zero
	for _, c := range candidates {
		p.Rows = append(p.Rows, Row{
			Date:            c.Date.Format(dateLayout),
			Description:     c.Description,
			Amount:          money.NewNumber(c.Amount),
			TransactionType: string(c.Type),
		})
		switch c.Type {
		case statement.Income:
			income = income.Add(c.Amount)
		case statement.Expense:
			expense = expense.Add(c.Amount)
		}
	}
	p.TotalIncome = money.NewNumber(income)
	p.TotalExpenses = money.NewNumber(expense)
	return p
}

// Confirm persists the reviewed rows into the account. The rows are taken as
// sent; confirming the same list twice imports it twice.
func (s *Service) Confirm(ctx context.Context, userID string, req ConfirmRequest) (int, error) {
	batch, err := Prepare(req)
	if err != nil {
		return 0, err
	}

	if err := s.Store.ImportBatch(ctx, userID, req.AccountID, batch); err != nil {
		return 0, err
	}

	delta := decimal.Zero
	for _, n := range batch {
		delta = delta.Add(n.Amount)
	}
	s.Log.Info().
		Int64("account_id", req.AccountID).
		Int("rows", len(batch)).
		Str("delta", delta.String()).
		Msg("import confirmed")
	return len(batch), nil
}

// Prepare validates the request rows and turns them into signed
// transactions for the store. Amounts are rounded to cents first so the
// stored rows and the balance delta agree exactly.
func Prepare(req ConfirmRequest) ([]transactions.NewTransaction, error) {
	batch := make([]transactions.NewTransaction, 0, len(req.Rows))
	for i, r := range req.Rows {
		typ := statement.Type(strings.ToLower(strings.TrimSpace(r.TransactionType)))
		if !typ.Valid() {
			return nil, fmt.Errorf("%w %d: transactionType must be income or expense", ErrInvalidRow, i+1)
		}
		amount := r.Amount.Decimal.Round(money.Scale)
		if err := money.Validate(amount); err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrInvalidRow, i+1, err)
		}
		date, err := time.Parse(dateLayout, strings.TrimSpace(r.Date))
		if err != nil {
			return nil, fmt.Errorf("%w %d: date must be YYYY-MM-DD", ErrInvalidRow, i+1)
		}
		signed, err := money.Signed(amount, string(typ))
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrInvalidRow, i+1, err)
		}

		var desc *string
		if r.Description != nil {
			if d := strings.TrimSpace(*r.Description); d != "" {
				desc = &d
			}
		}

		batch = append(batch, transactions.NewTransaction{
			AccountID:   req.AccountID,
			Amount:      signed,
			Type:        string(typ),
			Description: desc,
			Date:        date,
		})
	}
	return batch, nil
}
