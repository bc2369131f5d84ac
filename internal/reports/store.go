package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/federicogioffre/finance-tracker/internal/accounts"
	"github.com/federicogioffre/finance-tracker/internal/domain"
)

const dayLayout = "2006-01-02"

// DefaultDays is the window used when a report is requested without dates.
const DefaultDays = 30

var ErrInvalidPeriod = errors.New("invalid period")

// Period is an inclusive date range.
type Period struct {
	From time.Time
	To   time.Time
}

// ParsePeriod reads from/to as YYYY-MM-DD. When either is empty the last
// DefaultDays days ending at now are used.
func ParsePeriod(from, to string, now time.Time) (Period, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return Period{From: end.AddDate(0, 0, -(DefaultDays - 1)), To: end}, nil
	}
	f, err := time.Parse(dayLayout, from)
	if err != nil {
		return Period{}, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrInvalidPeriod)
	}
	t, err := time.Parse(dayLayout, to)
	if err != nil {
		return Period{}, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrInvalidPeriod)
	}
	if t.Before(f) {
		return Period{}, fmt.Errorf("%w: from must not be after to", ErrInvalidPeriod)
	}
	return Period{From: f, To: t}, nil
}

func (p Period) FromString() string { return p.From.Format(dayLayout) }
func (p Period) ToString() string   { return p.To.Format(dayLayout) }

type DayPoint struct {
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

type Report struct {
	From          string          `json:"from"`
	To            string          `json:"to"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Net           decimal.Decimal `json:"net"`
	Daily         []DayPoint      `json:"daily"`
}

// Fold totals the daily points and fills the running balance. Expense is a
// magnitude on input and output.
func Fold(p Period, days []DayPoint) Report {
	r := Report{From: p.FromString(), To: p.ToString(), Daily: make([]DayPoint, 0, len(days))}
	running := decimal.Zero
	for _, d := range days {
		running = running.Add(d.Income).Sub(d.Expense)
		d.Balance = running
		r.TotalIncome = r.TotalIncome.Add(d.Income)
		r.TotalExpenses = r.TotalExpenses.Add(d.Expense)
		r.Daily = append(r.Daily, d)
	}
	r.Net = r.TotalIncome.Sub(r.TotalExpenses)
	return r
}

type CategoryRow struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int64           `json:"count"`
	Type     string          `json:"type"`
}

// AccountStatement lists one account's transactions in a period, oldest
// first, with the balance before the first of them.
type AccountStatement struct {
	Account        domain.Account       `json:"account"`
	From           string               `json:"from"`
	To             string               `json:"to"`
	OpeningBalance decimal.Decimal      `json:"opening_balance"`
	ClosingBalance decimal.Decimal      `json:"closing_balance"`
	TotalIncome    decimal.Decimal      `json:"total_income"`
	TotalExpenses  decimal.Decimal      `json:"total_expenses"`
	Items          []domain.Transaction `json:"items"`
}

// MaxStatementItems caps a single statement.
const MaxStatementItems = 2000

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

// Daily returns one point per day of p, including days without movements.
func (r *Repo) Daily(ctx context.Context, userID string, p Period) (Report, error) {
	rows, err := r.Pool.Query(ctx, `
WITH days AS (
  SELECT d::date AS day
  FROM generate_series($2::date, $3::date, interval '1 day') AS d
),
agg AS (
  SELECT t.date AS day,
         SUM(t.amount) FILTER (WHERE t.transaction_type = 'income') AS income,
         -SUM(t.amount) FILTER (WHERE t.transaction_type = 'expense') AS expense
  FROM transactions t
  JOIN accounts a ON a.id = t.account_id
  WHERE a.owner_id = $1::uuid AND t.date BETWEEN $2::date AND $3::date
  GROUP BY 1
)
SELECT days.day::text, COALESCE(agg.income, 0)::text, COALESCE(agg.expense, 0)::text
FROM days
LEFT JOIN agg ON agg.day = days.day
ORDER BY days.day ASC
`, userID, p.From, p.To)
	if err != nil {
		return Report{}, err
	}
	defer rows.Close()

	var days []DayPoint
	for rows.Next() {
		var d DayPoint
		if err := rows.Scan(&d.Date, &d.Income, &d.Expense); err != nil {
			return Report{}, err
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return Report{}, err
	}
	return Fold(p, days), nil
}

// Categories returns the largest category totals of the period. Uncategorized
// transactions are grouped under an empty category name.
func (r *Repo) Categories(ctx context.Context, userID string, p Period, limit int) ([]CategoryRow, error) {
	rows, err := r.Pool.Query(ctx, `
SELECT COALESCE(c.name, ''), ABS(SUM(t.amount))::text, COUNT(*), t.transaction_type
FROM transactions t
JOIN accounts a ON a.id = t.account_id
LEFT JOIN categories c ON c.id = t.category_id
WHERE a.owner_id = $1::uuid AND t.date BETWEEN $2::date AND $3::date
GROUP BY 1, 4
ORDER BY ABS(SUM(t.amount)) DESC
LIMIT $4
`, userID, p.From, p.To, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CategoryRow{}
	for rows.Next() {
		var c CategoryRow
		if err := rows.Scan(&c.Category, &c.Total, &c.Count, &c.Type); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Statement loads an owned account's movements in p. Accounts owned by
// someone else are reported as accounts.ErrNotFound.
func (r *Repo) Statement(ctx context.Context, userID string, accountID int64, p Period) (AccountStatement, error) {
	acc, err := accounts.Get(ctx, r.Pool, userID, accountID)
	if err != nil {
		return AccountStatement{}, err
	}

	// Movements after the period are unwound from the current balance.
	var after decimal.Decimal
	if err := r.Pool.QueryRow(ctx, `
SELECT COALESCE(SUM(amount), 0)::text FROM transactions
WHERE account_id = $1 AND date > $2::date`, accountID, p.To).Scan(&after); err != nil {
		return AccountStatement{}, err
	}

	rows, err := r.Pool.Query(ctx, `
SELECT id, account_id, category_id, amount::text, transaction_type, description, date, created_at
FROM transactions
WHERE account_id = $1 AND date BETWEEN $2::date AND $3::date
ORDER BY date ASC, id ASC
LIMIT $4`, accountID, p.From, p.To, MaxStatementItems)
	if err != nil {
		return AccountStatement{}, err
	}
	defer rows.Close()

	var items []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.Amount, &t.TransactionType, &t.Description, &t.Date, &t.CreatedAt); err != nil {
			return AccountStatement{}, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return AccountStatement{}, err
	}

	return BuildStatement(acc, p, acc.Balance.Sub(after), items), nil
}

// BuildStatement derives the totals and opening balance from the closing
// balance and the items of the period.
func BuildStatement(acc domain.Account, p Period, closing decimal.Decimal, items []domain.Transaction) AccountStatement {
	st := AccountStatement{
		Account:        acc,
		From:           p.FromString(),
		To:             p.ToString(),
		ClosingBalance: closing,
		Items:          items,
	}
	if st.Items == nil {
		st.Items = []domain.Transaction{}
	}
	net := decimal.Zero
	for _, t := range items {
		net = net.Add(t.Amount)
		if t.Amount.IsNegative() {
			st.TotalExpenses = st.TotalExpenses.Add(t.Amount.Abs())
		} else {
			st.TotalIncome = st.TotalIncome.Add(t.Amount)
		}
	}
	st.OpeningBalance = closing.Sub(net)
	return st
}
