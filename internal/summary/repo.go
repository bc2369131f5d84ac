package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct {
	DB *pgxpool.Pool
}

type Query struct {
	AccountID int64
	Start     *time.Time
	End       *time.Time
}

// Summary totals owned transactions. TotalExpenses is a magnitude; Net is
// income minus expenses.
type Summary struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Net           decimal.Decimal `json:"net"`
	PeriodStart   *string         `json:"period_start"`
	PeriodEnd     *string         `json:"period_end"`
}

// Build derives the response from the raw sums; expense is the signed
// (negative) sum as stored.
func Build(income, expense decimal.Decimal, q Query) Summary {
	s := Summary{
		TotalIncome:   income,
		TotalExpenses: expense.Abs(),
		Net:           income.Add(expense),
	}
	if q.Start != nil {
		v := q.Start.Format("2006-01-02")
		s.PeriodStart = &v
	}
	if q.End != nil {
		v := q.End.Format("2006-01-02")
		s.PeriodEnd = &v
	}
	return s
}

func (r Repo) GetByUser(ctx context.Context, userID string, q Query) (Summary, error) {
	where := []string{"a.owner_id = $1::uuid"}
	args := []any{userID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if q.AccountID != 0 {
		add("t.account_id = $%d", q.AccountID)
	}
	if q.Start != nil {
		add("t.date >= $%d", *q.Start)
	}
	if q.End != nil {
		add("t.date <= $%d", *q.End)
	}

	var income, expense decimal.Decimal
	err := r.DB.QueryRow(ctx, `
SELECT
  COALESCE(SUM(t.amount) FILTER (WHERE t.transaction_type = 'income'), 0)::text,
  COALESCE(SUM(t.amount) FILTER (WHERE t.transaction_type = 'expense'), 0)::text
FROM transactions t
JOIN accounts a ON a.id = t.account_id
WHERE `+strings.Join(where, " AND "), args...).Scan(&income, &expense)
	if err != nil {
		return Summary{}, err
	}

	return Build(income, expense, q), nil
}
