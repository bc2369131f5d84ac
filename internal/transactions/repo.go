package transactions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/federicogioffre/finance-tracker/internal/accounts"
	"github.com/federicogioffre/finance-tracker/internal/audit"
	"github.com/federicogioffre/finance-tracker/internal/categories"
	"github.com/federicogioffre/finance-tracker/internal/db"
	"github.com/federicogioffre/finance-tracker/internal/domain"
	"github.com/federicogioffre/finance-tracker/internal/money"
)

var (
	ErrNotFound  = errors.New("transaction not found")
	ErrForbidden = errors.New("not your account")
	ErrInvalid   = errors.New("invalid transaction")
)

const columns = `t.id, t.account_id, t.category_id, t.amount::text, t.transaction_type, t.description, t.date, t.created_at`

type Repo struct {
	Pool *pgxpool.Pool
	now  func() time.Time
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool, now: time.Now}
}

func (r *Repo) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}

func scan(row pgx.Row) (domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.Amount, &t.TransactionType, &t.Description, &t.Date, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Transaction{}, ErrNotFound
	}
	return t, err
}

// Insert writes one transaction through q. It does not touch the account
// balance; callers holding the account lock apply the delta.
func Insert(ctx context.Context, q db.DBTX, n NewTransaction) (domain.Transaction, error) {
	return scan(q.QueryRow(ctx, `
INSERT INTO transactions AS t (account_id, category_id, amount, transaction_type, description, date)
VALUES ($1, $2, $3::numeric, $4, $5, $6)
RETURNING `+columns,
		n.AccountID, n.CategoryID, n.Amount.String(), n.Type, n.Description, n.Date))
}

func (r *Repo) List(ctx context.Context, ownerID string, f Filter) ([]domain.Transaction, error) {
	if f.AccountID != 0 {
		if _, err := accounts.Get(ctx, r.Pool, ownerID, f.AccountID); err != nil {
			if errors.Is(err, accounts.ErrNotFound) {
				return nil, ErrForbidden
			}
			return nil, err
		}
	}
	if f.Limit <= 0 || f.Limit > MaxLimit {
		f.Limit = DefaultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := []string{"a.owner_id = $1::uuid"}
	args := []any{ownerID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.AccountID != 0 {
		add("t.account_id = $%d", f.AccountID)
	}
	if f.Type != "" {
		add("t.transaction_type = $%d", f.Type)
	}
	if f.Start != nil {
		add("t.date >= $%d", *f.Start)
	}
	if f.End != nil {
		add("t.date <= $%d", *f.End)
	}
	args = append(args, f.Offset, f.Limit)

	sql := `SELECT ` + columns + `
FROM transactions t
JOIN accounts a ON a.id = t.account_id
WHERE ` + strings.Join(where, " AND ") + fmt.Sprintf(`
ORDER BY t.date DESC, t.created_at DESC
OFFSET $%d LIMIT $%d`, len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Transaction{}
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create inserts a manual transaction and moves the account balance by its
// signed amount in the same database transaction.
func (r *Repo) Create(ctx context.Context, ownerID string, in CreateInput) (domain.Transaction, error) {
	n, err := r.prepare(in)
	if err != nil {
		return domain.Transaction{}, err
	}

	var out domain.Transaction
	err = db.WithTx(ctx, r.Pool, func(tx pgx.Tx) error {
		if _, err := accounts.LockOwned(ctx, tx, ownerID, n.AccountID); err != nil {
			if errors.Is(err, accounts.ErrNotFound) {
				return ErrForbidden
			}
			return err
		}
		if n.CategoryID != nil {
			if err := categories.Owned(ctx, tx, ownerID, *n.CategoryID); err != nil {
				return err
			}
		}

		out, err = Insert(ctx, tx, n)
		if err != nil {
			return err
		}
		if err := accounts.AdjustBalance(ctx, tx, n.AccountID, n.Amount); err != nil {
			return err
		}
		return audit.Write(ctx, tx, audit.Entry{
			UserID:     ownerID,
			Action:     audit.ActionTransactionCreated,
			EntityType: "transaction",
			EntityID:   audit.ID(out.ID),
			Metadata:   map[string]any{"account_id": n.AccountID, "amount": n.Amount.String()},
		})
	})
	return out, err
}

func (r *Repo) prepare(in CreateInput) (NewTransaction, error) {
	typ := normalizeType(in.TransactionType)
	if typ == "" {
		return NewTransaction{}, fmt.Errorf("%w: %v", ErrInvalid, money.ErrInvalidType)
	}
	if in.AccountID <= 0 {
		return NewTransaction{}, fmt.Errorf("%w: account_id is required", ErrInvalid)
	}
	if err := money.Validate(in.Amount.Abs()); err != nil {
		return NewTransaction{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	signed, err := money.Signed(in.Amount, typ)
	if err != nil {
		return NewTransaction{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	today := r.clock().UTC()
	date := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if strings.TrimSpace(in.Date) != "" {
		d, ok := ParseDay(in.Date)
		if !ok {
			return NewTransaction{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalid)
		}
		date = d
	}

	return NewTransaction{
		AccountID:   in.AccountID,
		CategoryID:  in.CategoryID,
		Amount:      signed,
		Type:        typ,
		Description: in.Description,
		Date:        date,
	}, nil
}

func (r *Repo) Get(ctx context.Context, ownerID string, id int64) (domain.Transaction, error) {
	return scan(r.Pool.QueryRow(ctx, `
SELECT `+columns+`
FROM transactions t
JOIN accounts a ON a.id = t.account_id
WHERE t.id = $1 AND a.owner_id = $2::uuid`, id, ownerID))
}

// Update changes category, description or date. Amount and type are fixed
// once recorded so the balance never needs recomputing here.
func (r *Repo) Update(ctx context.Context, ownerID string, id int64, in UpdateInput) (domain.Transaction, error) {
	var date *time.Time
	if in.Date != nil {
		d, ok := ParseDay(*in.Date)
		if !ok {
			return domain.Transaction{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalid)
		}
		date = &d
	}
	if in.CategoryID != nil {
		if err := categories.Owned(ctx, r.Pool, ownerID, *in.CategoryID); err != nil {
			return domain.Transaction{}, err
		}
	}

	return scan(r.Pool.QueryRow(ctx, `
UPDATE transactions AS t
SET category_id = COALESCE($3, t.category_id),
    description = COALESCE($4, t.description),
    date = COALESCE($5, t.date)
FROM accounts a
WHERE t.id = $1 AND a.id = t.account_id AND a.owner_id = $2::uuid
RETURNING `+columns,
		id, ownerID, in.CategoryID, in.Description, date))
}
