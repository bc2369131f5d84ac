package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/federicogioffre/finance-tracker/internal/audit"
	"github.com/federicogioffre/finance-tracker/internal/db"
	"github.com/federicogioffre/finance-tracker/internal/domain"
)

var (
	ErrNotFound = errors.New("account not found")
	ErrInvalid  = errors.New("invalid account")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalid, msg)
}

const DefaultCurrency = "EUR"

const columns = `id, owner_id::text, name, account_type, balance::text, currency, created_at`

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

type CreateInput struct {
	Name        string          `json:"name"`
	AccountType string          `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
}

// Normalize applies defaults and validates the input.
func (in *CreateInput) Normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name is required")
	}
	in.AccountType = strings.ToLower(strings.TrimSpace(in.AccountType))
	if in.AccountType == "" {
		in.AccountType = "checking"
	}
	if !domain.AccountTypes[in.AccountType] {
		return invalid("account_type must be one of checking, savings, credit, investment, cash")
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}
	if len(in.Currency) != 3 {
		return invalid("currency must be a 3-letter code")
	}
	in.Balance = in.Balance.Round(2)
	return nil
}

type UpdateInput struct {
	Name        *string `json:"name"`
	AccountType *string `json:"account_type"`
	Currency    *string `json:"currency"`
}

func scan(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &a.AccountType, &a.Balance, &a.Currency, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	return a, err
}

func (r *Repo) List(ctx context.Context, ownerID string) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+columns+` FROM accounts WHERE owner_id = $1::uuid ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Account{}
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, ownerID string, id int64) (domain.Account, error) {
	return Get(ctx, r.Pool, ownerID, id)
}

// Get loads an account owned by ownerID. Accounts of other users are
// reported as ErrNotFound.
func Get(ctx context.Context, q db.DBTX, ownerID string, id int64) (domain.Account, error) {
	return scan(q.QueryRow(ctx, `SELECT `+columns+` FROM accounts WHERE id = $1 AND owner_id = $2::uuid`, id, ownerID))
}

// LockOwned is Get with a row lock held until q's transaction ends. Writers
// that change the balance take this lock first, which serializes them per
// account.
func LockOwned(ctx context.Context, q db.DBTX, ownerID string, id int64) (domain.Account, error) {
	return scan(q.QueryRow(ctx, `SELECT `+columns+` FROM accounts WHERE id = $1 AND owner_id = $2::uuid FOR UPDATE`, id, ownerID))
}

// AdjustBalance adds delta to the account balance.
func AdjustBalance(ctx context.Context, q db.DBTX, id int64, delta decimal.Decimal) error {
	ct, err := q.Exec(ctx, `UPDATE accounts SET balance = balance + $2::numeric WHERE id = $1`, id, delta.String())
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Create(ctx context.Context, ownerID string, in CreateInput) (domain.Account, error) {
	if err := in.Normalize(); err != nil {
		return domain.Account{}, err
	}
	return scan(r.Pool.QueryRow(ctx, `
INSERT INTO accounts (owner_id, name, account_type, balance, currency)
VALUES ($1::uuid, $2, $3, $4::numeric, $5)
RETURNING `+columns,
		ownerID, in.Name, in.AccountType, in.Balance.String(), in.Currency))
}

func (r *Repo) Update(ctx context.Context, ownerID string, id int64, in UpdateInput) (domain.Account, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.Account{}, invalid("name is required")
		}
		in.Name = &name
	}
	if in.AccountType != nil {
		t := strings.ToLower(strings.TrimSpace(*in.AccountType))
		if !domain.AccountTypes[t] {
			return domain.Account{}, invalid("account_type must be one of checking, savings, credit, investment, cash")
		}
		in.AccountType = &t
	}
	if in.Currency != nil {
		cur := strings.ToUpper(strings.TrimSpace(*in.Currency))
		if len(cur) != 3 {
			return domain.Account{}, invalid("currency must be a 3-letter code")
		}
		in.Currency = &cur
	}
	return scan(r.Pool.QueryRow(ctx, `
UPDATE accounts
SET name = COALESCE($3, name),
    account_type = COALESCE($4, account_type),
    currency = COALESCE($5, currency)
WHERE id = $1 AND owner_id = $2::uuid
RETURNING `+columns,
		id, ownerID, in.Name, in.AccountType, in.Currency))
}

// Delete removes the account and, through the foreign key cascade, its
// transactions.
func (r *Repo) Delete(ctx context.Context, ownerID string, id int64) error {
	return db.WithTx(ctx, r.Pool, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1 AND owner_id = $2::uuid`, id, ownerID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		return audit.Write(ctx, tx, audit.Entry{
			UserID:     ownerID,
			Action:     audit.ActionAccountDeleted,
			EntityType: "account",
			EntityID:   audit.ID(id),
		})
	})
}
