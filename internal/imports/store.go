package imports

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/federicogioffre/finance-tracker/internal/accounts"
	"github.com/federicogioffre/finance-tracker/internal/audit"
	"github.com/federicogioffre/finance-tracker/internal/db"
	"github.com/federicogioffre/finance-tracker/internal/transactions"
)

// PgStore is the Postgres ledger behind Confirm.
type PgStore struct {
	Pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{Pool: pool}
}

// ImportBatch locks the account row, inserts every transaction, moves the
// balance by the summed delta and records an audit entry in one database
// transaction. Any error rolls the whole batch back.
func (s *PgStore) ImportBatch(ctx context.Context, userID string, accountID int64, rows []transactions.NewTransaction) error {
	return db.WithTx(ctx, s.Pool, func(tx pgx.Tx) error {
		if _, err := accounts.LockOwned(ctx, tx, userID, accountID); err != nil {
			return err
		}

		delta := decimal.Zero
		for i, n := range rows {
			n.AccountID = accountID
			if _, err := transactions.Insert(ctx, tx, n); err != nil {
				return fmt.Errorf("insert row %d: %w", i+1, err)
			}
			delta = delta.Add(n.Amount)
		}

		if err := accounts.AdjustBalance(ctx, tx, accountID, delta); err != nil {
			return err
		}
		return audit.Write(ctx, tx, audit.Entry{
			UserID:     userID,
			Action:     audit.ActionImportConfirmed,
			EntityType: "account",
			EntityID:   audit.ID(accountID),
			Metadata:   map[string]any{"rows": len(rows), "delta": delta.String()},
		})
	})
}
