package transactions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/federicogioffre/finance-tracker/internal/accounts"
	"github.com/federicogioffre/finance-tracker/internal/audit"
	"github.com/federicogioffre/finance-tracker/internal/db"
)

// Delete removes a transaction and reverses its effect on the balance. The
// owning account row is locked first so concurrent imports and deletes on
// the same account apply one after another.
func (r *Repo) Delete(ctx context.Context, ownerID string, id int64) error {
	return db.WithTx(ctx, r.Pool, func(tx pgx.Tx) error {
		var (
			accountID int64
			amount    decimal.Decimal
		)
		err := tx.QueryRow(ctx, `
SELECT t.account_id, t.amount::text
FROM transactions t
JOIN accounts a ON a.id = t.account_id
WHERE t.id = $1 AND a.owner_id = $2::uuid
FOR UPDATE OF a`, id, ownerID).Scan(&accountID, &amount)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		ct, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		if err := accounts.AdjustBalance(ctx, tx, accountID, amount.Neg()); err != nil {
			return err
		}
		return audit.Write(ctx, tx, audit.Entry{
			UserID:     ownerID,
			Action:     audit.ActionTransactionDeleted,
			EntityType: "transaction",
			EntityID:   audit.ID(id),
			Metadata:   map[string]any{"account_id": accountID, "amount": amount.String()},
		})
	})
}
