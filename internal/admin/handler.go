package admin

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/federicogioffre/finance-tracker/internal/audit"
)

const latestLimit = 20

type Handler struct {
	Pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{Pool: pool}
}

type latestUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type latestImport struct {
	UserID    string    `json:"user_id"`
	AccountID *string   `json:"account_id"`
	Rows      int64     `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

type OverviewResponse struct {
	UsersTotal        int64          `json:"users_total"`
	AccountsTotal     int64          `json:"accounts_total"`
	TransactionsTotal int64          `json:"transactions_total"`
	ImportsTotal      int64          `json:"imports_total"`
	LatestUsers       []latestUser   `json:"latest_users"`
	LatestImports     []latestImport `json:"latest_imports"`
}

func (h *Handler) Overview(c *fiber.Ctx) error {
	resp, err := h.overview(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed overview")
	}
	return c.JSON(resp)
}

func (h *Handler) overview(ctx context.Context) (OverviewResponse, error) {
	resp := OverviewResponse{LatestUsers: []latestUser{}, LatestImports: []latestImport{}}

	err := h.Pool.QueryRow(ctx, `
SELECT
  (SELECT COUNT(*) FROM users),
  (SELECT COUNT(*) FROM accounts),
  (SELECT COUNT(*) FROM transactions),
  (SELECT COUNT(*) FROM audit_logs WHERE action = $1)`, audit.ActionImportConfirmed,
	).Scan(&resp.UsersTotal, &resp.AccountsTotal, &resp.TransactionsTotal, &resp.ImportsTotal)
	if err != nil {
		return resp, err
	}

	rows, err := h.Pool.Query(ctx, `
SELECT id::text, email, created_at
FROM users
ORDER BY created_at DESC
LIMIT $1`, latestLimit)
	if err != nil {
		return resp, err
	}
	defer rows.Close()
	for rows.Next() {
		var u latestUser
		if err := rows.Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
			return resp, err
		}
		resp.LatestUsers = append(resp.LatestUsers, u)
	}
	if err := rows.Err(); err != nil {
		return resp, err
	}

	imports, err := h.Pool.Query(ctx, `
SELECT COALESCE(user_id::text, ''), entity_id, COALESCE((metadata->>'rows')::bigint, 0), created_at
FROM audit_logs
WHERE action = $1
ORDER BY created_at DESC
LIMIT $2`, audit.ActionImportConfirmed, latestLimit)
	if err != nil {
		return resp, err
	}
	defer imports.Close()
	for imports.Next() {
		var im latestImport
		if err := imports.Scan(&im.UserID, &im.AccountID, &im.Rows, &im.CreatedAt); err != nil {
			return resp, err
		}
		resp.LatestImports = append(resp.LatestImports, im)
	}
	return resp, imports.Err()
}
