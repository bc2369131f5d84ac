package budgets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/federicogioffre/finance-tracker/internal/auth"
	"github.com/federicogioffre/finance-tracker/internal/categories"
	"github.com/federicogioffre/finance-tracker/internal/domain"
	"github.com/federicogioffre/finance-tracker/internal/money"
)

var (
	ErrNotFound  = errors.New("budget not found")
	ErrDuplicate = errors.New("budget already exists for this category/month")
	ErrInvalid   = errors.New("invalid budget")
)

const uniqueViolation = "23505"

const columns = `id, owner_id::text, category_id, amount::text, year, month, created_at`

type Repo struct {
	Pool *pgxpool.Pool
}

type CreateInput struct {
	CategoryID int64           `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Year       int             `json:"year"`
	Month      int             `json:"month"`
}

func (in CreateInput) Validate() error {
	if in.CategoryID <= 0 {
		return fmt.Errorf("%w: category_id is required", ErrInvalid)
	}
	if err := money.Validate(in.Amount); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if in.Year < 2000 || in.Year > 2100 {
		return fmt.Errorf("%w: year out of range", ErrInvalid)
	}
	if in.Month < 1 || in.Month > 12 {
		return fmt.Errorf("%w: month must be 1-12", ErrInvalid)
	}
	return nil
}

func scan(row pgx.Row) (domain.Budget, error) {
	var b domain.Budget
	err := row.Scan(&b.ID, &b.OwnerID, &b.CategoryID, &b.Amount, &b.Year, &b.Month, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Budget{}, ErrNotFound
	}
	return b, err
}

func (r *Repo) List(ctx context.Context, ownerID string, year, month int) ([]domain.Budget, error) {
	rows, err := r.Pool.Query(ctx, `
SELECT `+columns+`
FROM budgets
WHERE owner_id = $1::uuid
  AND ($2 = 0 OR year = $2)
  AND ($3 = 0 OR month = $3)
ORDER BY year, month`, ownerID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Budget{}
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, ownerID string, in CreateInput) (domain.Budget, error) {
	if err := in.Validate(); err != nil {
		return domain.Budget{}, err
	}
	if err := categories.Owned(ctx, r.Pool, ownerID, in.CategoryID); err != nil {
		return domain.Budget{}, err
	}

	b, err := scan(r.Pool.QueryRow(ctx, `
INSERT INTO budgets (owner_id, category_id, amount, year, month)
VALUES ($1::uuid, $2, $3::numeric, $4, $5)
RETURNING `+columns,
		ownerID, in.CategoryID, in.Amount.String(), in.Year, in.Month))

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.Budget{}, ErrDuplicate
	}
	return b, err
}

func (r *Repo) UpdateAmount(ctx context.Context, ownerID string, id int64, amount decimal.Decimal) (domain.Budget, error) {
	if err := money.Validate(amount); err != nil {
		return domain.Budget{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return scan(r.Pool.QueryRow(ctx, `
UPDATE budgets SET amount = $3::numeric
WHERE id = $1 AND owner_id = $2::uuid
RETURNING `+columns, id, ownerID, amount.String()))
}

func (r *Repo) Delete(ctx context.Context, ownerID string, id int64) error {
	ct, err := r.Pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND owner_id = $2::uuid`, id, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type Handler struct {
	Repo *Repo
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return err
	}

	year, err := optionalInt(c.Query("year"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "year must be a number")
	}
	month, err := optionalInt(c.Query("month"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "month must be a number")
	}

	items, err := h.Repo.List(c.UserContext(), userID, year, month)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load budgets")
	}
	return c.JSON(items)
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return err
	}

	var body CreateInput
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	b, err := h.Repo.Create(c.UserContext(), userID, body)
	if err != nil {
		return toFiber(err)
	}
	return c.Status(fiber.StatusCreated).JSON(b)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return err
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusNotFound, "Budget not found")
	}

	var body struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	b, err := h.Repo.UpdateAmount(c.UserContext(), userID, int64(id), body.Amount)
	if err != nil {
		return toFiber(err)
	}
	return c.JSON(b)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return err
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusNotFound, "Budget not found")
	}
	if err := h.Repo.Delete(c.UserContext(), userID, int64(id)); err != nil {
		return toFiber(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func optionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func toFiber(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Budget not found")
	case errors.Is(err, categories.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Category not found")
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrInvalid):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
