package categories

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/federicogioffre/finance-tracker/internal/auth"
	"github.com/federicogioffre/finance-tracker/internal/db"
	"github.com/federicogioffre/finance-tracker/internal/domain"
)

var ErrNotFound = errors.New("category not found")

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type Repo struct {
	Pool *pgxpool.Pool
}

type CreateInput struct {
	Name         string  `json:"name"`
	CategoryType string  `json:"category_type"`
	Color        *string `json:"color"`
}

func (in *CreateInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return errors.New("name is required")
	}
	in.CategoryType = strings.ToLower(strings.TrimSpace(in.CategoryType))
	if in.CategoryType == "" {
		in.CategoryType = "expense"
	}
	if in.CategoryType != "income" && in.CategoryType != "expense" {
		return errors.New("category_type must be income or expense")
	}
	if in.Color != nil {
		if !hexColor.MatchString(*in.Color) {
			return errors.New("color must look like #RRGGBB")
		}
		c := strings.ToUpper(*in.Color)
		in.Color = &c
	}
	return nil
}

func (r *Repo) List(ctx context.Context, ownerID string) ([]domain.Category, error) {
	rows, err := r.Pool.Query(ctx, `
SELECT id, owner_id::text, name, category_type, color
FROM categories
WHERE owner_id = $1::uuid
ORDER BY name`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.CategoryType, &c.Color); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, ownerID string, in CreateInput) (domain.Category, error) {
	var c domain.Category
	err := r.Pool.QueryRow(ctx, `
INSERT INTO categories (owner_id, name, category_type, color)
VALUES ($1::uuid, $2, $3, $4)
RETURNING id, owner_id::text, name, category_type, color`,
		ownerID, in.Name, in.CategoryType, in.Color,
	).Scan(&c.ID, &c.OwnerID, &c.Name, &c.CategoryType, &c.Color)
	return c, err
}

// Owned returns ErrNotFound unless id is a category of ownerID.
func Owned(ctx context.Context, q db.DBTX, ownerID string, id int64) error {
	var one int
	err := q.QueryRow(ctx, `SELECT 1 FROM categories WHERE id = $1 AND owner_id = $2::uuid`, id, ownerID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

type Handler struct {
	Repo *Repo
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return err
	}
	items, err := h.Repo.List(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load categories")
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
	if err := body.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	cat, err := h.Repo.Create(c.UserContext(), userID, body)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create category")
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}
