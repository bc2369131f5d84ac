package transactions

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/federicogioffre/finance-tracker/internal/auth"
	"github.com/federicogioffre/finance-tracker/internal/categories"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return err
	}

	f, err := parseFilter(c)
	if err != nil {
		return err
	}

	items, err := h.Repo.List(c.UserContext(), userID, f)
	if err != nil {
		return toFiber(err)
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

	t, err := h.Repo.Create(c.UserContext(), userID, body)
	if err != nil {
		return toFiber(err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return err
	}

	id, err := paramID(c)
	if err != nil {
		return err
	}

	t, err := h.Repo.Get(c.UserContext(), userID, id)
	if err != nil {
		return toFiber(err)
	}
	return c.JSON(t)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return err
	}

	id, err := paramID(c)
	if err != nil {
		return err
	}

	var body UpdateInput
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	t, err := h.Repo.Update(c.UserContext(), userID, id, body)
	if err != nil {
		return toFiber(err)
	}
	return c.JSON(t)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return err
	}

	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.Repo.Delete(c.UserContext(), userID, id); err != nil {
		return toFiber(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	f := Filter{Limit: DefaultLimit}

	if raw := strings.TrimSpace(c.Query("account_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return Filter{}, fiber.NewError(fiber.StatusBadRequest, "account_id must be a positive integer")
		}
		f.AccountID = id
	}
	if raw := strings.TrimSpace(c.Query("transaction_type")); raw != "" {
		f.Type = normalizeType(raw)
		if f.Type == "" {
			return Filter{}, fiber.NewError(fiber.StatusBadRequest, "transaction_type must be income or expense")
		}
	}
	if raw := strings.TrimSpace(c.Query("start_date")); raw != "" {
		d, ok := ParseDay(raw)
		if !ok {
			return Filter{}, fiber.NewError(fiber.StatusBadRequest, "start_date must be YYYY-MM-DD")
		}
		f.Start = &d
	}
	if raw := strings.TrimSpace(c.Query("end_date")); raw != "" {
		d, ok := ParseDay(raw)
		if !ok {
			return Filter{}, fiber.NewError(fiber.StatusBadRequest, "end_date must be YYYY-MM-DD")
		}
		f.End = &d
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxLimit {
			return Filter{}, fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 500")
		}
		f.Limit = n
	}
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Filter{}, fiber.NewError(fiber.StatusBadRequest, "offset must be >= 0")
		}
		f.Offset = n
	}
	return f, nil
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "Transaction not found")
	}
	return int64(id), nil
}

func toFiber(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Transaction not found")
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, "Not your account")
	case errors.Is(err, categories.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Category not found")
	case errors.Is(err, ErrInvalid):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
