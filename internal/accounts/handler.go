package accounts

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/federicogioffre/finance-tracker/internal/auth"
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

	items, err := h.Repo.List(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load accounts")
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

	acc, err := h.Repo.Create(c.UserContext(), userID, body)
	if err != nil {
		return toFiber(err)
	}
	return c.Status(fiber.StatusCreated).JSON(acc)
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

	acc, err := h.Repo.Get(c.UserContext(), userID, id)
	if err != nil {
		return toFiber(err)
	}
	return c.JSON(acc)
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

	acc, err := h.Repo.Update(c.UserContext(), userID, id, body)
	if err != nil {
		return toFiber(err)
	}
	return c.JSON(acc)
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

// paramID reads the :id route segment. Ids that cannot exist are reported
// as not found.
func paramID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "Account not found")
	}
	return int64(id), nil
}

func toFiber(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Account not found")
	case errors.Is(err, ErrInvalid):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe
		}
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
