package reports

import (
	"github.com/gofiber/fiber/v2"

	"github.com/federicogioffre/finance-tracker/internal/auth"
)

// TopCategories is how many category rows the breakdown returns.
const TopCategories = 12

type CategoriesResponse struct {
	From string        `json:"from"`
	To   string        `json:"to"`
	Top  []CategoryRow `json:"top"`
}

func (h *Handler) Categories(c *fiber.Ctx) error {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return err
	}
	p, err := h.period(c)
	if err != nil {
		return err
	}

	rows, err := h.Repo.Categories(c.UserContext(), userID, p, TopCategories)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed categories")
	}

	return c.JSON(CategoriesResponse{
		From: p.FromString(),
		To:   p.ToString(),
		Top:  rows,
	})
}
