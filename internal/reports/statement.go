package reports

import (
	"github.com/gofiber/fiber/v2"

	"github.com/federicogioffre/finance-tracker/internal/auth"
)

// Statement returns an account's movements in the period as JSON.
func (h *Handler) Statement(c *fiber.Ctx) error {
	st, err := h.loadStatement(c)
	if err != nil {
		return err
	}
	return c.JSON(st)
}

func (h *Handler) loadStatement(c *fiber.Ctx) (AccountStatement, error) {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return AccountStatement{}, err
	}
	id, err := accountID(c)
	if err != nil {
		return AccountStatement{}, err
	}
	p, err := h.period(c)
	if err != nil {
		return AccountStatement{}, err
	}

	st, err := h.Repo.Statement(c.UserContext(), userID, id, p)
	if err != nil {
		return AccountStatement{}, toFiber(err)
	}
	return st, nil
}
