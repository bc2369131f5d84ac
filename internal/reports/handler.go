package reports

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"

	"github.com/federicogioffre/finance-tracker/internal/accounts"
	"github.com/federicogioffre/finance-tracker/internal/auth"
)

type Handler struct {
	Repo *Repo
	// Lang is the locale amounts are printed in on generated documents.
	Lang language.Tag
	now  func() time.Time
}

func NewHandler(repo *Repo, lang language.Tag) *Handler {
	return &Handler{Repo: repo, Lang: lang}
}

func (h *Handler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

func (h *Handler) period(c *fiber.Ctx) (Period, error) {
	p, err := ParsePeriod(c.Query("from"), c.Query("to"), h.clock())
	if err != nil {
		return Period{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return p, nil
}

// Daily returns income, expense and running balance per day.
func (h *Handler) Daily(c *fiber.Ctx) error {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return err
	}
	p, err := h.period(c)
	if err != nil {
		return err
	}

	r, err := h.Repo.Daily(c.UserContext(), userID, p)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed daily series")
	}
	return c.JSON(r)
}

func accountID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "Account not found")
	}
	return int64(id), nil
}

func toFiber(err error) error {
	if errors.Is(err, accounts.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Account not found")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed statement")
}
