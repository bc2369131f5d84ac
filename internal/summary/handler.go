package summary

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/federicogioffre/finance-tracker/internal/accounts"
	"github.com/federicogioffre/finance-tracker/internal/auth"
	"github.com/federicogioffre/finance-tracker/internal/transactions"
)

type Handler struct {
	Repo Repo
}

func (h Handler) GetSummary(c *fiber.Ctx) error {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return err
	}

	var q Query
	if raw := strings.TrimSpace(c.Query("account_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "account_id must be a positive integer")
		}
		q.AccountID = id
	}
	if raw := strings.TrimSpace(c.Query("start_date")); raw != "" {
		d, ok := transactions.ParseDay(raw)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "start_date must be YYYY-MM-DD")
		}
		q.Start = &d
	}
	if raw := strings.TrimSpace(c.Query("end_date")); raw != "" {
		d, ok := transactions.ParseDay(raw)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "end_date must be YYYY-MM-DD")
		}
		q.End = &d
	}

	ctx := c.UserContext()
	if q.AccountID != 0 {
		if _, err := accounts.Get(ctx, h.Repo.DB, userID, q.AccountID); err != nil {
			if errors.Is(err, accounts.ErrNotFound) {
				return fiber.NewError(fiber.StatusForbidden, "Not your account")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch summary")
		}
	}

	s, err := h.Repo.GetByUser(ctx, userID, q)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch summary: "+err.Error())
	}

	return c.JSON(s)
}
