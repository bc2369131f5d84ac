package users

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/federicogioffre/finance-tracker/internal/auth"
	"github.com/federicogioffre/finance-tracker/internal/domain"
)

// Store is the part of Repo the handlers need.
type Store interface {
	Create(ctx context.Context, email, passwordHash, fullName string) (domain.User, error)
	ByEmail(ctx context.Context, email string) (domain.User, error)
	Get(ctx context.Context, id string) (domain.User, error)
}

type Handler struct {
	Store  Store
	Tokens *auth.Tokens
}

func NewHandler(store Store, tokens *auth.Tokens) *Handler {
	return &Handler{Store: store, Tokens: tokens}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *Handler) Signup(c *fiber.Ctx) error {
	var body SignupInput
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := body.Normalize(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	hashed, err := auth.HashPassword(body.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}

	u, err := h.Store.Create(c.UserContext(), body.Email, hashed, body.FullName)
	if errors.Is(err, ErrDuplicate) {
		return fiber.NewError(fiber.StatusConflict, "email already registered")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create user")
	}

	return h.respond(c, fiber.StatusCreated, u)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	u, err := h.Store.ByEmail(c.UserContext(), strings.ToLower(strings.TrimSpace(body.Email)))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
	if err != nil || !u.IsActive || !auth.CheckPassword(u.PasswordHash, body.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	return h.respond(c, fiber.StatusOK, u)
}

func (h *Handler) Me(c *fiber.Ctx) error {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return err
	}

	u, err := h.Store.Get(c.UserContext(), userID)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
	return c.JSON(u)
}

func (h *Handler) respond(c *fiber.Ctx, status int, u domain.User) error {
	token, err := h.Tokens.Issue(u.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
	}
	return c.Status(status).JSON(authResponse{Token: token, User: u})
}
