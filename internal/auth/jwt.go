package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const localsUserID = "user_id"

var ErrInvalidToken = errors.New("invalid token")

// Tokens issues and verifies HS256 bearer tokens carrying a user_id claim.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	return &Tokens{Secret: secret, TTL: ttl, now: time.Now}
}

func (t *Tokens) clock() time.Time {
	if t.now == nil {
		return time.Now()
	}
	return t.now()
}

func (t *Tokens) Issue(userID string) (string, error) {
	now := t.clock()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(t.TTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

// Parse verifies raw and returns its user id.
func (t *Tokens) Parse(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.Secret, nil
	}, jwt.WithTimeFunc(t.clock), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	uid, ok := claims["user_id"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	if _, err := uuid.Parse(uid); err != nil {
		return "", ErrInvalidToken
	}
	return uid, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// caller's id in c.Locals("user_id").
func (t *Tokens) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing token")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		uid, err := t.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(localsUserID, uid)
		return c.Next()
	}
}

// UserID returns the authenticated caller set by Middleware.
func UserID(c *fiber.Ctx) (string, bool) {
	uid, ok := c.Locals(localsUserID).(string)
	if !ok || strings.TrimSpace(uid) == "" {
		return "", false
	}
	return uid, true
}

// MustUserID is UserID for handlers mounted behind Middleware.
func MustUserID(c *fiber.Ctx) (string, error) {
	uid, ok := UserID(c)
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return uid, nil
}
