package admin

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequireAdminAPIKey checks the X-Admin-Key header against key. An empty key
// disables every admin route.
func RequireAdminAPIKey(key string) fiber.Handler {
	key = strings.TrimSpace(key)
	if key == "" {
		return func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusServiceUnavailable, "admin api disabled")
		}
	}

	return func(c *fiber.Ctx) error {
		got := strings.TrimSpace(c.Get("X-Admin-Key"))
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid admin key")
		}
		return c.Next()
	}
}
