package router

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/federicogioffre/finance-tracker/internal/audit"
	"github.com/federicogioffre/finance-tracker/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestContext tags every request with an id, a request-scoped logger and
// the client address used by audit entries, then logs the outcome.
func RequestContext(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqID := c.Get(requestIDHeader)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)

		l := log.With().Str("request_id", reqID).Logger()
		ctx := logger.WithContext(c.UserContext(), l)
		ctx = audit.WithClient(ctx, c.IP(), c.Get(fiber.HeaderUserAgent))
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		ev := l.Info()
		if status >= fiber.StatusInternalServerError {
			ev = l.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}

// ErrorHandler renders every error as {"error": message}. Unexpected errors
// are reported as a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}

// NewErrorHandler is ErrorHandler for a server whose body limit guards file
// uploads: a body over the limit is reported with the same message as an
// upload over maxUploadBytes.
func NewErrorHandler(maxUploadBytes int) fiber.ErrorHandler {
	tooLarge := fmt.Sprintf("File troppo grande (max %d MB)", maxUploadBytes>>20)
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code == fiber.StatusRequestEntityTooLarge {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": tooLarge})
		}
		return ErrorHandler(c, err)
	}
}
