package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/federicogioffre/finance-tracker/internal/logger"
	"github.com/federicogioffre/finance-tracker/internal/summary"
	"github.com/federicogioffre/finance-tracker/internal/transactions"
)

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(c *fiber.Ctx) error { return io.ErrUnexpectedEOF })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"short and stout"}`, string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"internal server error"}`, string(body))
}

func TestNewErrorHandler_BodyOverLimit(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(1 << 20)})
	// the server reports a body over BodyLimit with this error
	app.Post("/upload", func(c *fiber.Ctx) error { return fiber.ErrRequestEntityTooLarge })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/upload", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"File troppo grande (max 1 MB)"}`, string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"short and stout"}`, string(body))
}

func TestRequestContext(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RequestContext(logger.NewWithWriter(&buf)))

	var seen zerolog.Logger
	app.Get("/ping", func(c *fiber.Ctx) error {
		seen = logger.FromContext(c.UserContext())
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	id := resp.Header.Get(requestIDHeader)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, zerolog.Disabled, seen.GetLevel())

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, id, line["request_id"])
	assert.Equal(t, "/ping", line["path"])
	assert.EqualValues(t, 200, line["status"])

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	given := uuid.NewString()
	req.Header.Set(requestIDHeader, given)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, given, resp.Header.Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "not-a-uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(requestIDHeader))
}

func TestRateLimitWrite(t *testing.T) {
	app := fiber.New()
	app.Post("/w", RateLimitWrite(1), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/w", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/w", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRegisterRoutes_SummaryBeforeTransactionID(t *testing.T) {
	app := fiber.New()
	r := &Router{
		TransactionsHandler: transactions.NewHandler(nil),
		SummaryHandler:      &summary.Handler{},
		AuthMW:              func(c *fiber.Ctx) error { return c.Next() },
	}
	r.RegisterRoutes(app)

	summaryAt, idAt := -1, -1
	for i, route := range app.GetRoutes(true) {
		if route.Method != fiber.MethodGet {
			continue
		}
		switch route.Path {
		case "/api/transactions/summary":
			summaryAt = i
		case "/api/transactions/:id":
			idAt = i
		}
	}
	require.NotEqual(t, -1, summaryAt)
	require.NotEqual(t, -1, idAt)
	assert.Less(t, summaryAt, idAt)
}
