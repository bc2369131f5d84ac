package imports

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/federicogioffre/finance-tracker/internal/auth"
)

type harness struct {
	app    *fiber.App
	store  *ledger
	tokens *auth.Tokens
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := newLedger()
	tokens := auth.NewTokens([]byte("test-secret"), time.Hour)
	h := NewHandler(newService(t, store))

	app := fiber.New()
	g := app.Group("/api/import", tokens.Middleware())
	g.Post("/inspect", h.Inspect)
	g.Post("/preview", h.Preview)
	g.Post("/confirm", h.Confirm)
	return &harness{app: app, store: store, tokens: tokens}
}

func (h *harness) bearer(t *testing.T, userID string) string {
	t.Helper()
	tok, err := h.tokens.Issue(userID)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (h *harness) upload(t *testing.T, path, filename string, data []byte) (int, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", h.bearer(t, alice))
	return h.do(t, req)
}

func (h *harness) confirm(t *testing.T, userID string, payload any) (int, string) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/import/confirm", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", h.bearer(t, userID))
	return h.do(t, req)
}

func (h *harness) do(t *testing.T, req *http.Request) (int, string) {
	t.Helper()
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestHandler_PreviewThenConfirm(t *testing.T) {
	h := newHarness(t)

	status, body := h.upload(t, "/api/import/preview", "movimenti.xlsx", finecoStatement(t))
	require.Equal(t, http.StatusOK, status, body)

	var p struct {
		Rows          []json.RawMessage `json:"rows"`
		TotalIncome   json.Number       `json:"totalIncome"`
		TotalExpenses json.Number       `json:"totalExpenses"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	assert.Len(t, p.Rows, 3)
	assert.Equal(t, "1234.56", p.TotalIncome.String())
	assert.Equal(t, "25.95", p.TotalExpenses.String())
	assert.Contains(t, body, `"transactionType":"expense"`)

	status, body = h.confirm(t, alice, map[string]any{"accountId": 1, "rows": p.Rows})
	require.Equal(t, http.StatusOK, status, body)
	assert.JSONEq(t, `{"imported":3}`, body)
	assert.Equal(t, "1308.61", h.store.balance(1).String())
}

func TestHandler_ConfirmOtherUsersAccount(t *testing.T) {
	h := newHarness(t)

	status, body := h.confirm(t, alice, map[string]any{
		"accountId": 2,
		"rows":      []map[string]any{{"date": "2026-02-25", "amount": 10, "transactionType": "income"}},
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Conto non trovato")
	assert.Empty(t, h.store.inserted(2))
}

func TestHandler_ConfirmInvalidRow(t *testing.T) {
	h := newHarness(t)

	status, _ := h.confirm(t, alice, map[string]any{
		"accountId": 1,
		"rows":      []map[string]any{{"date": "2026-02-25", "amount": 10, "transactionType": "refund"}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Empty(t, h.store.inserted(1))
}

func TestHandler_UploadRejections(t *testing.T) {
	h := newHarness(t)

	status, body := h.upload(t, "/api/import/preview", "movimenti.csv", []byte("a;b;c"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "Carica un file Excel")

	status, body = h.upload(t, "/api/import/preview", "movimenti.xlsx", workbook(t, []any{"Data", "Importo"}))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body, "Conto > Movimenti")

	empty := workbook(t, header, []any{"2026-02-25", "2026-02-25", "", "", "Nota", ""})
	status, body = h.upload(t, "/api/import/preview", "movimenti.xlsx", empty)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body, "Nessuna transazione trovata")
}

func TestHandler_FileTooLarge(t *testing.T) {
	h := newHarness(t)
	svc := newService(t, h.store)
	svc.MaxBytes = 1 << 20
	big := NewHandler(svc)
	h.app.Post("/big", func(c *fiber.Ctx) error {
		c.Locals("user_id", alice)
		return big.Preview(c)
	})

	status, body := h.upload(t, "/big", "movimenti.xlsx", bytes.Repeat([]byte{'x'}, 1<<20+1))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "File troppo grande (max 1 MB)")
}

func TestHandler_Inspect(t *testing.T) {
	h := newHarness(t)

	status, body := h.upload(t, "/api/import/inspect", "movimenti.xlsx", finecoStatement(t))
	require.Equal(t, http.StatusOK, status, body)

	var out struct {
		Sheet string     `json:"sheet"`
		Rows  [][]string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, "Sheet1", out.Sheet)
	require.NotEmpty(t, out.Rows)
	assert.Equal(t, "Data_Operazione", out.Rows[2][0])
}

func TestHandler_RequiresToken(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/api/import/confirm", strings.NewReader(`{}`))
	status, _ := h.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, status)
}
