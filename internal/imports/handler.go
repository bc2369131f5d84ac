package imports

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/federicogioffre/finance-tracker/internal/accounts"
	"github.com/federicogioffre/finance-tracker/internal/auth"
	"github.com/federicogioffre/finance-tracker/internal/statement"
)

// InspectRows is how many leading rows the inspect endpoint returns.
const InspectRows = 15

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

// Inspect returns the first rows of the uploaded sheet as text, for working
// out why a header was not found.
func (h *Handler) Inspect(c *fiber.Ctx) error {
	if _, err := auth.MustUserID(c); err != nil {
		return err
	}

	_, data, err := h.readUpload(c)
	if err != nil {
		return err
	}

	sheet, rows, err := statement.Inspect(data, InspectRows)
	if err != nil {
		return h.toFiber(err)
	}
	return c.JSON(fiber.Map{"sheet": sheet, "rows": rows})
}

func (h *Handler) Preview(c *fiber.Ctx) error {
	if _, err := auth.MustUserID(c); err != nil {
		return err
	}

	name, data, err := h.readUpload(c)
	if err != nil {
		return err
	}

	p, err := h.Service.Preview(c.UserContext(), name, data)
	if err != nil {
		return h.toFiber(err)
	}
	return c.JSON(p)
}

func (h *Handler) Confirm(c *fiber.Ctx) error {
	userID, err := auth.MustUserID(c)
	if err != nil {
		return err
	}

	var body ConfirmRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	n, err := h.Service.Confirm(c.UserContext(), userID, body)
	if err != nil {
		return h.toFiber(err)
	}
	return c.JSON(ConfirmResponse{Imported: n})
}

// readUpload takes the multipart "file" field. Name and declared size are
// checked before the content is read.
func (h *Handler) readUpload(c *fiber.Ctx) (string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	if err := h.Service.CheckUpload(fh.Filename, int(fh.Size)); err != nil {
		return "", nil, h.toFiber(err)
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "could not read upload")
	}
	defer f.Close()

	r := io.Reader(f)
	if h.Service.MaxBytes > 0 {
		r = io.LimitReader(f, int64(h.Service.MaxBytes)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "could not read upload")
	}
	return fh.Filename, data, nil
}

func (h *Handler) toFiber(err error) error {
	var perr *statement.ParseError
	switch {
	case errors.Is(err, ErrUnsupportedFileType):
		return fiber.NewError(fiber.StatusBadRequest, "Carica un file Excel (.xlsx o .xls)")
	case errors.Is(err, ErrFileTooLarge):
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("File troppo grande (max %d MB)", h.Service.MaxBytes>>20))
	case errors.As(err, &perr):
		return fiber.NewError(fiber.StatusUnprocessableEntity, perr.Message)
	case errors.Is(err, ErrNoTransactions):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Nessuna transazione trovata nel file.")
	case errors.Is(err, accounts.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Conto non trovato")
	case errors.Is(err, ErrInvalidRow):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "import failed")
	}
}
