package reports

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/federicogioffre/finance-tracker/internal/money"
)

// maxPDFRows keeps generated documents to a printable size.
const maxPDFRows = 500

func (h *Handler) StatementPDF(c *fiber.Ctx) error {
	st, err := h.loadStatement(c)
	if err != nil {
		return err
	}

	doc, err := RenderStatement(st, h.Lang, h.clock())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "pdf build failed")
	}

	filename := fmt.Sprintf("statement-%d-%s-to-%s.pdf", st.Account.ID, st.From, st.To)
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(doc)
}

var statementCols = []float64{26, 24, 100, 32}

func tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 245, 245)
	pdf.SetTextColor(20, 20, 20)
	pdf.CellFormat(statementCols[0], 8, "DATE", "1", 0, "C", true, 0, "")
	pdf.CellFormat(statementCols[1], 8, "TYPE", "1", 0, "C", true, 0, "")
	pdf.CellFormat(statementCols[2], 8, "DESCRIPTION", "1", 0, "L", true, 0, "")
	pdf.CellFormat(statementCols[3], 8, "AMOUNT", "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(30, 30, 30)
}

// RenderStatement lays out st as an A4 PDF with amounts formatted for lang.
func RenderStatement(st AccountStatement, lang language.Tag, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	format := func(d decimal.Decimal) string { return tr(money.Format(d, st.Account.Currency, lang)) }

	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(false, 14)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr("Statement: "+st.Account.Name))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Period: "+st.From+" to "+st.To)
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Account #%d (%s, %s)", st.Account.ID, st.Account.AccountType, st.Account.Currency))
	pdf.Ln(10)

	totals := []struct{ label, value string }{
		{"Opening", format(st.OpeningBalance)},
		{"Income", format(st.TotalIncome)},
		{"Expenses", format(st.TotalExpenses)},
		{"Closing", format(st.ClosingBalance)},
	}
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)
	for i, t := range totals {
		pdf.CellFormat(45.5, 10, t.label, "1", lineEnd(i, len(totals)), "C", true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 11)
	for i, t := range totals {
		pdf.CellFormat(45.5, 10, t.value, "1", lineEnd(i, len(totals)), "C", false, 0, "")
	}
	pdf.Ln(6)

	tableHeader(pdf)
	for i, it := range st.Items {
		if i >= maxPDFRows {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 8, fmt.Sprintf("%d more rows not shown", len(st.Items)-maxPDFRows), "1", 1, "C", false, 0, "")
			break
		}
		if pdf.GetY() > 270 {
			pdf.AddPage()
			tableHeader(pdf)
		}

		desc := ""
		if it.Description != nil {
			desc = *it.Description
		}

		pdf.CellFormat(statementCols[0], 8, it.Date.Format(dayLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(statementCols[1], 8, strings.ToUpper(it.TransactionType), "1", 0, "C", false, 0, "")

		x, y := pdf.GetX(), pdf.GetY()
		pdf.MultiCell(statementCols[2], 8, tr(trimTo(desc, 90)), "1", "L", false)
		usedH := pdf.GetY() - y
		pdf.SetXY(x+statementCols[2], y)
		pdf.CellFormat(statementCols[3], usedH, format(it.Amount), "1", 1, "R", false, 0, "")
	}

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Generated "+generated.UTC().Format(time.RFC3339), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lineEnd(i, n int) int {
	if i == n-1 {
		return 1
	}
	return 0
}

func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
