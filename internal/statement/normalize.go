package statement

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/federicogioffre/finance-tracker/internal/money"
)

// dateLayouts are tried in order; the first match wins.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	time.RFC3339,
}

// ParseAmount turns a cell into a positive magnitude. Empty cells, the
// placeholders "-", "0" and "0.0", unparseable text and non-positive values
// are all absent. Amounts are rounded to cents, so a cell below half a cent
// is absent too. A comma marks European notation: dots are thousands
// separators and the comma is the decimal point. The sign of the cell is
// dropped; direction comes from the column.
func ParseAmount(v any) (decimal.Decimal, bool) {
	var s string
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case decimal.Decimal:
		s = x.String()
	case string:
		s = x
	default:
		s = cellText(x)
	}

	s = strings.TrimSpace(s)
	switch s {
	case "", "-", "0", "0.0":
		return decimal.Zero, false
	}
	s = strings.TrimLeft(s, "-")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	d = d.Round(money.Scale)
	if !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// ParseDate turns a cell into a calendar date. Date cells are used as they
// are; text is matched against dateLayouts.
func ParseDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return truncateDay(x), true
	}

	s := strings.TrimSpace(cellText(v))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), true
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// description returns trimmed text, or nil when the cell is blank.
func description(v any) *string {
	s := strings.TrimSpace(cellText(v))
	if s == "" {
		return nil
	}
	return &s
}
