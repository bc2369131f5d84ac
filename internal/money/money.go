package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	ErrInvalidAmount = errors.New("invalid money amount")
	ErrInvalidType   = errors.New("transaction_type must be income or expense")
)

// Scale is the number of fractional digits stored for every amount.
const Scale = 2

// maxMagnitude mirrors NUMERIC(15,2).
var maxMagnitude = decimal.New(1, 13)

// Validate checks that amount is a positive magnitude that fits the column.
func Validate(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: must be > 0", ErrInvalidAmount)
	}
	if amount.GreaterThanOrEqual(maxMagnitude) {
		return fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	if !amount.Equal(amount.Round(Scale)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, Scale)
	}
	return nil
}

// Signed returns the stored amount for a transaction of type typ: expenses
// are negative and income positive, whatever the sign of amount.
func Signed(amount decimal.Decimal, typ string) (decimal.Decimal, error) {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "income":
		return amount.Abs(), nil
	case "expense":
		return amount.Abs().Neg(), nil
	default:
		return decimal.Zero, ErrInvalidType
	}
}

// Format renders amount for display in the given locale, e.g.
// "€ 1.234,56" for Italian and EUR. Unknown currency codes render the bare
// number.
func Format(amount decimal.Decimal, code string, tag language.Tag) string {
	p := message.NewPrinter(tag)
	f := amount.Round(Scale).InexactFloat64()

	unit, err := currency.ParseISO(code)
	if err != nil {
		return p.Sprint(number.Decimal(f, number.MinFractionDigits(Scale), number.MaxFractionDigits(Scale)))
	}
	return p.Sprint(currency.Symbol(unit.Amount(f)))
}
