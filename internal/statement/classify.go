package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type is the direction of a transaction.
type Type string

const (
	Income  Type = "income"
	Expense Type = "expense"
)

// Valid reports whether t is a known direction.
func (t Type) Valid() bool {
	return t == Income || t == Expense
}

// Candidate is a parsed statement row waiting for the user to confirm it.
// Amount is always a positive magnitude.
type Candidate struct {
	Date        time.Time
	Amount      decimal.Decimal
	Type        Type
	Description *string
}

// Amount is a normalized amount cell; Valid is false when the cell is absent.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

// Classify decides what a normalized row represents. Rows without a date or
// without any amount are skipped. Income wins when both columns carry a value.
func Classify(date time.Time, hasDate bool, income, expense Amount, desc *string) (Candidate, bool) {
	if !hasDate {
		return Candidate{}, false
	}
	switch {
	case income.Valid:
		return Candidate{Date: date, Amount: income.Value, Type: Income, Description: desc}, true
	case expense.Valid:
		return Candidate{Date: date, Amount: expense.Value, Type: Expense, Description: desc}, true
	default:
		return Candidate{}, false
	}
}
