package money

import "github.com/shopspring/decimal"

// Number is a decimal that travels as a bare JSON number instead of the
// quoted string decimal.Decimal produces.
type Number struct {
	decimal.Decimal
}

func NewNumber(d decimal.Decimal) Number {
	return Number{Decimal: d}
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	return n.Decimal.UnmarshalJSON(b)
}
