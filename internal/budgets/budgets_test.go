package budgets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCreateInput_Validate(t *testing.T) {
	ok := CreateInput{CategoryID: 1, Amount: decimal.RequireFromString("250"), Year: 2026, Month: 2}
	assert.NoError(t, ok.Validate())

	tests := map[string]CreateInput{
		"no category": {Amount: decimal.NewFromInt(1), Year: 2026, Month: 1},
		"zero amount": {CategoryID: 1, Year: 2026, Month: 1},
		"month 13":    {CategoryID: 1, Amount: decimal.NewFromInt(1), Year: 2026, Month: 13},
		"year 1999":   {CategoryID: 1, Amount: decimal.NewFromInt(1), Year: 1999, Month: 1},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, in.Validate(), ErrInvalid)
		})
	}
}

func TestOptionalInt(t *testing.T) {
	n, err := optionalInt(" ")
	assert.NoError(t, err)
	assert.Zero(t, n)

	n, err = optionalInt("2026")
	assert.NoError(t, err)
	assert.Equal(t, 2026, n)

	_, err = optionalInt("x")
	assert.Error(t, err)
}
