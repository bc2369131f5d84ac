package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestSigned(t *testing.T) {
	d := decimal.RequireFromString

	tests := []struct {
		amount string
		typ    string
		want   string
	}{
		{"5.95", "expense", "-5.95"},
		{"-5.95", "expense", "-5.95"},
		{"100", "income", "100"},
		{"-100", "Income", "100"},
	}
	for _, tt := range tests {
		t.Run(tt.typ+" "+tt.amount, func(t *testing.T) {
			got, err := Signed(d(tt.amount), tt.typ)
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "got %s", got)
		})
	}

	_, err := Signed(d("1"), "transfer")
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(decimal.RequireFromString("0.01")))
	assert.NoError(t, Validate(decimal.RequireFromString("9999999999999.99")))

	for _, bad := range []string{"0", "-1", "0.001", "10000000000000"} {
		assert.ErrorIs(t, Validate(decimal.RequireFromString(bad)), ErrInvalidAmount, bad)
	}
}

func TestFormat(t *testing.T) {
	got := Format(decimal.RequireFromString("1234.5"), "EUR", language.Italian)
	assert.Contains(t, got, "1.234,50")
	assert.Contains(t, got, "€")

	assert.Equal(t, "1,234.50", Format(decimal.RequireFromString("1234.5"), "???", language.English))
}
