package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_JSON(t *testing.T) {
	out, err := json.Marshal(map[string]Number{"amount": NewNumber(decimal.RequireFromString("1234.56"))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":1234.56}`, string(out))

	var in struct {
		A Number `json:"a"`
		B Number `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":5.95,"b":"12.10"}`), &in))
	assert.Equal(t, "5.95", in.A.String())
	assert.Equal(t, "12.1", in.B.String())
}
