package summary

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	s := Build(decimal.RequireFromString("1234.56"), decimal.RequireFromString("-5.95"), Query{Start: &start})

	assert.Equal(t, "1234.56", s.TotalIncome.String())
	assert.Equal(t, "5.95", s.TotalExpenses.String())
	assert.Equal(t, "1228.61", s.Net.String())
	require.NotNil(t, s.PeriodStart)
	assert.Equal(t, "2026-02-01", *s.PeriodStart)
	assert.Nil(t, s.PeriodEnd)
}

func TestBuild_Empty(t *testing.T) {
	s := Build(decimal.Zero, decimal.Zero, Query{})
	assert.True(t, s.Net.IsZero())
	assert.True(t, s.TotalExpenses.IsZero())
}
