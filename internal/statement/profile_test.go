package statement

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfiles(t *testing.T) {
	profiles, err := DefaultProfiles()
	require.NoError(t, err)

	p, ok := profiles[DefaultProfile]
	require.True(t, ok)
	assert.Equal(t, []string{"data_operazione", "data operazione"}, p.Fields[FieldDate])
	assert.Equal(t, []Field{FieldDate, FieldIncome, FieldExpense, FieldDescription}, p.Required)
	assert.Equal(t, "uscite", p.Label(FieldExpense))
	assert.NotEmpty(t, p.HeaderHint)
}

func TestLoadProfiles_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	yaml := `
profiles:
  - name: otherbank
    fields:
      date: ["  Booking Date "]
      income: [Credit]
      expense: [Debit]
      description: [Details]
    required: [date, income, expense]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	p := profiles["otherbank"]
	assert.Equal(t, []string{"booking date"}, p.Fields[FieldDate])

	parser, err := NewParser(profiles, "otherbank")
	require.NoError(t, err)
	got, err := parser.ParseRows([]Row{
		{"Booking Date", "Credit", "Debit", "Details"},
		{"2026-03-01", nil, "12.50", "Groceries"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Expense, got[0].Type)
}

func TestLoadProfiles_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown key":      "profiles:\n  - name: x\n    colour: red\n",
		"no date labels":   "profiles:\n  - name: x\n    fields:\n      income: [a]\n",
		"required unbound": "profiles:\n  - name: x\n    fields:\n      date: [d]\n    required: [income]\n",
		"duplicate":        "profiles:\n  - name: x\n    fields:\n      date: [d]\n  - name: x\n    fields:\n      date: [d]\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := decodeProfiles([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadProfiles_EmptyPathUsesDefaults(t *testing.T) {
	profiles, err := LoadProfiles("")
	require.NoError(t, err)
	assert.Contains(t, profiles, DefaultProfile)
}

func TestNewParser_UnknownProfile(t *testing.T) {
	_, err := NewParser(map[string]Profile{}, "nope")
	assert.Error(t, err)
}
