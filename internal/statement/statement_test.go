package statement

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fineco(t *testing.T) *Parser {
	t.Helper()
	profiles, err := DefaultProfiles()
	require.NoError(t, err)
	p, err := NewParser(profiles, DefaultProfile)
	require.NoError(t, err)
	return p
}

// workbook writes rows to the first sheet of a new .xlsx file and returns its bytes.
func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", axis, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// finecoExport mimics a Fineco export: a metadata preamble, the header on
// row index 13 and the given data rows.
func finecoExport(header []any, data ...[]any) [][]any {
	rows := [][]any{
		{"Conto Corrente: 1234567"},
		{"Intestato a: Mario Rossi"},
		{},
		{"Periodo dal 01/02/2026 al 28/02/2026"},
	}
	for len(rows) < 13 {
		rows = append(rows, []any{})
	}
	rows = append(rows, header)
	return append(rows, data...)
}

var finecoHeader = []any{"Data_Operazione", "Data_Valuta", "Entrate", "Uscite", "Descrizione", "Descrizione_Completa", "Stato"}

func TestParse_SingleExpenseScenario(t *testing.T) {
	data := workbook(t, finecoExport(
		[]any{"Data_Operazione", "Entrate", "Uscite", "Descrizione"},
		[]any{"2026-02-25", "", "-5.95", "Coffee shop"},
	))

	got, err := fineco(t).Parse(data)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, Expense, got[0].Type)
	assert.Equal(t, "5.95", got[0].Amount.String())
	require.NotNil(t, got[0].Description)
	assert.Equal(t, "Coffee shop", *got[0].Description)
	assert.Equal(t, "2026-02-25", got[0].Date.Format("2006-01-02"))
}

func TestParse_DateCellsAndFullDescription(t *testing.T) {
	day := time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)
	data := workbook(t, finecoExport(finecoHeader,
		[]any{day, day, 1234.56, nil, "Bonifico", "Bonifico da ACME SRL stipendio", "Contabilizzato"},
		[]any{day.AddDate(0, 0, 1), day, nil, -5.95, "Pagamento", "   ", "Contabilizzato"},
		[]any{"Saldo finale", nil, nil, nil, nil, nil, nil},
	))

	got, err := fineco(t).Parse(data)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, Income, got[0].Type)
	assert.Equal(t, "1234.56", got[0].Amount.String())
	assert.True(t, day.Equal(got[0].Date))
	require.NotNil(t, got[0].Description)
	assert.Equal(t, "Bonifico da ACME SRL stipendio", *got[0].Description)

	assert.Equal(t, Expense, got[1].Type)
	assert.Equal(t, "2026-02-26", got[1].Date.Format("2006-01-02"))
	assert.Nil(t, got[1].Description, "blank full description is no description")
}

func TestParse_SpaceSeparatedLabels(t *testing.T) {
	data := workbook(t, [][]any{
		{"  DATA OPERAZIONE ", "Entrate", "Uscite", "Descrizione"},
		{"25/02/2026", "1.234,56", "", "Stipendio"},
	})

	got, err := fineco(t).Parse(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1234.56", got[0].Amount.String())
	assert.Equal(t, Income, got[0].Type)
}

func TestParse_HeaderNotFound(t *testing.T) {
	data := workbook(t, [][]any{
		{"Data", "Entrate", "Uscite", "Descrizione"},
		{"2026-02-25", "", "-5.95", "Coffee shop"},
	})

	_, err := fineco(t).Parse(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHeaderNotFound))

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "Conto > Movimenti")
}

func TestParse_SubstringLabelDoesNotMatch(t *testing.T) {
	data := workbook(t, [][]any{
		{"Data_Operazione_Originale", "Entrate", "Uscite", "Descrizione"},
		{"2026-02-25", "", "-5.95", "Coffee shop"},
	})

	_, err := fineco(t).Parse(data)
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestParse_MissingColumns(t *testing.T) {
	data := workbook(t, [][]any{
		{"Data_Operazione", "Entrate", "Note"},
		{"2026-02-25", "10", "x"},
	})

	_, err := fineco(t).Parse(data)
	require.ErrorIs(t, err, ErrMissingColumns)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, []string{"uscite", "descrizione"}, perr.Missing)
	assert.Contains(t, perr.Message, "uscite, descrizione")
}

func TestParse_RowWithoutAmountsIsSkipped(t *testing.T) {
	data := workbook(t, finecoExport(finecoHeader,
		[]any{"2026-02-25", "2026-02-25", "", "", "Nota", "", ""},
	))

	got, err := fineco(t).Parse(data)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParse_UnparseableDateDropsExactlyOneRow(t *testing.T) {
	rows := func(date any) [][]any {
		return finecoExport(finecoHeader,
			[]any{"2026-02-24", nil, "100", nil, "A", nil, nil},
			[]any{date, nil, nil, "-20", "B", nil, nil},
			[]any{"2026-02-26", nil, nil, "-3,50", "C", nil, nil},
		)
	}

	good, err := fineco(t).Parse(workbook(t, rows("2026-02-25")))
	require.NoError(t, err)
	bad, err := fineco(t).Parse(workbook(t, rows("31/31/2026")))
	require.NoError(t, err)

	assert.Len(t, good, 3)
	assert.Len(t, bad, len(good)-1)
}

func TestParse_IncomeWinsWhenBothColumnsSet(t *testing.T) {
	data := workbook(t, finecoExport(finecoHeader,
		[]any{"2026-02-25", nil, "50", "-20", "Storno", nil, nil},
	))

	got, err := fineco(t).Parse(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Income, got[0].Type)
	assert.Equal(t, "50", got[0].Amount.String())
}

func TestParse_Unreadable(t *testing.T) {
	_, err := fineco(t).Parse([]byte("Data_Operazione;Entrate;Uscite\n"))
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestInspect(t *testing.T) {
	data := workbook(t, finecoExport(finecoHeader))

	name, rows, err := Inspect(data, 15)
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", name)
	require.Len(t, rows, 14)
	assert.Equal(t, "Conto Corrente: 1234567", rows[0][0])
	assert.Equal(t, "Data_Operazione", rows[13][0])
}

func legacyWorkbook(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "fineco.xls"))
	require.NoError(t, err)
	return data
}

func TestParse_LegacyWorkbook(t *testing.T) {
	got, err := fineco(t).Parse(legacyWorkbook(t))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, Income, got[0].Type)
	assert.Equal(t, "1234.56", got[0].Amount.String())
	assert.Equal(t, "2026-02-25", got[0].Date.Format("2006-01-02"))
	require.NotNil(t, got[0].Description)
	assert.Equal(t, "Bonifico da ACME SRL stipendio", *got[0].Description)

	assert.Equal(t, Expense, got[1].Type)
	assert.Equal(t, "5.95", got[1].Amount.String())
	assert.Equal(t, "2026-02-26", got[1].Date.Format("2006-01-02"))

	assert.Equal(t, Expense, got[2].Type)
	assert.Equal(t, "3.5", got[2].Amount.String())
	assert.Equal(t, "2026-02-27", got[2].Date.Format("2006-01-02"))
}

func TestInspect_LegacyWorkbook(t *testing.T) {
	name, rows, err := Inspect(legacyWorkbook(t), 8)
	require.NoError(t, err)
	assert.Equal(t, "Movimenti", name)
	require.Len(t, rows, 8)
	assert.Equal(t, "Conto Corrente: 1234567", rows[0][0])
	assert.Empty(t, rows[2])
	assert.Equal(t, "Data_Operazione", rows[6][0])
	assert.Equal(t, "2026-02-25T00:00:00Z", rows[7][0])
	assert.Equal(t, "1234.56", rows[7][2])
}

func TestParse_TextCellsKeepTheirDigits(t *testing.T) {
	data := workbook(t, finecoExport(finecoHeader,
		[]any{"2026-02-25", nil, "12345678901234567.89", nil, "Bonifico", "00123", nil},
	))

	got, err := fineco(t).Parse(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "12345678901234567.89", got[0].Amount.String())
	require.NotNil(t, got[0].Description)
	assert.Equal(t, "00123", *got[0].Description)

	_, rows, err := Inspect(data, 15)
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567.89", rows[14][2])
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"dd/mm/yyyy", true},
		{"yyyy-mm-dd hh:mm:ss", true},
		{"#,##0.00", false},
		{"[Red]#,##0.00", false},
		{`0.00" days"`, false},
		{"[$-410]d mmmm yyyy", true},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormatCode(tt.code))
		})
	}
}
