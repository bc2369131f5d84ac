package statement

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Row is one spreadsheet row. Cells are nil (empty), string, float64 for
// numeric .xlsx cells or time.Time for date-formatted numeric cells.
type Row []any

// Sheet is the ordered content of the sheet a statement is read from.
type Sheet struct {
	Name string
	Rows []Row
}

var (
	xlsxMagic = []byte("PK\x03\x04")
	xlsMagic  = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// ReadWorkbook opens an .xlsx or legacy .xls payload and returns its active
// sheet. The format is detected from the content, not the file name.
func ReadWorkbook(data []byte) (Sheet, error) {
	switch {
	case bytes.HasPrefix(data, xlsxMagic):
		return readXLSX(data)
	case bytes.HasPrefix(data, xlsMagic):
		return readXLS(data)
	default:
		return Sheet{}, unreadable(errors.New("formato non riconosciuto"))
	}
}

func readXLSX(data []byte) (Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, unreadable(err)
	}
	defer f.Close()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	if name == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Sheet{}, unreadable(errors.New("nessun foglio"))
		}
		name = sheets[0]
	}

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, unreadable(fmt.Errorf("reading sheet %s: %w", name, err))
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	styles := map[int]bool{}
	rows := make([]Row, len(raw))
	for i, cells := range raw {
		row := make(Row, len(cells))
		for j, v := range cells {
			row[j] = xlsxCell(f, name, i, j, v, date1904, styles)
		}
		rows[i] = row
	}
	return Sheet{Name: name, Rows: rows}, nil
}

// xlsxCell types a raw cell value. Only cells stored as numbers become
// float64; text stays as written. Numeric cells whose style is a date format
// become time.Time; styles caches the date check per style id.
func xlsxCell(f *excelize.File, sheet string, row, col int, v string, date1904 bool, styles map[int]bool) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return v
	}
	switch typ, err := f.GetCellType(sheet, axis); {
	case err != nil:
		return v
	case typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber:
		return v
	}
	n, ok := parseNumber(v)
	if !ok {
		return v
	}

	styleID, err := f.GetCellStyle(sheet, axis)
	if err != nil {
		return n
	}
	isDate, ok := styles[styleID]
	if !ok {
		isDate = isDateStyle(f, styleID)
		styles[styleID] = isDate
	}
	if !isDate {
		return n
	}
	t, err := excelize.ExcelDateToTime(n, date1904)
	if err != nil {
		return n
	}
	return t
}

func isDateStyle(f *excelize.File, styleID int) bool {
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	switch {
	case style.NumFmt >= 14 && style.NumFmt <= 22,
		style.NumFmt >= 45 && style.NumFmt <= 47:
		return true
	case style.CustomNumFmt != nil:
		return isDateFormatCode(*style.CustomNumFmt)
	}
	return false
}

// isDateFormatCode reports whether a custom number format renders a date:
// it contains a day or year token outside quoted text and [..] sections.
func isDateFormatCode(code string) bool {
	var quoted, bracket bool
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		case r == 'd' || r == 'y':
			return true
		}
	}
	return false
}

func readXLS(data []byte) (Sheet, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return Sheet{}, unreadable(err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return Sheet{}, unreadable(errors.New("nessun foglio"))
	}
	ws := wb.GetSheet(0)
	if ws == nil || ws.MaxRow == 0 {
		return Sheet{Name: sheetName(ws)}, nil
	}

	// ReadAllCells walks sheets in order; capping it at the first sheet's row
	// count keeps the result to that sheet.
	raw := wb.ReadAllCells(int(ws.MaxRow) + 1)
	rows := make([]Row, len(raw))
	for i, cells := range raw {
		row := make(Row, len(cells))
		for j, v := range cells {
			row[j] = xlsCell(v)
		}
		rows[i] = row
	}
	return Sheet{Name: ws.Name, Rows: rows}, nil
}

func sheetName(ws *xls.WorkSheet) string {
	if ws == nil {
		return ""
	}
	return ws.Name
}

// xlsCell types a cell of a legacy workbook. The xls reader renders every
// cell as text and keeps no cell types, so values stay strings: numbers are
// left to ParseAmount and date cells arrive as RFC 3339 text for ParseDate.
func xlsCell(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func parseNumber(v string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Inspect returns the sheet name and the first n rows as text, for diagnosing
// exports whose header cannot be located.
func Inspect(data []byte, n int) (string, [][]string, error) {
	sheet, err := ReadWorkbook(data)
	if err != nil {
		return "", nil, err
	}
	if n < 0 {
		n = 0
	}
	if n > len(sheet.Rows) {
		n = len(sheet.Rows)
	}
	out := make([][]string, 0, n)
	for _, row := range sheet.Rows[:n] {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = cellText(c)
		}
		out = append(out, cells)
	}
	return sheet.Name, out, nil
}

// cellText renders a cell the way a user would read it in the sheet.
func cellText(c any) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(v)
	}
}
