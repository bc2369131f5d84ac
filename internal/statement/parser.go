package statement

import "fmt"

// Parser turns a bank export into candidate transactions. It holds no state
// beyond its profile and is safe for concurrent use.
type Parser struct {
	Profile Profile
}

// NewParser returns a parser for the named profile.
func NewParser(profiles map[string]Profile, name string) (*Parser, error) {
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown bank profile %q", name)
	}
	return &Parser{Profile: p}, nil
}

// Parse reads the workbook in data and returns its transactions in sheet
// order. An empty result is not an error.
func (p *Parser) Parse(data []byte) ([]Candidate, error) {
	sheet, err := ReadWorkbook(data)
	if err != nil {
		return nil, err
	}
	return p.ParseRows(sheet.Rows)
}

// columns holds the resolved index of each field; -1 means unmapped.
type columns struct {
	date, income, expense, desc int
}

// ParseRows runs header location, column validation and row classification
// over rows that have already been read.
func (p *Parser) ParseRows(rows []Row) ([]Candidate, error) {
	header, err := LocateHeader(rows, p.Profile)
	if err != nil {
		return nil, err
	}
	cols, err := p.resolve(header)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, row := range rows[header.Row+1:] {
		date, hasDate := ParseDate(cell(row, cols.date))
		if !hasDate {
			continue
		}
		var income, expense Amount
		income.Value, income.Valid = ParseAmount(cell(row, cols.income))
		expense.Value, expense.Valid = ParseAmount(cell(row, cols.expense))

		if c, ok := Classify(date, hasDate, income, expense, description(cell(row, cols.desc))); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (p *Parser) resolve(h Header) (columns, error) {
	var missing []string
	for _, f := range p.Profile.Required {
		if _, ok := h.Index(p.Profile, f); !ok {
			missing = append(missing, p.Profile.Label(f))
		}
	}
	if len(missing) > 0 {
		return columns{}, missingColumns(missing)
	}

	var cols columns
	cols.date, _ = h.Index(p.Profile, FieldDate)
	cols.income, _ = h.Index(p.Profile, FieldIncome)
	cols.expense, _ = h.Index(p.Profile, FieldExpense)
	if idx, ok := h.Index(p.Profile, FieldDescriptionFull); ok {
		cols.desc = idx
	} else {
		cols.desc, _ = h.Index(p.Profile, FieldDescription)
	}
	return cols, nil
}

// cell returns the value at idx, or nil when the row is shorter than the
// header or the column is unmapped.
func cell(row Row, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}
