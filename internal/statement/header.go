package statement

// ColumnMap maps a normalized header label to its zero-based column index.
type ColumnMap map[string]int

// Header is the located header row of a statement.
type Header struct {
	Row     int
	Columns ColumnMap
}

// LocateHeader returns the first row that carries one of the profile's date
// labels. Labels compare after trimming and lowercasing; a label embedded in a
// longer cell does not match.
func LocateHeader(rows []Row, p Profile) (Header, error) {
	for i, row := range rows {
		labels := make([]string, len(row))
		for j, c := range row {
			labels[j] = normalizeLabel(cellText(c))
		}
		if !containsAny(labels, p.Fields[FieldDate]) {
			continue
		}
		cols := make(ColumnMap, len(labels))
		for j, l := range labels {
			if l != "" {
				cols[l] = j
			}
		}
		return Header{Row: i, Columns: cols}, nil
	}
	return Header{}, headerNotFound(p)
}

// Index resolves a canonical field to its column through the profile's
// synonyms, in the profile's order.
func (h Header) Index(p Profile, f Field) (int, bool) {
	for _, label := range p.Fields[f] {
		if idx, ok := h.Columns[label]; ok {
			return idx, true
		}
	}
	return -1, false
}

func containsAny(labels, want []string) bool {
	for _, l := range labels {
		for _, w := range want {
			if l == w {
				return true
			}
		}
	}
	return false
}
