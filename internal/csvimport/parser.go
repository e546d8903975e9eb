// Package csvimport turns uploaded catalog files into content records.
//
// The scanner is deliberately lenient: it never fails, a quote seen
// outside a quoted field opens quoting, and short or malformed input
// simply yields no records. Callers decide what "nothing to import"
// means for them.
package csvimport

import "strings"

// Column headers recognised in the first row. Matching is exact and
// case-sensitive after trimming.
const (
	ColNo          = "No"
	ColTitre       = "Titre"
	ColAuteur      = "Auteur"
	ColDescription = "Description"
)

// Record is one catalog row. A nil field was absent from the source
// (missing column or empty cell) and is omitted on the wire.
type Record struct {
	No          *string `json:"no,omitempty"`
	Titre       *string `json:"titre,omitempty"`
	Auteur      *string `json:"auteur,omitempty"`
	Description *string `json:"description,omitempty"`
}

// IsBlank reports whether none of the record's fields is set.
func (r Record) IsBlank() bool {
	return r.No == nil && r.Titre == nil && r.Auteur == nil && r.Description == nil
}

// Parse converts raw file text into records. It is a pure function of
// its input and returns an empty slice when the text holds no header
// plus at least one data row.
func Parse(text string) []Record {
	return RecordsFromRows(SplitRows(text))
}

// SplitRows scans text once, left to right, and returns its non-blank
// rows with every field trimmed.
//
// Commas and line breaks inside double quotes are kept in the field.
// Inside quotes a doubled quote ("") is a literal quote. CRLF counts as
// a single line break.
func SplitRows(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	closeField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}
	closeRow := func() {
		closeField()
		if hasValue(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes

		case c == ',' && !inQuotes:
			closeField()

		case (c == '\n' || c == '\r') && !inQuotes:
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			closeRow()

		default:
			field.WriteByte(c)
		}
	}

	if field.Len() > 0 || len(row) > 0 {
		closeRow()
	}

	return rows
}

// RecordsFromRows resolves the header (first row) and builds one record
// per remaining row. Fewer than two rows yields an empty result.
// Ragged rows are used as-is: a column past the end of a row is absent.
func RecordsFromRows(rows [][]string) []Record {
	if len(rows) < 2 {
		return []Record{}
	}

	header := rows[0]
	var (
		noIdx    = columnIndex(header, ColNo)
		titreIdx = columnIndex(header, ColTitre)
		authIdx  = columnIndex(header, ColAuteur)
		descIdx  = columnIndex(header, ColDescription)
	)

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if !hasValue(row) {
			continue
		}
		records = append(records, Record{
			No:          cell(row, noIdx),
			Titre:       cell(row, titreIdx),
			Auteur:      cell(row, authIdx),
			Description: cell(row, descIdx),
		})
	}
	return records
}

// NonBlank returns the records that have at least one field set.
func NonBlank(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.IsBlank() {
			out = append(out, r)
		}
	}
	return out
}

// columnIndex returns the position of name in header, or -1.
func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) *string {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	v := strings.TrimSpace(row[idx])
	if v == "" {
		return nil
	}
	return &v
}

func hasValue(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return true
		}
	}
	return false
}
