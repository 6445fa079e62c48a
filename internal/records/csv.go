package records

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Table is a parsed CSV document: the header row plus string-only data rows.
type Table struct {
	Header []string
	Rows   []Row
}

// Row is a single data record in CSV column order.
type Row struct {
	// Line is the 1-based source line of the record.
	Line   int
	Values []string
}

// Get returns the trimmed value at position i, or "" for short rows.
func (r Row) Get(i int) string {
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return r.Values[i]
}

// Blank reports whether every field in the row is empty.
func (r Row) Blank() bool {
	for _, v := range r.Values {
		if v != "" {
			return false
		}
	}
	return true
}

// ParseCSV reads CSV text with a mandatory header row. Fields are trimmed and
// kept as strings; ragged rows are tolerated. A UTF-8 BOM is dropped and input
// that is not valid UTF-8 is decoded as Windows-1252.
func ParseCSV(text string) (Table, error) {
	decoded, err := decodeText(text)
	if err != nil {
		return Table{}, err
	}

	reader := csv.NewReader(strings.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var table Table
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("records: read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if table.Header == nil {
			table.Header = record
			continue
		}
		row := Row{Line: line, Values: record}
		if row.Blank() {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	if table.Header == nil {
		return Table{}, fmt.Errorf("records: csv has no header row")
	}
	return table, nil
}

func decodeText(text string) (string, error) {
	if !utf8.ValidString(text) {
		out, err := charmap.Windows1252.NewDecoder().String(text)
		if err != nil {
			return "", fmt.Errorf("records: decode windows-1252: %w", err)
		}
		return out, nil
	}
	reader := transform.NewReader(bytes.NewReader([]byte(text)), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	out, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("records: decode utf-8: %w", err)
	}
	return string(out), nil
}
