package leadimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// RawRow is one CSV data row keyed by canonical field. Only mapped,
// non-empty cells are present; unmapped columns are dropped here.
type RawRow map[CanonicalField]string

// MissingHeaderError aborts an import whose header row, once
// normalized, does not cover every required canonical field. No rows
// are processed on this path.
type MissingHeaderError struct {
	Missing []CanonicalField
}

func (e *MissingHeaderError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("missing required columns: %s", strings.Join(names, ", "))
}

// Parse reads a CSV stream, maps the header row to canonical fields,
// and returns the data rows in file order. Blank lines are skipped.
// Fails fast with *MissingHeaderError when a required field has no
// column.
func Parse(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("file is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	mapping := MapColumns(header)
	if missing := mapping.MissingRequired(); len(missing) > 0 {
		return nil, &MissingHeaderError{Missing: missing}
	}

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed rows get dropped, same silent-drop contract as
			// validation failures. A read error from the stream itself
			// would repeat forever, so it aborts the parse instead.
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("read row: %w", err)
			}
			continue
		}
		if isBlankRow(record) {
			continue
		}

		row := make(RawRow, len(mapping.FieldMap))
		for i, val := range record {
			field, mapped := mapping.FieldMap[i]
			if !mapped {
				continue
			}
			val = strings.TrimSpace(val)
			if val == "" {
				continue
			}
			row[field] = val
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func isBlankRow(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// stripBOM wraps a reader to strip a UTF-8 BOM if present.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, err := r.Read(buf)
	if err != nil || n < 3 {
		return io.MultiReader(strings.NewReader(string(buf[:n])), r)
	}
	if buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}
