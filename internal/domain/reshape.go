package domain

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// NormalizedRow maps canonical column names to raw cell values for one data
// line of a raw file.
type NormalizedRow struct {
	Dataset Dataset
	Path    string
	Line    int
	Values  map[string]string
}

// Get returns the trimmed value for column, or "" when the column is absent.
func (r NormalizedRow) Get(column string) string {
	return strings.TrimSpace(r.Values[column])
}

// Table is the normalized form of one raw file.
type Table struct {
	File    RawFile
	Columns []string
	Rows    []NormalizedRow
	// Rejected holds rows that failed independently of their siblings.
	Rejected []*RowError
}

// Reshape splits the data lines of a decoded raw file positionally against the
// header's column line and appends the derived columns to every row.
//
// A row whose field count differs from the header is rejected on its own; the
// rest of the file is still reshaped. Reshape fails only when the header has
// no column line.
func Reshape(text string, file RawFile, hdr Header) (Table, error) {
	if len(hdr.Columns) == 0 {
		return Table{}, fmt.Errorf("%w: no column header in %s", ErrHeaderExtraction, file.Path)
	}

	site := hdr.Metadata.Site
	if site == "" {
		site = NormalizeText(file.Label)
	}
	level := file.Dataset.Level.String()

	t := Table{File: file, Columns: hdr.CanonicalColumns()}
	lines := strings.Split(text, "\n")
	for i := preambleLines; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		lineNo := i + 1
		fields := strings.Split(line, ",")
		if len(fields) != len(hdr.Columns) {
			t.Rejected = append(t.Rejected, &RowError{
				Line: lineNo,
				Err:  fmt.Errorf("%w: got %d fields, want %d", ErrRowShape, len(fields), len(hdr.Columns)),
			})
			continue
		}

		values := make(map[string]string, len(t.Columns))
		var lat, lon string
		for j, col := range hdr.Columns {
			v := strings.TrimSpace(fields[j])
			switch col {
			case ColumnLatitude:
				lat = v
			case ColumnLongitude:
				lon = v
			default:
				values[col] = v
			}
		}
		if lat != "" || lon != "" {
			values[ColumnCoordinates] = fmt.Sprintf("POINT(%s %s)", lon, lat)
		}
		values[ColumnSite] = site
		values[ColumnLevel] = level
		values[ColumnOperator] = hdr.Metadata.Operator
		values[ColumnOperatorEmail] = hdr.Metadata.OperatorEmail

		t.Rows = append(t.Rows, NormalizedRow{
			Dataset: file.Dataset,
			Path:    file.Path,
			Line:    lineNo,
			Values:  values,
		})
	}
	return t, nil
}

// WriteCSV writes the table as a header-first comma separated file.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			record[i] = row.Values[col]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write line %d: %w", row.Line, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
