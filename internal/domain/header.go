package domain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Preamble layout (zero-based line indexes).
const (
	lineDescription = 0
	lineCruise      = 1
	lineNotice      = 2
	lineOperator    = 3
	lineColumns     = 4
	preambleLines   = 5
)

// Derived columns appended to every normalized row.
const (
	ColumnLatitude      = "Latitude"
	ColumnLongitude     = "Longitude"
	ColumnCoordinates   = "Coordinates"
	ColumnSite          = "Site"
	ColumnLevel         = "Level"
	ColumnOperator      = "Operator"
	ColumnOperatorEmail = "OperatorEmail"
)

var derivedColumns = []string{ColumnCoordinates, ColumnSite, ColumnLevel, ColumnOperator, ColumnOperatorEmail}

// FileMetadata is the non-tabular metadata recovered from a file preamble.
type FileMetadata struct {
	Site          string
	Operator      string
	OperatorEmail string
}

// Header is the decoded preamble of a raw file.
type Header struct {
	Metadata FileMetadata
	// Description holds the two descriptive preamble lines (1 and 3).
	Description [2]string
	// Columns are the raw column header tokens from line 5.
	Columns []string
	// Latin1 reports that at least one preamble line was not valid UTF-8.
	Latin1 bool
}

// CanonicalColumns returns the normalized column list: Latitude and Longitude
// collapse into Coordinates and the derived columns are appended.
func (h Header) CanonicalColumns() []string {
	return CanonicalColumns(h.Columns)
}

// CanonicalColumns normalizes a raw column header.
func CanonicalColumns(raw []string) []string {
	out := make([]string, 0, len(raw)+len(derivedColumns))
	for _, c := range raw {
		if c == ColumnLatitude || c == ColumnLongitude {
			continue
		}
		out = append(out, c)
	}
	return append(out, derivedColumns...)
}

// ExtractHeader reads at most the five preamble lines from r.
//
// The returned Header is always usable. A non-nil error wraps
// ErrHeaderExtraction and describes which parts could not be recovered; the
// affected metadata fields are left empty. Callers log it and keep going.
func ExtractHeader(r io.Reader) (Header, error) {
	br := bufio.NewReader(r)
	lines := make([]string, 0, preambleLines)
	latin1 := false
	for len(lines) < preambleLines {
		raw, err := br.ReadBytes('\n')
		if len(raw) > 0 {
			text, fallback := DecodeText(raw)
			latin1 = latin1 || fallback
			lines = append(lines, strings.TrimRight(text, "\r\n"))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Header{Latin1: latin1}, fmt.Errorf("%w: read preamble: %w", ErrHeaderExtraction, err)
		}
	}
	h, err := parsePreamble(lines)
	h.Latin1 = latin1
	return h, err
}

// parsePreamble fills a Header from already decoded lines. Only the first
// five lines are inspected.
func parsePreamble(lines []string) (Header, error) {
	var h Header
	var problems []string

	if len(lines) > lineDescription {
		h.Description[0] = strings.TrimSpace(lines[lineDescription])
	}
	if len(lines) > lineNotice {
		h.Description[1] = strings.TrimSpace(lines[lineNotice])
	}

	if len(lines) > lineCruise {
		h.Metadata.Site = NormalizeText(strings.SplitN(lines[lineCruise], ",", 2)[0])
	}
	if h.Metadata.Site == "" {
		problems = append(problems, "missing cruise line")
	}

	if len(lines) > lineOperator {
		name, email, err := parseOperator(lines[lineOperator])
		h.Metadata.Operator = name
		h.Metadata.OperatorEmail = email
		if err != nil {
			problems = append(problems, err.Error())
		}
	} else {
		problems = append(problems, "missing operator line")
	}

	if len(lines) > lineColumns {
		h.Columns = splitColumns(lines[lineColumns])
	} else {
		problems = append(problems, fmt.Sprintf("preamble has %d lines, want %d", len(lines), preambleLines))
	}

	if len(problems) > 0 {
		return h, fmt.Errorf("%w: %s", ErrHeaderExtraction, strings.Join(problems, "; "))
	}
	return h, nil
}

// parseOperator splits "PI=<name>,Email=<address>".
func parseOperator(line string) (name, email string, err error) {
	line = strings.TrimSpace(line)
	if _, rest, ok := strings.Cut(line, "="); ok {
		n, _, _ := strings.Cut(rest, ",")
		name = NormalizeText(n)
	}
	_, addr, ok := strings.Cut(line, ",Email=")
	if !ok {
		return name, "", fmt.Errorf("operator line %q has no Email= marker", line)
	}
	return name, NormalizeText(addr), nil
}

func splitColumns(line string) []string {
	parts := strings.Split(strings.TrimSpace(line), ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// NormalizeText trims s and replaces commas with semicolons so the value fits
// a single-valued text column and a comma separated artifact.
func NormalizeText(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", ";")
}

// DecodeText decodes b as UTF-8, falling back to ISO 8859-1 when b is not
// valid UTF-8. The boolean reports whether the fallback was used.
func DecodeText(b []byte) (string, bool) {
	if utf8.Valid(b) {
		return string(b), false
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		// ISO 8859-1 assigns every byte; keep the bytes verbatim regardless.
		return string(b), true
	}
	return string(out), true
}
