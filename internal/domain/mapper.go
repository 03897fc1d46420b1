package domain

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Source header names shared by every product.
const (
	HeaderDate               = "Date(dd:mm:yyyy)"
	HeaderTime               = "Time(hh:mm:ss)"
	HeaderLastProcessingDate = "Last_Processing_Date(dd:mm:yyyy)"
	HeaderAeronetNumber      = "AERONET_Number"
	HeaderMicrotopsNumber    = "Microtops_Number"
	HeaderObservations       = "Number_of_Observations"
)

var (
	errEmpty      = errors.New("empty value")
	errDateFormat = errors.New("want dd:mm:yyyy")
	errWKT        = errors.New("want POINT(lon lat)")
)

// MapRow converts a normalized row into the typed record for its dataset.
//
// Measurements that are absent or unparseable become [Missing]. Nullable
// fields become nil. A required field (date, time, coordinates, and the AOD
// last processing date) that cannot be parsed fails the whole record with a
// *FieldError.
func MapRow(row NormalizedRow) (Record, error) {
	schema := row.Dataset.Schema()
	rec := NewRecord(schema)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnclassified, row.Dataset)
	}

	obs := rec.Common()
	if err := mapObservation(obs, row, schema); err != nil {
		return nil, err
	}
	for _, f := range rec.Fields() {
		*f.Value = ParseFloatOrMissing(row.Get(f.Header))
	}
	obs.Key = RecordKey(schema, obs)
	return rec, nil
}

func mapObservation(obs *Observation, row NormalizedRow, schema Schema) error {
	var err error
	if obs.Date, err = ParseDate(row.Get(HeaderDate)); err != nil {
		return &FieldError{Field: HeaderDate, Value: row.Get(HeaderDate), Err: err}
	}
	if obs.Time, err = parseClock(row.Get(HeaderTime)); err != nil {
		return &FieldError{Field: HeaderTime, Value: row.Get(HeaderTime), Err: err}
	}
	if obs.Coordinates, err = rowPoint(row); err != nil {
		return &FieldError{Field: ColumnCoordinates, Value: row.Get(ColumnCoordinates), Err: err}
	}

	processed, err := ParseDate(row.Get(HeaderLastProcessingDate))
	switch {
	case err == nil:
		obs.LastProcessingDate = &processed
	case schema.Family() == FamilyAOD:
		return &FieldError{Field: HeaderLastProcessingDate, Value: row.Get(HeaderLastProcessingDate), Err: err}
	}

	obs.AeronetNumber = parseIntOrNil(row.Get(HeaderAeronetNumber))
	obs.MicrotopsNumber = parseIntOrNil(row.Get(HeaderMicrotopsNumber))
	if schema.Family() == FamilyAOD {
		obs.AeronetNumber = orZero(obs.AeronetNumber)
		obs.MicrotopsNumber = orZero(obs.MicrotopsNumber)
	}
	if schema.Aggregated() {
		obs.Observations = parseIntOrNil(row.Get(HeaderObservations))
	}

	obs.Level = row.Dataset.Level
	obs.Site = NormalizeText(row.Get(ColumnSite))
	obs.Operator = NormalizeText(row.Get(ColumnOperator))
	obs.OperatorEmail = NormalizeText(row.Get(ColumnOperatorEmail))
	obs.SourceFile = filepath.Base(row.Path)
	return nil
}

// ReformatDate rewrites "dd:mm:yyyy" as "yyyy-mm-dd".
func ReformatDate(s string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return "", errDateFormat
	}
	return fmt.Sprintf("%s-%s-%s", parts[2], parts[1], parts[0]), nil
}

// ParseDate parses a "dd:mm:yyyy" date as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, errEmpty
	}
	iso, err := ReformatDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.DateOnly, iso)
}

func parseClock(s string) (string, error) {
	if s == "" {
		return "", errEmpty
	}
	t, err := time.Parse(time.TimeOnly, s)
	if err != nil {
		return "", err
	}
	return t.Format(time.TimeOnly), nil
}

// ParsePoint parses "POINT(lon lat)".
func ParsePoint(s string) (Point, error) {
	s = strings.TrimSpace(s)
	inner, ok := strings.CutPrefix(s, "POINT(")
	if !ok {
		return Point{}, errWKT
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return Point{}, errWKT
	}
	parts := strings.Fields(inner)
	if len(parts) != 2 {
		return Point{}, errWKT
	}
	lon, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Point{}, fmt.Errorf("longitude: %w", err)
	}
	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Point{}, fmt.Errorf("latitude: %w", err)
	}
	return Point{Lon: lon, Lat: lat}, nil
}

// rowPoint reads the collapsed Coordinates column, or the raw Longitude and
// Latitude columns when the row was not reshaped.
func rowPoint(row NormalizedRow) (Point, error) {
	if wkt := row.Get(ColumnCoordinates); wkt != "" {
		return ParsePoint(wkt)
	}
	lon, lat := row.Get(ColumnLongitude), row.Get(ColumnLatitude)
	if lon == "" || lat == "" {
		return Point{}, errEmpty
	}
	return ParsePoint(fmt.Sprintf("POINT(%s %s)", lon, lat))
}

// ParseFloatOrMissing parses s as float64, returning [Missing] on failure.
func ParseFloatOrMissing(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return v
}

func parseIntOrNil(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Counters are occasionally written as floats ("12.0").
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return nil
		}
		v = int(f)
	}
	if v == int(Missing) {
		return nil
	}
	return &v
}

func orZero(p *int) *int {
	if p != nil {
		return p
	}
	zero := 0
	return &zero
}
