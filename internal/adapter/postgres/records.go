package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/domain"
)

// recordArgs returns the parameters of insertRecordSQL for rec, in column order.
func recordArgs(rec domain.Record) ([]any, error) {
	schema := rec.Schema()
	obs := rec.Common()

	clock, err := timeOfDay(obs.Time)
	if err != nil {
		return nil, fmt.Errorf("record %s time %q: %w", obs.Key, obs.Time, err)
	}

	args := []any{
		obs.Key,
		obs.Site,
		int16(obs.Level),
		pgtype.Date{Time: obs.Date, Valid: true},
		clock,
		optionalDate(obs.LastProcessingDate),
		obs.Coordinates.Lon,
		obs.Coordinates.Lat,
		obs.Coordinates.WKT(),
		obs.AeronetNumber,
		obs.MicrotopsNumber,
	}
	if schema.Aggregated() {
		args = append(args, obs.Observations)
	}
	args = append(args, obs.Operator, obs.OperatorEmail, obs.SourceFile)
	for _, f := range rec.Fields() {
		args = append(args, *f.Value)
	}
	return args, nil
}

func timeOfDay(s string) (pgtype.Time, error) {
	t, err := time.Parse(time.TimeOnly, s)
	if err != nil {
		return pgtype.Time{}, err
	}
	d := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
	return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}, nil
}

func optionalDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func spanValue(span domain.DateSpan) []pgtype.Date {
	if span.Empty() {
		return nil
	}
	return []pgtype.Date{
		{Time: *span.Start, Valid: true},
		{Time: *span.End, Valid: true},
	}
}

func spanFrom(start, end pgtype.Date) domain.DateSpan {
	if !start.Valid || !end.Valid {
		return domain.DateSpan{}
	}
	s, e := start.Time, end.Time
	return domain.DateSpan{Start: &s, End: &e}
}
