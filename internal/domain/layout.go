package domain

// SourceColumns returns the raw column header a well-formed file of schema
// carries on its fifth preamble line.
func SourceColumns(schema Schema) []string {
	rec := NewRecord(schema)
	if rec == nil {
		return nil
	}
	fields := rec.Fields()

	cols := []string{HeaderDate, HeaderTime, fields[0].Header, ColumnLatitude, ColumnLongitude}
	for _, f := range fields[1:] {
		cols = append(cols, f.Header)
	}
	if schema.Aggregated() {
		cols = append(cols, HeaderObservations)
	}
	return append(cols, HeaderLastProcessingDate, HeaderAeronetNumber, HeaderMicrotopsNumber)
}
