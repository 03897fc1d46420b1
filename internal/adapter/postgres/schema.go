package postgres

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/domain"
)

// column is one record table column. Measurement columns come from the
// domain field lists so the tables always match the record shapes.
type column struct {
	name string
	ddl  string
}

// commonColumns returns the identity and provenance columns of a record table
// in insert order. The coordinates column is followed by its WKT mirror.
func commonColumns(schema domain.Schema) []column {
	aod := schema.Family() == domain.FamilyAOD

	cols := []column{
		{"record_key", "text PRIMARY KEY"},
		{"site", "text NOT NULL"},
		{"level", "smallint NOT NULL"},
		{"date", "date NOT NULL"},
		{"time", "time NOT NULL"},
		{"last_processing_date", nullable("date", !aod)},
		{"coordinates", "geometry(Point, 4326) NOT NULL"},
		{"coordinates_wkt", "text NOT NULL"},
		{"aeronet_number", nullableInt(!aod)},
		{"microtops_number", nullableInt(!aod)},
	}
	if schema.Aggregated() {
		cols = append(cols, column{"number_of_observations", "integer"})
	}
	return append(cols,
		column{"operator", "text NOT NULL DEFAULT ''"},
		column{"operator_email", "text NOT NULL DEFAULT ''"},
		column{"source_file", "text NOT NULL DEFAULT ''"},
	)
}

func nullable(typ string, null bool) string {
	if null {
		return typ
	}
	return typ + " NOT NULL"
}

func nullableInt(null bool) string {
	if null {
		return "integer"
	}
	return "integer NOT NULL DEFAULT 0"
}

func measurementColumns(schema domain.Schema) []column {
	fields := domain.NewRecord(schema).Fields()
	cols := make([]column, len(fields))
	for i, f := range fields {
		cols[i] = column{f.Column, fmt.Sprintf("double precision NOT NULL DEFAULT %g", domain.Missing)}
	}
	return cols
}

func tableName(schema domain.Schema) string {
	return pgx.Identifier{schema.String()}.Sanitize()
}

// createTableSQL returns the DDL for one record table and its lookup index.
func createTableSQL(schema domain.Schema) []string {
	cols := append(commonColumns(schema), measurementColumns(schema)...)
	defs := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		defs = append(defs, c.name+" "+c.ddl)
	}
	defs = append(defs, "ingested_at timestamptz NOT NULL DEFAULT now()")

	name := schema.String()
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", tableName(schema), strings.Join(defs, ",\n\t")),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (level, site, date)",
			pgx.Identifier{name + "_level_site_date_idx"}.Sanitize(), tableName(schema)),
	}
}

const createSitesSQL = `CREATE TABLE IF NOT EXISTS sites (
	name text PRIMARY KEY,
	aeronet_number integer NOT NULL DEFAULT 0,
	description text NOT NULL DEFAULT '',
	span_date date[] CHECK (span_date IS NULL OR cardinality(span_date) = 2)
)`

const createHeadersSQL = `CREATE TABLE IF NOT EXISTS table_headers (
	id bigserial PRIMARY KEY,
	freq text NOT NULL,
	datatype text NOT NULL,
	level integer NOT NULL,
	base_header_l1 text NOT NULL,
	base_header_l2 text NOT NULL,
	header text NOT NULL,
	UNIQUE (datatype, level, freq)
)`

// schemaSQL returns every statement needed to create the store.
func schemaSQL() []string {
	stmts := []string{"CREATE EXTENSION IF NOT EXISTS postgis", createSitesSQL, createHeadersSQL}
	for _, s := range domain.Schemas() {
		stmts = append(stmts, createTableSQL(s)...)
	}
	return stmts
}

// insertRecordSQL returns the idempotent insert statement for schema. The
// coordinates column consumes two parameters (lon, lat).
func insertRecordSQL(schema domain.Schema) string {
	cols := append(commonColumns(schema), measurementColumns(schema)...)
	names := make([]string, len(cols))
	values := make([]string, len(cols))
	n := 1
	for i, c := range cols {
		names[i] = c.name
		if c.name == "coordinates" {
			values[i] = fmt.Sprintf("ST_SetSRID(ST_MakePoint($%d, $%d), 4326)", n, n+1)
			n += 2
			continue
		}
		values[i] = fmt.Sprintf("$%d", n)
		n++
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (record_key) DO NOTHING",
		tableName(schema), strings.Join(names, ", "), strings.Join(values, ", "))
}
