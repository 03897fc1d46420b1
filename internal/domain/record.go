package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Missing is the sentinel stored for absent or unparseable measurements.
const Missing = -999.0

// Point is a WGS-84 coordinate. Longitude is the first ordinate.
type Point struct {
	Lon float64
	Lat float64
}

// WKT renders the point as "POINT(lon lat)".
func (p Point) WKT() string {
	return fmt.Sprintf("POINT(%s %s)",
		strconv.FormatFloat(p.Lon, 'f', -1, 64),
		strconv.FormatFloat(p.Lat, 'f', -1, 64))
}

// Observation holds the fields every record shape shares.
type Observation struct {
	Key                string
	Site               string
	Level              Level
	Date               time.Time
	Time               string // hh:mm:ss
	LastProcessingDate *time.Time
	Coordinates        Point
	AeronetNumber      *int
	MicrotopsNumber    *int
	// Observations is only persisted for daily and series schemas.
	Observations  *int
	Operator      string
	OperatorEmail string
	SourceFile    string
}

// Field binds a measurement column to its source header and storage.
type Field struct {
	Column string
	Header string
	Value  *float64
}

// Record is one typed row ready for storage. The concrete type is one of the
// six schema shapes.
type Record interface {
	Schema() Schema
	Common() *Observation
	Fields() []Field
}

// NewRecord returns an empty record for schema, or nil for SchemaUnknown.
func NewRecord(schema Schema) Record {
	switch schema {
	case SchemaAODPoints:
		return &AODPoints{}
	case SchemaAODDaily:
		return &AODDaily{}
	case SchemaAODSeries:
		return &AODSeries{}
	case SchemaSDAPoints:
		return &SDAPoints{}
	case SchemaSDADaily:
		return &SDADaily{}
	case SchemaSDASeries:
		return &SDASeries{}
	default:
		return nil
	}
}

// Family returns the dataset family a schema belongs to.
func (s Schema) Family() Family {
	switch s {
	case SchemaAODPoints, SchemaAODDaily, SchemaAODSeries:
		return FamilyAOD
	case SchemaSDAPoints, SchemaSDADaily, SchemaSDASeries:
		return FamilySDA
	default:
		return ""
	}
}

// Aggregated reports whether the schema carries standard deviations and an
// observation count (daily and series products).
func (s Schema) Aggregated() bool {
	switch s {
	case SchemaAODDaily, SchemaAODSeries, SchemaSDADaily, SchemaSDASeries:
		return true
	default:
		return false
	}
}

// RecordKey derives the identity of a record from its discriminating fields.
// Provenance (operator, source file) and measurements are not part of it.
func RecordKey(schema Schema, o *Observation) string {
	input := fmt.Sprintf("%s|%d|%s|%s|%s|%.6f|%.6f",
		schema, o.Level, o.Site, o.Date.Format(time.DateOnly), o.Time,
		o.Coordinates.Lon, o.Coordinates.Lat)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:16])
}

// AODPoints is a single AOD observation.
type AODPoints struct {
	Observation
	AOD AODValues
}

func (r *AODPoints) Schema() Schema       { return SchemaAODPoints }
func (r *AODPoints) Common() *Observation { return &r.Observation }
func (r *AODPoints) Fields() []Field      { return r.AOD.fields() }

// AODDaily is a daily AOD average with standard deviations.
type AODDaily struct {
	Observation
	AOD AODValues
	STD AODDeviations
}

func (r *AODDaily) Schema() Schema       { return SchemaAODDaily }
func (r *AODDaily) Common() *Observation { return &r.Observation }
func (r *AODDaily) Fields() []Field      { return append(r.AOD.fields(), r.STD.fields()...) }

// AODSeries is a multi-day AOD series average with standard deviations.
type AODSeries struct {
	Observation
	AOD AODValues
	STD AODDeviations
}

func (r *AODSeries) Schema() Schema       { return SchemaAODSeries }
func (r *AODSeries) Common() *Observation { return &r.Observation }
func (r *AODSeries) Fields() []Field      { return append(r.AOD.fields(), r.STD.fields()...) }

// SDAPoints is a single SDA retrieval.
type SDAPoints struct {
	Observation
	SDA      SDAValues
	Geometry SDAGeometry
}

func (r *SDAPoints) Schema() Schema       { return SchemaSDAPoints }
func (r *SDAPoints) Common() *Observation { return &r.Observation }
func (r *SDAPoints) Fields() []Field      { return append(r.SDA.fields(), r.Geometry.fields()...) }

// SDADaily is a daily SDA average with standard deviations.
type SDADaily struct {
	Observation
	SDA   SDAValues
	STDEV SDADeviations
}

func (r *SDADaily) Schema() Schema       { return SchemaSDADaily }
func (r *SDADaily) Common() *Observation { return &r.Observation }
func (r *SDADaily) Fields() []Field      { return append(r.SDA.fields(), r.STDEV.fields()...) }

// SDASeries is a multi-day SDA series average with standard deviations.
type SDASeries struct {
	Observation
	SDA   SDAValues
	STDEV SDADeviations
}

func (r *SDASeries) Schema() Schema       { return SchemaSDASeries }
func (r *SDASeries) Common() *Observation { return &r.Observation }
func (r *SDASeries) Fields() []Field      { return append(r.SDA.fields(), r.STDEV.fields()...) }
