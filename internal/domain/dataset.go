package domain

import (
	"fmt"
	"strconv"
)

// Family is the top-level dataset kind.
type Family string

const (
	FamilyAOD Family = "AOD"
	FamilySDA Family = "SDA"
)

// Frequency is the aggregation granularity of a file.
type Frequency string

const (
	FrequencyPoint  Frequency = "Point"
	FrequencyDaily  Frequency = "Daily"
	FrequencySeries Frequency = "Series"
)

// Level is the processing tier encoded in a filename: 10, 15 or 20.
type Level int

const (
	Level10 Level = 10
	Level15 Level = 15
	Level20 Level = 20
)

func (l Level) String() string { return strconv.Itoa(int(l)) }

// Schema identifies one of the six record shapes (family x frequency).
type Schema int

const (
	SchemaUnknown Schema = iota
	SchemaAODPoints
	SchemaAODDaily
	SchemaAODSeries
	SchemaSDAPoints
	SchemaSDADaily
	SchemaSDASeries
)

var schemaNames = map[Schema]string{
	SchemaAODPoints: "aod_points",
	SchemaAODDaily:  "aod_daily",
	SchemaAODSeries: "aod_series",
	SchemaSDAPoints: "sda_points",
	SchemaSDADaily:  "sda_daily",
	SchemaSDASeries: "sda_series",
}

// String returns the schema's table name.
func (s Schema) String() string {
	if n, ok := schemaNames[s]; ok {
		return n
	}
	return "unknown"
}

// Schemas lists the six record shapes in a stable order.
func Schemas() []Schema {
	return []Schema{
		SchemaAODPoints, SchemaAODDaily, SchemaAODSeries,
		SchemaSDAPoints, SchemaSDADaily, SchemaSDASeries,
	}
}

// Dataset is the classification of a raw file. It is produced once by
// [Classify] and carried through every later stage.
type Dataset struct {
	Family    Family
	Frequency Frequency
	Level     Level
}

// Schema returns the record shape used for rows of this dataset.
func (d Dataset) Schema() Schema {
	switch {
	case d.Family == FamilyAOD && d.Frequency == FrequencyPoint:
		return SchemaAODPoints
	case d.Family == FamilyAOD && d.Frequency == FrequencyDaily:
		return SchemaAODDaily
	case d.Family == FamilyAOD && d.Frequency == FrequencySeries:
		return SchemaAODSeries
	case d.Family == FamilySDA && d.Frequency == FrequencyPoint:
		return SchemaSDAPoints
	case d.Family == FamilySDA && d.Frequency == FrequencyDaily:
		return SchemaSDADaily
	case d.Family == FamilySDA && d.Frequency == FrequencySeries:
		return SchemaSDASeries
	default:
		return SchemaUnknown
	}
}

// Selector returns the store selector for records of this dataset.
func (d Dataset) Selector() Selector {
	return Selector{Schema: d.Schema(), Level: d.Level}
}

func (d Dataset) String() string {
	return fmt.Sprintf("%s/%s/%d", d.Family, d.Frequency, d.Level)
}

// Selector addresses one per-family, per-level store.
type Selector struct {
	Schema Schema
	Level  Level
}

func (s Selector) String() string {
	return fmt.Sprintf("%s@%d", s.Schema, s.Level)
}

// suffixRule maps a filename suffix to the dataset it encodes.
type suffixRule struct {
	suffix  string
	dataset Dataset
}

// suffixRules is ordered; the first matching suffix wins.
var suffixRules = []suffixRule{
	{"all_points.lev10", Dataset{FamilyAOD, FrequencyPoint, Level10}},
	{"all_points.lev15", Dataset{FamilyAOD, FrequencyPoint, Level15}},
	{"all_points.lev20", Dataset{FamilyAOD, FrequencyPoint, Level20}},
	{"series.lev15", Dataset{FamilyAOD, FrequencySeries, Level15}},
	{"series.lev20", Dataset{FamilyAOD, FrequencySeries, Level20}},
	{"daily.lev15", Dataset{FamilyAOD, FrequencyDaily, Level15}},
	{"daily.lev20", Dataset{FamilyAOD, FrequencyDaily, Level20}},
	{"all_points.ONEILL_10", Dataset{FamilySDA, FrequencyPoint, Level10}},
	{"all_points.ONEILL_15", Dataset{FamilySDA, FrequencyPoint, Level15}},
	{"all_points.ONEILL_20", Dataset{FamilySDA, FrequencyPoint, Level20}},
	{"series.ONEILL_15", Dataset{FamilySDA, FrequencySeries, Level15}},
	{"series.ONEILL_20", Dataset{FamilySDA, FrequencySeries, Level20}},
	{"daily.ONEILL_15", Dataset{FamilySDA, FrequencyDaily, Level15}},
	{"daily.ONEILL_20", Dataset{FamilySDA, FrequencyDaily, Level20}},
}

// Datasets returns the fourteen known dataset combinations in rule order.
func Datasets() []Dataset {
	out := make([]Dataset, len(suffixRules))
	for i, r := range suffixRules {
		out[i] = r.dataset
	}
	return out
}

// SiteSpanSelector is the store whose dates define a site's date span.
var SiteSpanSelector = Selector{Schema: SchemaAODDaily, Level: Level15}
