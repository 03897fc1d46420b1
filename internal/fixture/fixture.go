// Package fixture renders synthetic MAN archive files. The output follows the
// published file layout closely enough to exercise every ingestion stage.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/domain"
)

// Cruise describes the synthetic platform a set of files belongs to.
type Cruise struct {
	Site          string
	Operator      string
	Email         string
	AeronetNumber int
	Start         time.Time
	Days          int
	// Lon and Lat are the position on the first day. The ship moves 0.5
	// degrees east per day.
	Lon float64
	Lat float64
}

// DefaultCruise is a small cruise used by tests and local runs.
func DefaultCruise() Cruise {
	return Cruise{
		Site:          "Polarstern_24_0",
		Operator:      "Alexander Smirnov",
		Email:         "alexander.smirnov-1@nasa.gov",
		AeronetNumber: 451,
		Start:         time.Date(2021, time.March, 25, 0, 0, 0, 0, time.UTC),
		Days:          3,
		Lon:           12.5,
		Lat:           45.0,
	}
}

// FileName returns the archive file name of the cruise's file for d.
func (c Cruise) FileName(d domain.Dataset) string {
	return c.Site + "_" + Suffix(d)
}

// Suffix returns the filename suffix that classifies as d.
func Suffix(d domain.Dataset) string {
	freq := map[domain.Frequency]string{
		domain.FrequencyPoint:  "all_points",
		domain.FrequencyDaily:  "daily",
		domain.FrequencySeries: "series",
	}[d.Frequency]
	if d.Family == domain.FamilySDA {
		return fmt.Sprintf("%s.ONEILL_%d", freq, d.Level)
	}
	return fmt.Sprintf("%s.lev%d", freq, d.Level)
}

// Preamble returns the five header lines of the cruise's file for d.
func (c Cruise) Preamble(d domain.Dataset) []string {
	product := "AOD"
	if d.Family == domain.FamilySDA {
		product = "SDA Retrievals -- Fine and Coarse Mode AOD"
	}
	return []string{
		fmt.Sprintf("AERONET Version 3; %s Level %.1f Maritime Aerosol Network (MAN) Measurements", product, float64(d.Level)/10),
		c.Site + ",Ship " + c.Site,
		"Due to the research and development phase characterizing AERONET-MAN, use of data requires offering co-authorship to Principal Investigators.",
		"PI=" + c.Operator + ",Email=" + c.Email,
		strings.Join(domain.SourceColumns(d.Schema()), ","),
	}
}

// Rows returns one data line per cruise day for d.
func (c Cruise) Rows(d domain.Dataset) []string {
	cols := domain.SourceColumns(d.Schema())
	processed := c.Start.AddDate(0, 0, c.Days+7)

	rows := make([]string, 0, c.Days)
	for day := range c.Days {
		date := c.Start.AddDate(0, 0, day)
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = c.value(col, day, date, processed, i)
		}
		rows = append(rows, strings.Join(values, ","))
	}
	return rows
}

// Content renders the complete file for d.
func (c Cruise) Content(d domain.Dataset) string {
	lines := append(c.Preamble(d), c.Rows(d)...)
	return strings.Join(lines, "\n") + "\n"
}

// Write renders the cruise's files for datasets (all fourteen when none are
// given) into dir/<site>/ and returns their paths.
func (c Cruise) Write(dir string, datasets ...domain.Dataset) ([]string, error) {
	if len(datasets) == 0 {
		datasets = domain.Datasets()
	}
	siteDir := filepath.Join(dir, c.Site)
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(datasets))
	for _, d := range datasets {
		path := filepath.Join(siteDir, c.FileName(d))
		if err := os.WriteFile(path, []byte(c.Content(d)), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (c Cruise) value(col string, day int, date, processed time.Time, idx int) string {
	switch col {
	case domain.HeaderDate:
		return date.Format("02:01:2006")
	case domain.HeaderTime:
		return "12:00:00"
	case domain.HeaderLastProcessingDate:
		return processed.Format("02:01:2006")
	case domain.HeaderAeronetNumber:
		return strconv.Itoa(c.AeronetNumber)
	case domain.HeaderMicrotopsNumber:
		return "7"
	case domain.HeaderObservations:
		return "12"
	case domain.ColumnLatitude:
		return strconv.FormatFloat(c.Lat, 'f', 6, 64)
	case domain.ColumnLongitude:
		return strconv.FormatFloat(c.Lon+0.5*float64(day), 'f', 6, 64)
	case "Julian_Day":
		return strconv.FormatFloat(float64(date.YearDay())+0.5, 'f', 6, 64)
	default:
		return strconv.FormatFloat(0.01*float64(idx)+0.001*float64(day), 'f', 6, 64)
	}
}
