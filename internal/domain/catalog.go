package domain

import "strings"

// HeaderEntry documents the canonical header of one dataset combination.
// Entries are unique on (Datatype, Level, Frequency) and never change once
// written.
type HeaderEntry struct {
	Frequency       Frequency
	Datatype        Family
	Level           Level
	BaseHeaderLine1 string
	BaseHeaderLine2 string
	// Columns is the canonical column list joined with commas.
	Columns string
}

// NewHeaderEntry builds the catalog entry for a file of dataset d.
func NewHeaderEntry(d Dataset, h Header) HeaderEntry {
	return HeaderEntry{
		Frequency:       d.Frequency,
		Datatype:        d.Family,
		Level:           d.Level,
		BaseHeaderLine1: h.Description[0],
		BaseHeaderLine2: h.Description[1],
		Columns:         strings.Join(h.CanonicalColumns(), ","),
	}
}
