package domain

import "time"

// Site is a named observation platform (a cruise for MAN data).
type Site struct {
	Name          string
	AeronetNumber int
	Description   string
	Span          DateSpan
}

// DateSpan is the [start, end] range of a site's AOD daily level 1.5 dates.
// Both ends are nil when the site has no such records.
type DateSpan struct {
	Start *time.Time
	End   *time.Time
}

// Empty reports whether the span has no dates.
func (s DateSpan) Empty() bool { return s.Start == nil || s.End == nil }

// Equal compares two spans by calendar date.
func (s DateSpan) Equal(o DateSpan) bool {
	return sameDate(s.Start, o.Start) && sameDate(s.End, o.End)
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Format(time.DateOnly) == b.Format(time.DateOnly)
}

// SiteOrigin is a site as its earliest stored record describes it, with the
// position of that record.
type SiteOrigin struct {
	Site Site
	At   Point
}

// SiteFor returns the lazily created Site for a record's site label.
func SiteFor(o *Observation) Site {
	s := Site{Name: o.Site}
	if o.AeronetNumber != nil {
		s.AeronetNumber = *o.AeronetNumber
	}
	return s
}
