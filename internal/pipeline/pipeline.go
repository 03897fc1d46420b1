// Package pipeline drives ingestion runs: it discovers raw files, turns them
// into typed records, writes them idempotently and keeps the derived site and
// header tables in step.
package pipeline

import (
	"context"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/domain"
)

// RecordStore persists typed records into per-dataset stores.
type RecordStore interface {
	// InsertRecords writes recs into the store addressed by sel inside one
	// transaction. created[i] is false when recs[i] already existed. On error
	// nothing from the call is committed.
	InsertRecords(ctx context.Context, sel domain.Selector, recs []domain.Record) (created []bool, err error)
}

// SiteStore persists sites and derives their date spans from stored records.
type SiteStore interface {
	EnsureSite(ctx context.Context, site domain.Site) (created bool, err error)
	SetSiteDescription(ctx context.Context, name, description string) error
	// RefreshSiteSpan recomputes the named site's span from its records in
	// sel and stores it atomically with respect to other refreshes of the
	// same site, in this process or any other.
	RefreshSiteSpan(ctx context.Context, sel domain.Selector, name string) (domain.DateSpan, error)
	// SiteOrigins lists every site with records in sel, described by its
	// earliest record.
	SiteOrigins(ctx context.Context, sel domain.Selector) ([]domain.SiteOrigin, error)
}

// HeaderStore persists header catalog entries.
type HeaderStore interface {
	// InsertHeader creates entry unless one exists for its (datatype, level,
	// frequency). The boolean reports whether a row was created.
	InsertHeader(ctx context.Context, entry domain.HeaderEntry) (bool, error)
}

// Notifier publishes run progress to downstream consumers.
type Notifier interface {
	FileIngested(ctx context.Context, file FileReport) error
	RunFinished(ctx context.Context, report Report) error
}
