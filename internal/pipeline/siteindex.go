package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/domain"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/observability"
)

// SiteIndex keeps the sites table in step with stored records.
//
// Updates for one site are serialized inside the process. The span itself is
// recomputed and stored by the store in one step that serializes with other
// processes, so concurrent runs converge on the value of the stored records.
type SiteIndex struct {
	store    SiteStore
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSiteIndex creates a SiteIndex. Pass a nil geocoder to skip site descriptions.
func NewSiteIndex(store SiteStore, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *SiteIndex {
	return &SiteIndex{
		store:    store,
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Touch ensures site exists and recomputes its date span when the site was
// just created or recompute is set. at is the location of the record that
// triggered the call and seeds the description of a new site.
func (x *SiteIndex) Touch(ctx context.Context, site domain.Site, at domain.Point, recompute bool) error {
	if site.Name == "" {
		return nil
	}
	unlock := x.lock(site.Name)
	defer unlock()

	created, err := x.store.EnsureSite(ctx, site)
	if err != nil {
		return fmt.Errorf("ensure site %q: %w", site.Name, err)
	}
	if created {
		x.logger.Info("site created", "site", site.Name, "aeronet_number", site.AeronetNumber)
		x.describe(ctx, site, at)
	}
	if !created && !recompute {
		return nil
	}
	return x.recompute(ctx, site.Name)
}

// RebuildAll recomputes the span of every site that has records in the span
// store. Missing sites are created from their earliest record. It returns the
// number of sites processed.
func (x *SiteIndex) RebuildAll(ctx context.Context) (int, error) {
	origins, err := x.store.SiteOrigins(ctx, domain.SiteSpanSelector)
	if err != nil {
		return 0, fmt.Errorf("list sites: %w", err)
	}
	for i, o := range origins {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := x.Touch(ctx, o.Site, o.At, true); err != nil {
			return i, err
		}
	}
	return len(origins), nil
}

func (x *SiteIndex) recompute(ctx context.Context, name string) error {
	span, err := x.store.RefreshSiteSpan(ctx, domain.SiteSpanSelector, name)
	if err != nil {
		return fmt.Errorf("refresh span for %q: %w", name, err)
	}
	x.metrics.SiteSpanUpdates.Inc()
	x.logger.Debug("site span updated", "site", name, "empty", span.Empty())
	return nil
}

func (x *SiteIndex) describe(ctx context.Context, site domain.Site, at domain.Point) {
	described := domain.DescribeSite(ctx, site, at, x.geocoder, x.logger)
	if described.Description == "" {
		return
	}
	if err := x.store.SetSiteDescription(ctx, site.Name, described.Description); err != nil {
		x.logger.Warn("set site description failed", "site", site.Name, "error", err)
	}
}

func (x *SiteIndex) lock(name string) func() {
	x.mu.Lock()
	m, ok := x.locks[name]
	if !ok {
		m = &sync.Mutex{}
		x.locks[name] = m
	}
	x.mu.Unlock()

	m.Lock()
	return m.Unlock
}
