package pipeline_test

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/domain"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/pipeline"
)

func seed(t *testing.T, store *memStore, recs ...domain.Record) {
	t.Helper()
	_, err := store.InsertRecords(t.Context(), domain.SiteSpanSelector, recs)
	require.NoError(t, err)
}

func TestSiteIndex_FirstRecordSetsSpan(t *testing.T) {
	store := newMemStore()
	idx := pipeline.NewSiteIndex(store, nil, discardLogger(), newTestMetrics())
	seed(t, store, aodDaily("k1", "Polarstern_24_0", "2021-03-25"))

	require.NoError(t, idx.Touch(t.Context(), domain.Site{Name: "Polarstern_24_0", AeronetNumber: 451}, domain.Point{}, false))

	site, ok := store.site("Polarstern_24_0")
	require.True(t, ok)
	assert.Equal(t, 451, site.AeronetNumber)
	require.False(t, site.Span.Empty())
	assert.Equal(t, "2021-03-25", site.Span.Start.Format(time.DateOnly))
	assert.Equal(t, "2021-03-25", site.Span.End.Format(time.DateOnly))
}

func TestSiteIndex_LaterRecordExtendsEndOnly(t *testing.T) {
	store := newMemStore()
	idx := pipeline.NewSiteIndex(store, nil, discardLogger(), newTestMetrics())
	site := domain.Site{Name: "Polarstern_24_0"}

	seed(t, store, aodDaily("k1", site.Name, "2021-03-25"))
	require.NoError(t, idx.Touch(t.Context(), site, domain.Point{}, true))

	seed(t, store, aodDaily("k2", site.Name, "2021-04-02"))
	require.NoError(t, idx.Touch(t.Context(), site, domain.Point{}, true))

	got, _ := store.site(site.Name)
	assert.Equal(t, "2021-03-25", got.Span.Start.Format(time.DateOnly))
	assert.Equal(t, "2021-04-02", got.Span.End.Format(time.DateOnly))
}

func TestSiteIndex_ExistingSiteWithoutRecomputeIsUntouched(t *testing.T) {
	store := newMemStore()
	metrics := newTestMetrics()
	idx := pipeline.NewSiteIndex(store, nil, discardLogger(), metrics)
	site := domain.Site{Name: "Polarstern_24_0"}

	require.NoError(t, idx.Touch(t.Context(), site, domain.Point{}, false))
	require.NoError(t, idx.Touch(t.Context(), site, domain.Point{}, false))

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SiteSpanUpdates), 0, "only creation recomputes")
	got, _ := store.site(site.Name)
	assert.True(t, got.Span.Empty())
}

func TestSiteIndex_DescribesNewSitesOnly(t *testing.T) {
	store := newMemStore()
	geo := &mockGeocoder{address: "North Atlantic Ocean"}
	idx := pipeline.NewSiteIndex(store, geo, discardLogger(), newTestMetrics())
	site := domain.Site{Name: "Polarstern_24_0"}
	at := domain.Point{Lon: -30, Lat: 40}

	require.NoError(t, idx.Touch(t.Context(), site, at, false))
	require.NoError(t, idx.Touch(t.Context(), site, at, true))

	got, _ := store.site(site.Name)
	assert.Equal(t, "First observed near North Atlantic Ocean", got.Description)
	assert.Equal(t, 1, geo.calls)
}

func TestSiteIndex_ConcurrentTouches(t *testing.T) {
	store := newMemStore()
	idx := pipeline.NewSiteIndex(store, nil, discardLogger(), newTestMetrics())
	seed(t, store,
		aodDaily("k1", "A", "2021-03-25"),
		aodDaily("k2", "A", "2021-03-28"),
	)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, idx.Touch(t.Context(), domain.Site{Name: "A"}, domain.Point{}, true))
		}()
	}
	wg.Wait()

	got, _ := store.site("A")
	assert.Equal(t, "2021-03-25", got.Span.Start.Format(time.DateOnly))
	assert.Equal(t, "2021-03-28", got.Span.End.Format(time.DateOnly))
}

func TestSiteIndex_RebuildAll(t *testing.T) {
	store := newMemStore()
	idx := pipeline.NewSiteIndex(store, nil, discardLogger(), newTestMetrics())
	seed(t, store,
		aodDaily("k1", "A", "2021-03-25"),
		aodDaily("k2", "A", "2021-03-27"),
		aodDaily("k3", "B", "2019-11-02"),
	)

	n, err := idx.RebuildAll(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	a, ok := store.site("A")
	require.True(t, ok)
	assert.Equal(t, "2021-03-27", a.Span.End.Format(time.DateOnly))
	b, ok := store.site("B")
	require.True(t, ok)
	assert.Equal(t, "2019-11-02", b.Span.Start.Format(time.DateOnly))
}

func TestSiteIndex_EmptyNameIgnored(t *testing.T) {
	store := newMemStore()
	idx := pipeline.NewSiteIndex(store, nil, discardLogger(), newTestMetrics())
	require.NoError(t, idx.Touch(t.Context(), domain.Site{}, domain.Point{}, true))
	_, ok := store.site("")
	assert.False(t, ok)
}

func TestSiteIndex_RebuildAllSeedsNewSitesFromEarliestRecord(t *testing.T) {
	store := newMemStore()
	geo := &mockGeocoder{address: "Bay of Biscay"}
	idx := pipeline.NewSiteIndex(store, geo, discardLogger(), newTestMetrics())

	laterNumber, earliestNumber := 999, 451
	later := aodDaily("k2", "Polarstern_24_0", "2021-03-27")
	later.AeronetNumber = &laterNumber
	later.Coordinates = domain.Point{Lon: 3, Lat: 50}
	earliest := aodDaily("k1", "Polarstern_24_0", "2021-03-25")
	earliest.AeronetNumber = &earliestNumber
	earliest.Coordinates = domain.Point{Lon: -5.5, Lat: 45.25}
	seed(t, store, later, earliest)

	n, err := idx.RebuildAll(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	site, ok := store.site("Polarstern_24_0")
	require.True(t, ok)
	assert.Equal(t, 451, site.AeronetNumber)
	assert.Equal(t, "First observed near Bay of Biscay", site.Description)
	assert.Equal(t, 1, geo.calls)
	assert.Equal(t, "2021-03-25", site.Span.Start.Format(time.DateOnly))
	assert.Equal(t, "2021-03-27", site.Span.End.Format(time.DateOnly))
}

func TestSiteIndex_IndexesSharingStoreConverge(t *testing.T) {
	store := newMemStore()
	site := domain.Site{Name: "Polarstern_24_0"}
	first := pipeline.NewSiteIndex(store, nil, discardLogger(), newTestMetrics())
	second := pipeline.NewSiteIndex(store, nil, discardLogger(), newTestMetrics())

	seed(t, store, aodDaily("k0", site.Name, "2021-03-25"))
	require.NoError(t, first.Touch(t.Context(), site, domain.Point{}, false))

	start := day("2021-03-26")
	var wg sync.WaitGroup
	for i := range 20 {
		idx := first
		if i%2 == 1 {
			idx = second
		}
		date := start.AddDate(0, 0, i).Format(time.DateOnly)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.InsertRecords(t.Context(), domain.SiteSpanSelector, []domain.Record{aodDaily("k"+date, site.Name, date)})
			assert.NoError(t, err)
			assert.NoError(t, idx.Touch(t.Context(), site, domain.Point{}, true))
		}()
	}
	wg.Wait()

	got, _ := store.site(site.Name)
	assert.Equal(t, "2021-03-25", got.Span.Start.Format(time.DateOnly))
	assert.Equal(t, start.AddDate(0, 0, 19).Format(time.DateOnly), got.Span.End.Format(time.DateOnly))
}
