package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/domain"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/observability"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/pipeline"
)

// --- in-memory store ---

// memStore enforces record uniqueness by key per selector the same way the
// database does with its primary key.
type memStore struct {
	mu       sync.Mutex
	records  map[domain.Selector]map[string]domain.Record
	sites    map[string]domain.Site
	headers  map[string]domain.HeaderEntry
	failKeys map[string]error
	calls    int
}

func newMemStore() *memStore {
	return &memStore{
		records:  make(map[domain.Selector]map[string]domain.Record),
		sites:    make(map[string]domain.Site),
		headers:  make(map[string]domain.HeaderEntry),
		failKeys: make(map[string]error),
	}
}

func (m *memStore) InsertRecords(_ context.Context, sel domain.Selector, recs []domain.Record) ([]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	for _, r := range recs {
		if err, ok := m.failKeys[r.Common().Key]; ok {
			return nil, err
		}
	}
	table, ok := m.records[sel]
	if !ok {
		table = make(map[string]domain.Record)
		m.records[sel] = table
	}
	created := make([]bool, len(recs))
	for i, r := range recs {
		if _, exists := table[r.Common().Key]; exists {
			continue
		}
		table[r.Common().Key] = r
		created[i] = true
	}
	return created, nil
}

func (m *memStore) EnsureSite(_ context.Context, site domain.Site) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sites[site.Name]; ok {
		return false, nil
	}
	m.sites[site.Name] = site
	return true, nil
}

func (m *memStore) SetSiteDescription(_ context.Context, name, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sites[name]
	s.Description = description
	m.sites[name] = s
	return nil
}

func (m *memStore) RefreshSiteSpan(_ context.Context, sel domain.Selector, name string) (domain.DateSpan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	site, ok := m.sites[name]
	if !ok {
		return domain.DateSpan{}, errors.New("site not found")
	}
	var span domain.DateSpan
	for _, r := range m.records[sel] {
		obs := r.Common()
		if obs.Site != name {
			continue
		}
		d := obs.Date
		if span.Start == nil || d.Before(*span.Start) {
			span.Start = &d
		}
		if span.End == nil || d.After(*span.End) {
			span.End = &d
		}
	}
	site.Span = span
	m.sites[name] = site
	return span, nil
}

func (m *memStore) SiteOrigins(_ context.Context, sel domain.Selector) ([]domain.SiteOrigin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	first := map[string]*domain.Observation{}
	for _, r := range m.records[sel] {
		obs := r.Common()
		cur, ok := first[obs.Site]
		if !ok || obs.Date.Before(cur.Date) || (obs.Date.Equal(cur.Date) && obs.Time < cur.Time) {
			first[obs.Site] = obs
		}
	}
	out := make([]domain.SiteOrigin, 0, len(first))
	for _, obs := range first {
		out = append(out, domain.SiteOrigin{Site: domain.SiteFor(obs), At: obs.Coordinates})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Site.Name < out[j].Site.Name })
	return out, nil
}

func (m *memStore) InsertHeader(_ context.Context, e domain.HeaderEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := string(e.Datatype) + "|" + e.Level.String() + "|" + string(e.Frequency)
	if _, ok := m.headers[key]; ok {
		return false, nil
	}
	m.headers[key] = e
	return true, nil
}

func (m *memStore) count(sel domain.Selector) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records[sel])
}

func (m *memStore) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.records {
		n += len(t)
	}
	return n
}

func (m *memStore) site(name string) (domain.Site, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sites[name]
	return s, ok
}

// --- notifier ---

type mockNotifier struct {
	mu    sync.Mutex
	files []pipeline.FileReport
	runs  []pipeline.Report
}

func (n *mockNotifier) FileIngested(_ context.Context, f pipeline.FileReport) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.files = append(n.files, f)
	return nil
}

func (n *mockNotifier) RunFinished(_ context.Context, r pipeline.Report) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.runs = append(n.runs, r)
	return nil
}

// --- geocoder ---

type mockGeocoder struct {
	mu      sync.Mutex
	address string
	calls   int
}

func (g *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return domain.GeocodingResult{FormattedAddress: g.address}, nil
}

// --- helpers ---

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func aodDaily(key, site, date string) *domain.AODDaily {
	return &domain.AODDaily{Observation: domain.Observation{
		Key:   key,
		Site:  site,
		Level: domain.Level15,
		Date:  day(date),
		Time:  "12:00:00",
	}}
}
