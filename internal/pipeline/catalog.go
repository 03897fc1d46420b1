package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/domain"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/observability"
)

// Catalog builds the header catalog: one entry per known dataset, taken from
// a representative file.
type Catalog struct {
	store   HeaderStore
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCatalog creates a Catalog.
func NewCatalog(store HeaderStore, logger *slog.Logger, metrics *observability.Metrics) *Catalog {
	return &Catalog{store: store, logger: logger, metrics: metrics}
}

// Populate inserts a catalog entry for every dataset present in files and
// returns how many entries were created. The representative of a dataset is
// the first file in path order whose header carries a column line. Existing
// entries are left untouched.
func (c *Catalog) Populate(ctx context.Context, files []domain.RawFile) (int, error) {
	byDataset := make(map[domain.Dataset][]domain.RawFile)
	for _, f := range files {
		byDataset[f.Dataset] = append(byDataset[f.Dataset], f)
	}

	created := 0
	for _, d := range domain.Datasets() {
		candidates := byDataset[d]
		if len(candidates) == 0 {
			continue
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].Path < candidates[j].Path })

		hdr, ok := c.representative(candidates)
		if !ok {
			c.logger.Warn("no usable header for dataset", "dataset", d.String(), "files", len(candidates))
			continue
		}

		inserted, err := c.store.InsertHeader(ctx, domain.NewHeaderEntry(d, hdr))
		if err != nil {
			return created, fmt.Errorf("insert header for %s: %w", d, err)
		}
		if inserted {
			created++
			c.metrics.HeaderCatalogInserts.Inc()
			c.logger.Info("header catalog entry created", "dataset", d.String())
		}
	}
	return created, nil
}

func (c *Catalog) representative(files []domain.RawFile) (domain.Header, bool) {
	for _, f := range files {
		hdr, err := readHeader(f.Path)
		if len(hdr.Columns) > 0 {
			return hdr, true
		}
		c.logger.Warn("header unusable for catalog", "path", f.Path, "error", err)
	}
	return domain.Header{}, false
}

func readHeader(path string) (domain.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Header{}, err
	}
	defer f.Close()
	return domain.ExtractHeader(f)
}
