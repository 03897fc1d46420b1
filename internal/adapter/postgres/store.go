// Package postgres stores typed records, sites and header catalog entries in
// PostgreSQL with PostGIS.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/domain"
)

const uniqueViolation = "23505"

// Store implements the pipeline's record, site and header stores.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to the database at dsn and verifies the connection.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Close releases all pooled connections.
func (s *Store) Close() {
	s.pool.Close()
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the PostGIS extension and every table the pipeline uses.
// It is safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range schemaSQL() {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	s.logger.Info("schema ready")
	return nil
}

// InsertRecords writes recs into the table of sel in a single transaction.
// Existing keys are left untouched and reported as not created.
func (s *Store) InsertRecords(ctx context.Context, sel domain.Selector, recs []domain.Record) ([]bool, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	query := insertRecordSQL(sel.Schema)

	batch := &pgx.Batch{}
	for _, rec := range recs {
		if rec.Schema() != sel.Schema {
			return nil, fmt.Errorf("%w: %s record for %s", domain.ErrSchemaMismatch, rec.Schema(), sel)
		}
		args, err := recordArgs(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
		}
		batch.Queue(query, args...)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, classify(fmt.Errorf("begin: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created := make([]bool, len(recs))
	br := tx.SendBatch(ctx, batch)
	for i := range recs {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return nil, classify(fmt.Errorf("insert %s: %w", recs[i].Common().Key, err))
		}
		created[i] = tag.RowsAffected() == 1
	}
	if err := br.Close(); err != nil {
		return nil, classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, classify(fmt.Errorf("commit: %w", err))
	}
	return created, nil
}

// EnsureSite creates site unless a site with the same name exists.
func (s *Store) EnsureSite(ctx context.Context, site domain.Site) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO sites (name, aeronet_number, description) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO NOTHING`,
		site.Name, site.AeronetNumber, site.Description)
	if err != nil {
		return false, fmt.Errorf("insert site: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetSiteDescription sets the description of a site that has none yet.
func (s *Store) SetSiteDescription(ctx context.Context, name, description string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sites SET description = $2 WHERE name = $1 AND description = ''`,
		name, description)
	return err
}

// RefreshSiteSpan recomputes the span of the named site from its records in
// the table of sel and stores it, in one transaction. The site row is locked
// before the aggregate runs, so overlapping refreshes of one site serialize
// and the later one always sees every record committed before it started. An
// empty span is stored as NULL.
func (s *Store) RefreshSiteSpan(ctx context.Context, sel domain.Selector, name string) (domain.DateSpan, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.DateSpan{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked string
	err = tx.QueryRow(ctx, `SELECT name FROM sites WHERE name = $1 FOR UPDATE`, name).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DateSpan{}, fmt.Errorf("site %q not found", name)
	}
	if err != nil {
		return domain.DateSpan{}, fmt.Errorf("lock site: %w", err)
	}

	var start, end pgtype.Date
	err = tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT min(date), max(date) FROM %s WHERE level = $1 AND site = $2`, tableName(sel.Schema)),
		int16(sel.Level), name,
	).Scan(&start, &end)
	if err != nil {
		return domain.DateSpan{}, fmt.Errorf("aggregate span: %w", err)
	}
	span := spanFrom(start, end)

	if _, err := tx.Exec(ctx, `UPDATE sites SET span_date = $2 WHERE name = $1`, name, spanValue(span)); err != nil {
		return domain.DateSpan{}, fmt.Errorf("update span: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.DateSpan{}, fmt.Errorf("commit: %w", err)
	}
	return span, nil
}

// Site loads one site by name.
func (s *Store) Site(ctx context.Context, name string) (domain.Site, error) {
	var (
		site domain.Site
		span []pgtype.Date
	)
	err := s.pool.QueryRow(ctx,
		`SELECT name, aeronet_number, description, span_date FROM sites WHERE name = $1`, name,
	).Scan(&site.Name, &site.AeronetNumber, &site.Description, &span)
	if err != nil {
		return domain.Site{}, err
	}
	if len(span) == 2 {
		site.Span = spanFrom(span[0], span[1])
	}
	return site, nil
}

// SiteOrigins returns, for every site with records in the table of sel, the
// site as its earliest record describes it and where that record was taken.
func (s *Store) SiteOrigins(ctx context.Context, sel domain.Selector) ([]domain.SiteOrigin, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT DISTINCT ON (site) site, COALESCE(aeronet_number, 0), ST_X(coordinates), ST_Y(coordinates)
		 FROM %s WHERE level = $1 ORDER BY site, date, time`, tableName(sel.Schema)),
		int16(sel.Level))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SiteOrigin, error) {
		var o domain.SiteOrigin
		err := row.Scan(&o.Site.Name, &o.Site.AeronetNumber, &o.At.Lon, &o.At.Lat)
		return o, err
	})
}

// CountRecords returns the number of records stored for sel.
func (s *Store) CountRecords(ctx context.Context, sel domain.Selector) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT count(*) FROM %s WHERE level = $1`, tableName(sel.Schema)),
		int16(sel.Level),
	).Scan(&n)
	return n, err
}

// InsertHeader creates a catalog entry unless one exists for its
// (datatype, level, freq).
func (s *Store) InsertHeader(ctx context.Context, e domain.HeaderEntry) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO table_headers (freq, datatype, level, base_header_l1, base_header_l2, header)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (datatype, level, freq) DO NOTHING`,
		string(e.Frequency), string(e.Datatype), int(e.Level), e.BaseHeaderLine1, e.BaseHeaderLine2, e.Columns)
	if err != nil {
		return false, fmt.Errorf("insert header: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// classify maps driver errors onto the domain taxonomy.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %w", domain.ErrDuplicate, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
}
