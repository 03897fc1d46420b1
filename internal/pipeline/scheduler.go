package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/domain"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/observability"
)

// Options are the per-run settings of a Scheduler.
type Options struct {
	SourceDir string
	// IntermediateDir receives normalized artifacts. Empty disables them.
	IntermediateDir string
	Workers         int
}

// Scheduler drives one ingestion run over a source directory.
type Scheduler struct {
	opts     Options
	writer   *DatasetWriter
	sites    *SiteIndex
	catalog  *Catalog
	notifier Notifier
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	ready    atomic.Bool
	last     atomic.Pointer[Report]
}

// NewScheduler creates a Scheduler. catalog and notifier may be nil; without
// a catalog the run leaves the header catalog alone.
func NewScheduler(opts Options, writer *DatasetWriter, sites *SiteIndex, catalog *Catalog, notifier Notifier, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Scheduler {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Scheduler{
		opts:     opts,
		writer:   writer,
		sites:    sites,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
	}
}

// CheckReadiness returns nil once discovery has finished and files are being
// dispatched.
func (s *Scheduler) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("ingestion run has not started dispatching yet")
	}
	return nil
}

// LastReport returns the report of the most recent completed run.
func (s *Scheduler) LastReport() (Report, bool) {
	r := s.last.Load()
	if r == nil {
		return Report{}, false
	}
	return *r, true
}

// Run discovers, classifies and ingests every file under the source directory.
//
// When ctx ends no further files are dispatched; files already dispatched run
// to completion. The returned report is always populated. The error is
// non-nil when discovery failed or the run was interrupted.
func (s *Scheduler) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString(), StartedAt: s.clock.Now()}
	s.metrics.RunRunning.Set(1)
	defer s.metrics.RunRunning.Set(0)

	files, unclassified, err := Discover(s.opts.SourceDir)
	if err != nil {
		report.FinishedAt = s.clock.Now()
		return report, err
	}
	report.Unclassified = unclassified
	for _, p := range unclassified {
		s.logger.Debug("skipping unclassified file", "path", p)
	}
	s.ready.Store(true)
	s.logger.Info("ingestion started",
		"run_id", report.RunID,
		"source", s.opts.SourceDir,
		"files", len(files),
		"unclassified", len(unclassified),
		"workers", s.opts.Workers,
	)

	work := context.WithoutCancel(ctx)
	var (
		mu         sync.Mutex
		g          errgroup.Group
		dispatched int
	)
	// A worker slot is acquired before a file is dispatched, and the wait for
	// one ends at cancellation.
	slots := make(chan struct{}, s.opts.Workers)
dispatch:
	for _, rf := range files {
		select {
		case <-ctx.Done():
			break dispatch
		case slots <- struct{}{}:
		}
		if ctx.Err() != nil {
			<-slots
			break
		}
		dispatched++
		g.Go(func() error {
			defer func() { <-slots }()
			fr := s.processFile(work, report.RunID, rf)
			mu.Lock()
			report.Files = append(report.Files, fr)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // units never return errors; failures live in the report

	if s.catalog != nil && ctx.Err() == nil {
		n, err := s.catalog.Populate(work, files)
		report.HeadersCreated = n
		if err != nil {
			s.logger.Error("header catalog update failed", "run_id", report.RunID, "error", err)
		}
	}

	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Path < report.Files[j].Path })
	report.NotDispatched = len(files) - dispatched
	report.Cancelled = ctx.Err() != nil
	report.FinishedAt = s.clock.Now()
	s.last.Store(&report)

	totals := report.Totals()
	s.logger.Info("ingestion finished",
		"run_id", report.RunID,
		"files", totals.Files,
		"failed_files", totals.FailedFiles,
		"created", totals.Created,
		"existing", totals.Existing,
		"failed", totals.Failed,
		"not_dispatched", report.NotDispatched,
		"headers_created", report.HeadersCreated,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	if s.notifier != nil {
		if err := s.notifier.RunFinished(work, report); err != nil {
			s.logger.Warn("run notification failed", "error", err)
		}
	}

	if report.Cancelled {
		return report, fmt.Errorf("run interrupted after %d of %d files: %w", dispatched, len(files), ctx.Err())
	}
	return report, nil
}

// processFile ingests one raw file. Every failure is recorded in the returned
// report; nothing is propagated.
func (s *Scheduler) processFile(ctx context.Context, runID string, rf domain.RawFile) FileReport {
	start := s.clock.Now()
	fr := FileReport{RunID: runID, Path: rf.Path, Dataset: rf.Dataset.String()}
	logger := s.logger.With("path", rf.Path, "dataset", rf.Dataset.String())

	defer func() {
		fr.Duration = s.clock.Since(start)
		outcome := "ingested"
		if fr.Error != "" {
			outcome = "failed"
		}
		s.metrics.FilesProcessed.WithLabelValues(rf.Dataset.Selector().String(), outcome).Inc()
		s.metrics.FileDuration.Observe(fr.Duration.Seconds())
		if s.notifier != nil {
			if err := s.notifier.FileIngested(ctx, fr); err != nil {
				logger.Warn("file notification failed", "error", err)
			}
		}
	}()

	raw, err := os.ReadFile(rf.Path)
	if err != nil {
		fr.Error = err.Error()
		logger.Error("read file failed", "error", err)
		return fr
	}

	text, latin1 := domain.DecodeText(raw)
	fr.Latin1 = latin1
	if latin1 {
		logger.Info("decoded with latin-1 fallback", "reason", domain.FailureReason(domain.ErrEncodingFallback))
	}

	hdr, err := domain.ExtractHeader(bytes.NewReader(raw))
	if err != nil {
		logger.Warn("header incomplete, continuing with partial metadata", "error", err)
	}

	table, err := domain.Reshape(text, rf, hdr)
	if err != nil {
		fr.Error = err.Error()
		s.metrics.RowFailures.WithLabelValues(domain.FailureReason(err)).Inc()
		logger.Error("reshape failed", "error", err)
		return fr
	}

	if s.opts.IntermediateDir != "" {
		if err := writeArtifact(s.opts.IntermediateDir, table); err != nil {
			logger.Warn("normalized artifact not written", "error", err)
		}
	}

	fr.Rows = len(table.Rows) + len(table.Rejected)
	for _, rej := range table.Rejected {
		s.rowFailed(logger, &fr, rej.Line, rej)
	}

	recs := make([]domain.Record, 0, len(table.Rows))
	lines := make([]int, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec, err := domain.MapRow(row)
		if err != nil {
			s.rowFailed(logger, &fr, row.Line, err)
			continue
		}
		recs = append(recs, rec)
		lines = append(lines, row.Line)
	}
	if len(recs) > 0 {
		fr.Site = recs[0].Common().Site
	}

	var first domain.Record
	for i, res := range s.writer.Write(ctx, rf.Dataset.Selector(), recs) {
		switch res.Outcome {
		case OutcomeCreated:
			fr.Created++
		case OutcomeExisting:
			fr.Existing++
		default:
			obs := recs[i].Common()
			s.rowFailed(logger, &fr, lines[i], res.Err,
				"record_key", res.Key,
				"site", obs.Site,
				"date", obs.Date.Format(time.DateOnly),
				"time", obs.Time,
			)
			continue
		}
		if first == nil {
			first = recs[i]
		}
	}

	if first != nil {
		obs := first.Common()
		recompute := rf.Dataset.Selector() == domain.SiteSpanSelector && fr.Created > 0
		if err := s.sites.Touch(ctx, domain.SiteFor(obs), obs.Coordinates, recompute); err != nil {
			logger.Error("site index update failed", "site", obs.Site, "error", err)
		}
	}

	logger.Info("file ingested",
		"site", fr.Site,
		"rows", fr.Rows,
		"created", fr.Created,
		"existing", fr.Existing,
		"failed", fr.Failed,
	)
	return fr
}

func (s *Scheduler) rowFailed(logger *slog.Logger, fr *FileReport, line int, err error, attrs ...any) {
	reason := domain.FailureReason(err)
	fr.fail(reason)
	s.metrics.RowFailures.WithLabelValues(reason).Inc()
	logger.Warn("row skipped", append([]any{"line", line, "reason", reason, "error", err}, attrs...)...)
}
