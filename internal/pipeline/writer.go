package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/domain"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/observability"
)

// Outcome is the result of one record write attempt.
type Outcome int

const (
	OutcomeCreated Outcome = iota + 1
	OutcomeExisting
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeExisting:
		return "existing"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// WriteResult reports what happened to one record. Results are returned in
// the order of the input records.
type WriteResult struct {
	Key      string
	Selector domain.Selector
	Outcome  Outcome
	Err      error
}

// DatasetWriter writes typed records into the store addressed by a selector.
//
// Records are written in transactions of at most batchSize. When a batch
// fails, its records are retried one by one against the same store so the
// failing record is isolated. A record is never redirected to another store.
type DatasetWriter struct {
	store     RecordStore
	batchSize int
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewDatasetWriter creates a DatasetWriter. A batchSize below 1 writes one
// record per transaction.
func NewDatasetWriter(store RecordStore, batchSize int, logger *slog.Logger, metrics *observability.Metrics) *DatasetWriter {
	if batchSize < 1 {
		batchSize = 1
	}
	return &DatasetWriter{store: store, batchSize: batchSize, logger: logger, metrics: metrics}
}

// Write stores recs into sel and returns one result per record.
func (w *DatasetWriter) Write(ctx context.Context, sel domain.Selector, recs []domain.Record) []WriteResult {
	results := make([]WriteResult, len(recs))
	pending := make([]int, 0, len(recs))

	for i, rec := range recs {
		results[i] = WriteResult{Key: rec.Common().Key, Selector: sel}
		if rec.Schema() != sel.Schema || rec.Common().Level != sel.Level {
			results[i].Outcome = OutcomeFailed
			results[i].Err = fmt.Errorf("%w: %s record for %s", domain.ErrSchemaMismatch,
				domain.Selector{Schema: rec.Schema(), Level: rec.Common().Level}, sel)
			continue
		}
		pending = append(pending, i)
	}

	for start := 0; start < len(pending); start += w.batchSize {
		end := min(start+w.batchSize, len(pending))
		w.writeBatch(ctx, sel, recs, pending[start:end], results)
	}

	for _, r := range results {
		w.metrics.RecordsWritten.WithLabelValues(sel.String(), r.Outcome.String()).Inc()
	}
	return results
}

func (w *DatasetWriter) writeBatch(ctx context.Context, sel domain.Selector, recs []domain.Record, idx []int, results []WriteResult) {
	batch := make([]domain.Record, len(idx))
	for j, i := range idx {
		batch[j] = recs[i]
	}
	w.metrics.BatchSize.Observe(float64(len(batch)))

	created, err := w.store.InsertRecords(ctx, sel, batch)
	if err == nil {
		for j, i := range idx {
			results[i].Outcome = outcomeOf(created[j])
		}
		return
	}
	if len(batch) > 1 {
		w.logger.Warn("batch write failed, retrying records individually",
			"store", sel.String(), "batch_size", len(batch), "error", err)
	}

	for _, i := range idx {
		if len(batch) == 1 {
			results[i] = w.classify(results[i], created, err)
			continue
		}
		one, oneErr := w.store.InsertRecords(ctx, sel, []domain.Record{recs[i]})
		results[i] = w.classify(results[i], one, oneErr)
	}
}

func (w *DatasetWriter) classify(res WriteResult, created []bool, err error) WriteResult {
	switch {
	case err == nil:
		res.Outcome = outcomeOf(created[0])
	case errors.Is(err, domain.ErrDuplicate):
		res.Outcome = OutcomeExisting
	default:
		res.Outcome = OutcomeFailed
		if !errors.Is(err, domain.ErrStoreWrite) {
			err = fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
		}
		res.Err = err
	}
	return res
}

func outcomeOf(created bool) Outcome {
	if created {
		return OutcomeCreated
	}
	return OutcomeExisting
}
