// Package kafka publishes ingestion events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/config"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/pipeline"
)

const (
	publishAttempts = 3
	initialBackoff  = 200 * time.Millisecond
	maxBackoff      = 2 * time.Second
)

const (
	eventFileIngested = "file_ingested"
	eventRunFinished  = "run_finished"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Notifier implements pipeline.Notifier on top of a kafka-go writer.
type Notifier struct {
	writer  messageWriter
	logger  *slog.Logger
	now     func() time.Time
	backoff time.Duration
}

// NewNotifier creates a producer for the configured topic.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Notifier{writer: w, logger: logger, now: time.Now, backoff: initialBackoff}
}

// FileIngested publishes the report of one file, keyed by its path so all
// events of a file land on the same partition.
func (n *Notifier) FileIngested(ctx context.Context, r pipeline.FileReport) error {
	msg, err := n.message(eventFileIngested, r.Path, r)
	if err != nil {
		return err
	}
	return n.write(ctx, msg)
}

// RunFinished publishes the totals of a run, keyed by its run id.
func (n *Notifier) RunFinished(ctx context.Context, r pipeline.Report) error {
	msg, err := n.message(eventRunFinished, r.RunID, runSummaryOf(r))
	if err != nil {
		return err
	}
	return n.write(ctx, msg)
}

// Close flushes pending messages and closes the producer.
func (n *Notifier) Close() error {
	return n.writer.Close()
}

// write publishes msg, retrying with exponential backoff until
// publishAttempts is exhausted or ctx ends.
func (n *Notifier) write(ctx context.Context, msg kafkago.Message) error {
	backoff := n.backoff
	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		if err = n.writer.WriteMessages(ctx, msg); err == nil {
			return nil
		}
		n.logger.Warn("publish event failed",
			"event", eventType(msg),
			"attempt", attempt,
			"error", err,
		)
		if attempt == publishAttempts || !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("publish %s: %w", eventType(msg), err)
}

type runSummary struct {
	RunID         string          `json:"run_id"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
	Totals        pipeline.Totals `json:"totals"`
	Unclassified  int             `json:"unclassified"`
	NotDispatched int             `json:"not_dispatched"`
	Cancelled     bool            `json:"cancelled"`
}

func runSummaryOf(r pipeline.Report) runSummary {
	return runSummary{
		RunID:         r.RunID,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		Totals:        r.Totals(),
		Unclassified:  len(r.Unclassified),
		NotDispatched: r.NotDispatched,
		Cancelled:     r.Cancelled,
	}
}

// message marshals payload into a Kafka message tagged with its event type.
func (n *Notifier) message(event, key string, payload any) (kafkago.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s: %w", event, err)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event)},
			{Key: "published_at", Value: []byte(n.now().UTC().Format(time.RFC3339))},
		},
	}, nil
}

func eventType(msg kafkago.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}
