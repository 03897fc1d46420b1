//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/adapter/kafka"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/config"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/pipeline"
)

const testTopic = "maritime-ingest-test"

// TestNotifierPublishes verifies that run events reach the topic with their
// event type header and JSON payload.
func TestNotifierPublishes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	n := kafka.NewNotifier(&config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}, discardLogger())
	t.Cleanup(func() { _ = n.Close() })

	file := pipeline.FileReport{
		Path:    "/src/Polarstern_24_0/Polarstern_24_0_daily.lev15",
		Dataset: "AOD/Daily/15",
		Site:    "Polarstern_24_0",
		Rows:    3,
		Created: 3,
	}
	require.NoError(t, n.FileIngested(ctx, file))
	require.NoError(t, n.RunFinished(ctx, pipeline.Report{
		StartedAt:  time.Now().UTC(),
		FinishedAt: time.Now().UTC(),
		Files:      []pipeline.FileReport{file},
	}))

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  []string{broker},
		Topic:    testTopic,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	t.Cleanup(func() { _ = reader.Close() })

	first := readMessage(ctx, t, reader)
	assert.Equal(t, file.Path, string(first.Key))
	assert.Equal(t, "file_ingested", header(first, "event_type"))
	var got pipeline.FileReport
	require.NoError(t, json.Unmarshal(first.Value, &got))
	assert.Equal(t, file, got)

	second := readMessage(ctx, t, reader)
	assert.Equal(t, "run_finished", header(second, "event_type"))
	var summary struct {
		Totals pipeline.Totals `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(second.Value, &summary))
	assert.Equal(t, 3, summary.Totals.Created)
}

func readMessage(ctx context.Context, t *testing.T, r *kafkago.Reader) kafkago.Message {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	msg, err := r.ReadMessage(readCtx)
	require.NoError(t, err, "read from topic")
	return msg
}

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
