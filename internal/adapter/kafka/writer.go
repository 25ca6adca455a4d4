package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/fmi-weather-service/internal/config"
	"github.com/couchcryptid/fmi-weather-service/internal/domain"
	"github.com/couchcryptid/fmi-weather-service/internal/observability"
)

const (
	publishAttempts = 3
	initialBackoff  = 200 * time.Millisecond
	maxBackoff      = 2 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes refresh snapshots to a Kafka topic.
// It implements refresh.SnapshotPublisher.
type Writer struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// PublishSnapshot serializes result and writes it, retrying transient
// failures with backoff until ctx ends.
func (w *Writer) PublishSnapshot(ctx context.Context, result *domain.RefreshResult) error {
	msg, err := serializeToMessage(result)
	if err != nil {
		return err
	}

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err = w.writer.WriteMessages(ctx, msg)
		if err == nil {
			w.metrics.SnapshotsPublished.Inc()
			return nil
		}
		if attempt == publishAttempts || ctx.Err() != nil {
			return fmt.Errorf("publish snapshot %s: %w", result.CycleID, err)
		}
		w.logger.Warn("publish snapshot failed, retrying",
			"cycle_id", result.CycleID,
			"attempt", attempt,
			"error", err,
		)
		if !retry.SleepWithContext(ctx, backoff) {
			return fmt.Errorf("publish snapshot %s: %w", result.CycleID, ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a RefreshResult into a Kafka message keyed by
// location, so every snapshot for one place lands on the same partition.
func serializeToMessage(result *domain.RefreshResult) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize refresh result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey(result.Location)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "cycle_id", Value: []byte(result.CycleID)},
			{Key: "refreshed_at", Value: []byte(result.RefreshedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}

func messageKey(c domain.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + ":" + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}
