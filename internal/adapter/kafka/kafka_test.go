package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fmi-weather-service/internal/domain"
	"github.com/couchcryptid/fmi-weather-service/internal/observability"
)

func testResult() *domain.RefreshResult {
	temp := 17.4
	return &domain.RefreshResult{
		CycleID:     "5b0b0c5e-1111-4a3a-9c1e-000000000001",
		RefreshedAt: time.Date(2026, 7, 1, 8, 10, 0, 0, time.UTC),
		Location:    domain.Coordinate{Lat: 60.1699, Lon: 24.9384},
		Place:       "Helsinki, Finland",
		Current:     &domain.WeatherObservation{Time: time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC), Temperature: &temp},
		SeaLevels:   []domain.SeaLevelRecord{{Time: time.Date(2026, 7, 1, 8, 30, 0, 0, time.UTC), SeaLevelCM: 12}},
		Success:     true,
	}
}

func TestSerializeToMessage(t *testing.T) {
	result := testResult()

	msg, err := serializeToMessage(result)
	require.NoError(t, err)

	assert.Equal(t, []byte("60.1699:24.9384"), msg.Key)
	assert.Contains(t, string(msg.Value), `"cycle_id":"5b0b0c5e-1111-4a3a-9c1e-000000000001"`)
	assert.Contains(t, string(msg.Value), `"temperature":17.4`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "cycle_id", msg.Headers[0].Key)
	assert.Equal(t, []byte(result.CycleID), msg.Headers[0].Value)
	assert.Equal(t, "refreshed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2026-07-01T08:10:00Z"), msg.Headers[1].Value)

	var decoded domain.RefreshResult
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "Helsinki, Finland", decoded.Place)
	assert.True(t, decoded.Success)
}

// --- mock writer ---

type mockWriter struct {
	failures int
	written  []kafkago.Message
	calls    int
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	m.calls++
	if m.calls <= m.failures {
		return errors.New("leader not available")
	}
	m.written = append(m.written, msgs...)
	return nil
}

func (m *mockWriter) Close() error { return nil }

func testWriter(inner messageWriter) *Writer {
	return &Writer{
		writer:  inner,
		metrics: observability.NewMetricsForTesting(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestWriter_PublishSnapshot(t *testing.T) {
	mw := &mockWriter{}
	w := testWriter(mw)

	require.NoError(t, w.PublishSnapshot(context.Background(), testResult()))

	require.Len(t, mw.written, 1)
	assert.Equal(t, []byte("60.1699:24.9384"), mw.written[0].Key)
	assert.InDelta(t, 1, testutil.ToFloat64(w.metrics.SnapshotsPublished), 0)
}

func TestWriter_PublishSnapshot_RetriesTransientFailure(t *testing.T) {
	mw := &mockWriter{failures: 1}
	w := testWriter(mw)

	require.NoError(t, w.PublishSnapshot(context.Background(), testResult()))

	assert.Equal(t, 2, mw.calls)
	assert.Len(t, mw.written, 1)
}

func TestWriter_PublishSnapshot_GivesUp(t *testing.T) {
	mw := &mockWriter{failures: 10}
	w := testWriter(mw)

	err := w.PublishSnapshot(context.Background(), testResult())
	require.Error(t, err)

	assert.Equal(t, publishAttempts, mw.calls)
	assert.Contains(t, err.Error(), "leader not available")
	assert.InDelta(t, 0, testutil.ToFloat64(w.metrics.SnapshotsPublished), 0)
}

func TestWriter_PublishSnapshot_StopsOnCancel(t *testing.T) {
	mw := &mockWriter{failures: 10}
	w := testWriter(mw)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.PublishSnapshot(ctx, testResult())
	require.Error(t, err)
	assert.Equal(t, 1, mw.calls)
}
