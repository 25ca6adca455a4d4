package nominatim

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fmi-weather-service/internal/domain"
	"github.com/couchcryptid/fmi-weather-service/internal/observability"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls  int
	result domain.GeocodingResult
	err    error
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func newCached(t *testing.T, inner domain.Geocoder, size int) *CachedGeocoder {
	t.Helper()
	cached, err := NewCachedGeocoder(inner, size, observability.NewMetricsForTesting())
	require.NoError(t, err)
	return cached
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{FormattedAddress: "Helsinki, Finland"},
	}
	cached := newCached(t, inner, 10)

	r1, err := cached.ReverseGeocode(context.Background(), 60.1699, 24.9384)
	require.NoError(t, err)
	assert.Equal(t, "Helsinki, Finland", r1.FormattedAddress)

	r2, err := cached.ReverseGeocode(context.Background(), 60.1699, 24.9384)
	require.NoError(t, err)
	assert.Equal(t, "Helsinki, Finland", r2.FormattedAddress)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(cached.metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(cached.metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{FormattedAddress: "Somewhere"},
	}
	cached := newCached(t, inner, 10)

	_, _ = cached.ReverseGeocode(context.Background(), 60.1699, 24.9384)
	_, _ = cached.ReverseGeocode(context.Background(), 61.4978, 23.7610)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, cached.Len())
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := newCached(t, inner, 10)

	_, _ = cached.ReverseGeocode(context.Background(), 59.5, 21.0)
	_, _ = cached.ReverseGeocode(context.Background(), 59.5, 21.0)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, cached.Len())
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("down")}
	cached := newCached(t, inner, 10)

	_, err := cached.ReverseGeocode(context.Background(), 60.1699, 24.9384)
	require.Error(t, err)
	assert.Equal(t, 0, cached.Len())
}

func TestCachedGeocoder_Eviction(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{FormattedAddress: "Place"},
	}
	cached := newCached(t, inner, 2)

	_, _ = cached.ReverseGeocode(context.Background(), 60.0, 24.0)
	_, _ = cached.ReverseGeocode(context.Background(), 61.0, 24.0)
	_, _ = cached.ReverseGeocode(context.Background(), 62.0, 24.0) // evicts 60,24

	_, _ = cached.ReverseGeocode(context.Background(), 60.0, 24.0)
	assert.Equal(t, 4, inner.calls, "evicted entry should be fetched again")
	assert.Equal(t, 2, cached.Len())
}

func TestNewCachedGeocoder_InvalidSize(t *testing.T) {
	_, err := NewCachedGeocoder(&countingGeocoder{}, 0, observability.NewMetricsForTesting())
	require.Error(t, err)
}
