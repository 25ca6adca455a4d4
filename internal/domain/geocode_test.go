package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// --- mock geocoder ---

type mockGeocoder struct {
	result GeocodingResult
	err    error
	calls  int
	gotLat float64
	gotLon float64
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, lat, lon float64) (GeocodingResult, error) {
	m.calls++
	m.gotLat, m.gotLon = lat, lon
	return m.result, m.err
}

type slowGeocoder struct{}

func (slowGeocoder) ReverseGeocode(ctx context.Context, _, _ float64) (GeocodingResult, error) {
	<-ctx.Done()
	return GeocodingResult{}, ctx.Err()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var helsinki = Coordinate{Lat: 60.1699, Lon: 24.9384}

// --- tests ---

func TestResolvePlace_NilGeocoder(t *testing.T) {
	place := ResolvePlace(context.Background(), helsinki, nil, time.Second, discardLogger())

	assert.Equal(t, "60.1699, 24.9384", place)
}

func TestResolvePlace_Success(t *testing.T) {
	geo := &mockGeocoder{
		result: GeocodingResult{
			FormattedAddress: "Helsinki, Uusimaa, Finland",
			PlaceName:        "Helsinki",
		},
	}

	place := ResolvePlace(context.Background(), helsinki, geo, time.Second, discardLogger())

	assert.Equal(t, "Helsinki, Uusimaa, Finland", place)
	assert.Equal(t, 1, geo.calls)
	assert.Equal(t, helsinki.Lat, geo.gotLat)
	assert.Equal(t, helsinki.Lon, geo.gotLon)
}

func TestResolvePlace_GeocodeError_GracefulDegradation(t *testing.T) {
	geo := &mockGeocoder{err: fmt.Errorf("%w: status 503", ErrGeocode)}

	place := ResolvePlace(context.Background(), helsinki, geo, time.Second, discardLogger())

	assert.Equal(t, "60.1699, 24.9384", place)
}

func TestResolvePlace_UnexpectedError_StillFallsBack(t *testing.T) {
	geo := &mockGeocoder{err: errors.New("boom")}

	place := ResolvePlace(context.Background(), helsinki, geo, time.Second, discardLogger())

	assert.Equal(t, "60.1699, 24.9384", place)
}

func TestResolvePlace_EmptyResult(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{}}

	place := ResolvePlace(context.Background(), helsinki, geo, time.Second, discardLogger())

	assert.Equal(t, "60.1699, 24.9384", place)
}

func TestResolvePlace_Timeout(t *testing.T) {
	start := time.Now()
	place := ResolvePlace(context.Background(), helsinki, slowGeocoder{}, 20*time.Millisecond, discardLogger())

	assert.Equal(t, "60.1699, 24.9384", place)
	assert.Less(t, time.Since(start), time.Second)
}
