package refresh_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fmi-weather-service/internal/domain"
	"github.com/couchcryptid/fmi-weather-service/internal/observability"
	"github.com/couchcryptid/fmi-weather-service/internal/refresh"
)

func strikesAtDistances(distances ...float64) []domain.StrikeObservation {
	obs := make([]domain.StrikeObservation, len(distances))
	for i, d := range distances {
		obs[i] = domain.StrikeObservation{
			Coordinate:  domain.Coordinate{Lat: 60 + float64(i)/10, Lon: 25},
			ObservedAt:  testNow.Add(time.Duration(i) * time.Minute),
			DistanceKM:  d,
			Index:       i,
			StrikeCount: i + 1,
		}
	}
	return obs
}

func TestFetchAndRank_RanksAndTruncates(t *testing.T) {
	src := &mockLightning{strikes: strikesAtDistances(50, 10, 30, 5, 90)}
	p := refresh.NewLightningProcessor(src, nil, refresh.LightningOptions{Limit: 3}, observability.NewMetricsForTesting(), discardLogger())

	strikes, err := p.FetchAndRank(context.Background(), helsinki, 100, 1)
	require.NoError(t, err)

	require.Len(t, strikes, 3)
	assert.InDelta(t, 5.0, strikes[0].DistanceKM, 1e-9)
	assert.InDelta(t, 30.0, strikes[1].DistanceKM, 1e-9)
	assert.InDelta(t, 10.0, strikes[2].DistanceKM, 1e-9)
}

func TestFetchAndRank_DefaultLimit(t *testing.T) {
	src := &mockLightning{strikes: strikesAtDistances(1, 2, 3, 4, 5, 6, 7)}
	p := refresh.NewLightningProcessor(src, nil, refresh.LightningOptions{}, observability.NewMetricsForTesting(), discardLogger())

	strikes, err := p.FetchAndRank(context.Background(), helsinki, 100, 1)
	require.NoError(t, err)
	assert.Len(t, strikes, domain.DefaultStrikeLimit)
}

func TestFetchAndRank_FormatsTimeInLocation(t *testing.T) {
	helsinkiTZ, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)

	src := &mockLightning{strikes: strikesAtDistances(12.3456)}
	p := refresh.NewLightningProcessor(src, &mockGeocoder{address: "Vantaa, Finland"}, refresh.LightningOptions{Location: helsinkiTZ}, observability.NewMetricsForTesting(), discardLogger())

	strikes, err := p.FetchAndRank(context.Background(), helsinki, 100, 1)
	require.NoError(t, err)

	require.Len(t, strikes, 1)
	assert.Equal(t, "2026-07-01 11:40:00", strikes[0].Time)
	assert.Equal(t, testNow, strikes[0].ObservedAt)
	assert.Equal(t, "Vantaa, Finland", strikes[0].Place)
	assert.InDelta(t, 12.35, strikes[0].DistanceKM, 1e-9)
	assert.Equal(t, 1, strikes[0].StrikeCount)
}

func TestFetchAndRank_GeocodeFailureUsesCoordinates(t *testing.T) {
	src := &mockLightning{strikes: strikesAtDistances(5)}
	p := refresh.NewLightningProcessor(src, &mockGeocoder{err: domain.ErrGeocode}, refresh.LightningOptions{}, observability.NewMetricsForTesting(), discardLogger())

	strikes, err := p.FetchAndRank(context.Background(), helsinki, 100, 1)
	require.NoError(t, err)
	require.Len(t, strikes, 1)
	assert.Equal(t, strikes[0].Coordinate.String(), strikes[0].Place)
}

func TestFetchAndRank_SourceError(t *testing.T) {
	src := &mockLightning{err: domain.ErrFetch}
	p := refresh.NewLightningProcessor(src, nil, refresh.LightningOptions{}, observability.NewMetricsForTesting(), discardLogger())

	_, err := p.FetchAndRank(context.Background(), helsinki, 100, 1)
	require.ErrorIs(t, err, domain.ErrFetch)
}

func TestFetchAndRank_EmptyFeed(t *testing.T) {
	p := refresh.NewLightningProcessor(&mockLightning{}, nil, refresh.LightningOptions{}, observability.NewMetricsForTesting(), discardLogger())

	strikes, err := p.FetchAndRank(context.Background(), helsinki, 100, 1)
	require.NoError(t, err)
	assert.Empty(t, strikes)
}
