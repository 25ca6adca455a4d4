package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forecastAt(at time.Time, temp, humidity, wind, precip float64, code int) ForecastPoint {
	return ForecastPoint{
		Time:          at,
		Temperature:   ptr(temp),
		Humidity:      ptr(humidity),
		WindSpeed:     ptr(wind),
		Precipitation: ptr(precip),
		ConditionCode: ptr(code),
	}
}

func TestEvaluateBestCondition_NilInputs(t *testing.T) {
	today := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	current := &WeatherObservation{Time: today, Temperature: ptr(15.0)}

	assert.Nil(t, EvaluateBestCondition(nil, []ForecastPoint{}, DefaultThresholds(), today))
	assert.Nil(t, EvaluateBestCondition(current, nil, DefaultThresholds(), today))
}

func TestEvaluateBestCondition_EmptyForecastsReturnsCurrent(t *testing.T) {
	today := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	current := &WeatherObservation{Time: today, Temperature: ptr(15.0), Humidity: ptr(50.0)}

	best := EvaluateBestCondition(current, []ForecastPoint{}, DefaultThresholds(), today)

	require.NotNil(t, best)
	assert.Equal(t, BestConditionNotAvailable, best.Availability)
	assert.Equal(t, 15.0, *best.Temperature)
	assert.True(t, best.Time.Equal(today))
}

func TestEvaluateBestCondition_PicksWarmestQualifyingHour(t *testing.T) {
	today := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	current := &WeatherObservation{Time: today, Temperature: ptr(12.0)}
	forecasts := []ForecastPoint{
		forecastAt(today.Add(1*time.Hour), 14, 50, 3, 0, 1),
		forecastAt(today.Add(2*time.Hour), 19, 55, 4, 0, 2),
		forecastAt(today.Add(3*time.Hour), 17, 60, 5, 0.1, 3),
	}

	best := EvaluateBestCondition(current, forecasts, DefaultThresholds(), today)

	require.NotNil(t, best)
	assert.Equal(t, BestConditionAvailable, best.Availability)
	assert.Equal(t, 19.0, *best.Temperature)
	assert.Equal(t, 55.0, *best.Humidity)
	assert.True(t, best.Time.Equal(today.Add(2*time.Hour)))
}

func TestEvaluateBestCondition_NothingQualifies(t *testing.T) {
	today := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	current := &WeatherObservation{Time: today, Temperature: ptr(12.0)}
	forecasts := []ForecastPoint{
		forecastAt(today.Add(1*time.Hour), 35, 50, 3, 0, 1),  // too hot
		forecastAt(today.Add(2*time.Hour), 20, 90, 3, 0, 1),  // too humid
		forecastAt(today.Add(3*time.Hour), 20, 50, 3, 2, 31), // too wet
		forecastAt(today.Add(4*time.Hour), 20, 50, 3, 0, 63), // thunder
	}

	best := EvaluateBestCondition(current, forecasts, DefaultThresholds(), today)

	require.NotNil(t, best)
	assert.Equal(t, BestConditionNotAvailable, best.Availability)
	assert.Equal(t, 12.0, *best.Temperature)
}

func TestEvaluateBestCondition_StopsAtTomorrow(t *testing.T) {
	loc := time.FixedZone("EEST", 3*60*60)
	today := time.Date(2026, 7, 1, 20, 0, 0, 0, loc)
	current := &WeatherObservation{Time: today, Temperature: ptr(11.0)}
	forecasts := []ForecastPoint{
		forecastAt(time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC), 25, 50, 3, 0, 1), // 21:00 local
		forecastAt(time.Date(2026, 7, 1, 21, 0, 0, 0, time.UTC), 29, 50, 3, 0, 1), // 00:00 local tomorrow
	}

	best := EvaluateBestCondition(current, forecasts, DefaultThresholds(), today)

	require.NotNil(t, best)
	assert.Equal(t, BestConditionAvailable, best.Availability)
	assert.Equal(t, 25.0, *best.Temperature)
	assert.Equal(t, loc, best.Time.Location())
	assert.Equal(t, 21, best.Time.Hour())
}

func TestEvaluateBestCondition_SkipsYesterday(t *testing.T) {
	loc := time.FixedZone("EEST", 3*60*60)
	today := time.Date(2026, 7, 2, 0, 10, 0, 0, loc)
	current := &WeatherObservation{Time: today, Temperature: ptr(14.0)}
	forecasts := []ForecastPoint{
		forecastAt(time.Date(2026, 7, 1, 23, 0, 0, 0, loc), 22, 50, 3, 0, 1),
		forecastAt(time.Date(2026, 7, 2, 12, 0, 0, 0, loc), 18, 50, 3, 0, 1),
	}

	best := EvaluateBestCondition(current, forecasts, DefaultThresholds(), today)

	require.NotNil(t, best)
	assert.Equal(t, BestConditionAvailable, best.Availability)
	assert.Equal(t, 18.0, *best.Temperature)
	assert.Equal(t, 2, best.Time.Day())
	assert.Equal(t, 12, best.Time.Hour())
}

func TestEvaluateBestCondition_OnlyYesterdayQualifies(t *testing.T) {
	loc := time.FixedZone("EEST", 3*60*60)
	today := time.Date(2026, 7, 2, 0, 10, 0, 0, loc)
	current := &WeatherObservation{Time: today, Temperature: ptr(14.0)}
	forecasts := []ForecastPoint{
		forecastAt(time.Date(2026, 7, 1, 22, 0, 0, 0, loc), 22, 50, 3, 0, 1),
		forecastAt(time.Date(2026, 7, 2, 3, 0, 0, 0, loc), 12, 95, 3, 0, 3), // too humid
	}

	best := EvaluateBestCondition(current, forecasts, DefaultThresholds(), today)

	require.NotNil(t, best)
	assert.Equal(t, BestConditionNotAvailable, best.Availability)
	assert.Equal(t, 14.0, *best.Temperature)
	assert.True(t, best.Time.Equal(today))
}

func TestEvaluateBestCondition_LatchedAvailabilityAcceptsWarmerPoints(t *testing.T) {
	today := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	current := &WeatherObservation{Time: today, Temperature: ptr(12.0)}
	forecasts := []ForecastPoint{
		forecastAt(today.Add(1*time.Hour), 15, 50, 3, 0, 1),
		// Fails thresholds but is warmer; availability has already latched.
		forecastAt(today.Add(2*time.Hour), 33, 80, 3, 0, 22),
	}

	best := EvaluateBestCondition(current, forecasts, DefaultThresholds(), today)

	require.NotNil(t, best)
	assert.Equal(t, BestConditionAvailable, best.Availability)
	assert.Equal(t, 33.0, *best.Temperature)
}

func TestEvaluateBestCondition_CurrentWarmerThanQualifyingPoint(t *testing.T) {
	today := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	current := &WeatherObservation{Time: today, Temperature: ptr(22.0)}
	forecasts := []ForecastPoint{
		forecastAt(today.Add(1*time.Hour), 15, 50, 3, 0, 1),
	}

	best := EvaluateBestCondition(current, forecasts, DefaultThresholds(), today)

	require.NotNil(t, best)
	assert.Equal(t, BestConditionAvailable, best.Availability)
	assert.Equal(t, 22.0, *best.Temperature)
	assert.True(t, best.Time.Equal(today))
}

func TestEvaluateBestCondition_MissingMetricDoesNotQualify(t *testing.T) {
	today := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	current := &WeatherObservation{Time: today, Temperature: ptr(12.0)}
	point := forecastAt(today.Add(time.Hour), 20, 50, 3, 0, 1)
	point.Humidity = nil

	best := EvaluateBestCondition(current, []ForecastPoint{point}, DefaultThresholds(), today)

	require.NotNil(t, best)
	assert.Equal(t, BestConditionNotAvailable, best.Availability)
}

func TestEvaluateBestCondition_BoundsAreInclusive(t *testing.T) {
	today := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	current := &WeatherObservation{Time: today, Temperature: ptr(5.0)}
	forecasts := []ForecastPoint{forecastAt(today.Add(time.Hour), 30, 70, 25, 0.2, 92)}

	best := EvaluateBestCondition(current, forecasts, DefaultThresholds(), today)

	require.NotNil(t, best)
	assert.Equal(t, BestConditionAvailable, best.Availability)
	assert.Equal(t, 30.0, *best.Temperature)
}
