package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateDaily(t *testing.T) {
	loc := time.FixedZone("EET", 2*60*60)
	start := time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC) // 20:00 local
	temps := []float64{-3, -5, -2, -8, -1, -4}
	forecasts := make([]ForecastPoint, len(temps))
	for i, temp := range temps {
		forecasts[i] = ForecastPoint{
			Time:          start.Add(time.Duration(i) * 2 * time.Hour),
			Temperature:   ptr(temp),
			ConditionCode: ptr(i + 1),
		}
	}

	days := AggregateDaily(forecasts, loc)

	// 20:00 and 22:00 local fall on the 10th; the rest on the 11th.
	require.Len(t, days, 2)
	assert.Equal(t, 10, days[0].Time.Day())
	assert.Equal(t, -3.0, *days[0].TempHigh)
	assert.Equal(t, -5.0, *days[0].TempLow)
	assert.Equal(t, 1, *days[0].ConditionCode)

	assert.Equal(t, 11, days[1].Time.Day())
	assert.Equal(t, -1.0, *days[1].TempHigh)
	assert.Equal(t, -8.0, *days[1].TempLow)
	assert.Equal(t, 3, *days[1].ConditionCode)
}

func TestAggregateDaily_Empty(t *testing.T) {
	assert.Nil(t, AggregateDaily(nil, time.UTC))
}

func TestAggregateDaily_MissingTemperatures(t *testing.T) {
	at := time.Date(2026, 1, 10, 6, 0, 0, 0, time.UTC)
	forecasts := []ForecastPoint{
		{Time: at},
		{Time: at.Add(time.Hour), Temperature: ptr(4.0)},
		{Time: at.Add(2 * time.Hour)},
	}

	days := AggregateDaily(forecasts, time.UTC)

	require.Len(t, days, 1)
	assert.Equal(t, 4.0, *days[0].TempHigh)
	assert.Equal(t, 4.0, *days[0].TempLow)
}
