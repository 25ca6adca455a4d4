package domain

import "time"

// AggregateDaily condenses forecasts into one entry per calendar day in loc.
// Each entry takes its fields from the day's first point and tracks the
// day's high and low temperature.
func AggregateDaily(forecasts []ForecastPoint, loc *time.Location) []DailyForecast {
	if len(forecasts) == 0 {
		return nil
	}

	var days []DailyForecast
	var lastDay time.Time
	for _, f := range forecasts {
		local := f.Time.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

		if len(days) == 0 || !day.Equal(lastDay) {
			lastDay = day
			days = append(days, DailyForecast{
				Time:          local,
				ConditionCode: f.ConditionCode,
				TempHigh:      f.Temperature,
				TempLow:       f.Temperature,
				Precipitation: f.Precipitation,
				WindSpeed:     f.WindSpeed,
				WindDirection: f.WindDirection,
				Pressure:      f.Pressure,
				Humidity:      f.Humidity,
			})
			continue
		}

		if f.Temperature == nil {
			continue
		}
		d := &days[len(days)-1]
		if d.TempHigh == nil || *f.Temperature > *d.TempHigh {
			d.TempHigh = f.Temperature
		}
		if d.TempLow == nil || *f.Temperature < *d.TempLow {
			d.TempLow = f.Temperature
		}
	}
	return days
}
