package domain

import "time"

// SelectDisplayObservation picks the observation readers should see.
// With an hourly step the current weather is shown. Coarser steps show the
// next forecast point, skipping one more when the hour is half over.
func SelectDisplayObservation(current *WeatherObservation, forecasts []ForecastPoint, now time.Time, stepHours int) *WeatherObservation {
	if stepHours <= 1 {
		return current
	}
	switch {
	case len(forecasts) > 1 && now.Minute() >= 30:
		return &forecasts[1]
	case len(forecasts) > 0:
		return &forecasts[0]
	default:
		return nil
	}
}
