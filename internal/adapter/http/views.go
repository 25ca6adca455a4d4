package http

import (
	"time"

	"github.com/couchcryptid/fmi-weather-service/internal/domain"
)

// observationView is a weather observation with the derived labels readers
// display.
type observationView struct {
	domain.WeatherObservation
	Condition          string `json:"condition,omitempty"`
	WindDirectionLabel string `json:"wind_direction_label"`
}

func newObservationView(o *domain.WeatherObservation, at domain.Coordinate) *observationView {
	if o == nil {
		return nil
	}
	return &observationView{
		WeatherObservation: *o,
		Condition:          conditionLabel(o.ConditionCode, at, o.Time),
		WindDirectionLabel: domain.WindDirectionLabel(o.WindDirection),
	}
}

type dailyView struct {
	domain.DailyForecast
	Condition          string `json:"condition,omitempty"`
	WindDirectionLabel string `json:"wind_direction_label"`
}

func newDailyView(d domain.DailyForecast, at domain.Coordinate) dailyView {
	return dailyView{
		DailyForecast:      d,
		Condition:          conditionLabel(d.ConditionCode, at, d.Time),
		WindDirectionLabel: domain.WindDirectionLabel(d.WindDirection),
	}
}

func conditionLabel(code *int, at domain.Coordinate, t time.Time) string {
	if code == nil {
		return ""
	}
	return domain.MapCondition(*code, domain.IsNight(at, t))
}

type currentResponse struct {
	CycleID     string            `json:"cycle_id"`
	RefreshedAt time.Time         `json:"refreshed_at"`
	Place       string            `json:"place,omitempty"`
	Location    domain.Coordinate `json:"location"`
	Weather     *observationView  `json:"weather"`
}

type forecastResponse struct {
	CycleID     string            `json:"cycle_id"`
	RefreshedAt time.Time         `json:"refreshed_at"`
	Forecasts   []observationView `json:"forecasts"`
	Daily       []dailyView       `json:"daily"`
}
