package domain

import "time"

// Availability reports whether any forecast point passed every threshold.
type Availability string

const (
	BestConditionAvailable    Availability = "available"
	BestConditionNotAvailable Availability = "not_available"
)

// favorableCodes are the symbol codes that can qualify as a best condition:
// clear, partly cloudy, cloudy, light showers, light rain, light snow, fog.
var favorableCodes = map[int]struct{}{
	1: {}, 2: {}, 21: {}, 3: {}, 31: {}, 32: {}, 41: {}, 42: {}, 51: {}, 52: {}, 91: {}, 92: {},
}

// Thresholds bounds each metric a best-condition candidate must fall within.
// Bounds are inclusive.
type Thresholds struct {
	MinTemperature   float64
	MaxTemperature   float64
	MinHumidity      float64
	MaxHumidity      float64
	MinWindSpeed     float64
	MaxWindSpeed     float64
	MinPrecipitation float64
	MaxPrecipitation float64
}

// DefaultThresholds returns the stock outdoor-activity window.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinTemperature:   10,
		MaxTemperature:   30,
		MinHumidity:      30,
		MaxHumidity:      70,
		MinWindSpeed:     0,
		MaxWindSpeed:     25,
		MinPrecipitation: 0,
		MaxPrecipitation: 0.2,
	}
}

// BestCondition is the most favorable hour found for today.
type BestCondition struct {
	Time          time.Time    `json:"time"`
	Temperature   *float64     `json:"temperature,omitempty"`
	Humidity      *float64     `json:"humidity,omitempty"`
	WindSpeed     *float64     `json:"wind_speed,omitempty"`
	Precipitation *float64     `json:"precipitation,omitempty"`
	Availability  Availability `json:"availability"`
}

// EvaluateBestCondition scans today's part of forecasts for the warmest hour.
//
// The result starts as a copy of current with availability not_available.
// Points dated before today are skipped, and the scan stops at the first
// point dated after today (both in today's location).
// The first point that passes the thresholds latches availability; from then
// on any point strictly warmer than the best so far replaces it. Returns nil
// when current or forecasts is nil.
func EvaluateBestCondition(current *WeatherObservation, forecasts []ForecastPoint, t Thresholds, today time.Time) *BestCondition {
	if current == nil || forecasts == nil {
		return nil
	}

	loc := today.Location()
	best := &BestCondition{
		Time:          current.Time.In(loc),
		Temperature:   current.Temperature,
		Humidity:      current.Humidity,
		WindSpeed:     current.WindSpeed,
		Precipitation: current.Precipitation,
		Availability:  BestConditionNotAvailable,
	}

	for i := range forecasts {
		point := &forecasts[i]
		localTime := point.Time.In(loc)
		if afterDay(localTime, today) {
			break
		}
		if beforeDay(localTime, today) {
			continue
		}

		if t.qualifies(point) {
			best.Availability = BestConditionAvailable
		}
		if best.Availability != BestConditionAvailable || point.Temperature == nil {
			continue
		}
		if best.Temperature == nil || *point.Temperature > *best.Temperature {
			best.Time = localTime
			best.Temperature = point.Temperature
			best.Humidity = point.Humidity
			best.WindSpeed = point.WindSpeed
			best.Precipitation = point.Precipitation
		}
	}

	return best
}

func (t Thresholds) qualifies(p *ForecastPoint) bool {
	if p.ConditionCode == nil {
		return false
	}
	if _, ok := favorableCodes[*p.ConditionCode]; !ok {
		return false
	}
	return within(p.WindSpeed, t.MinWindSpeed, t.MaxWindSpeed) &&
		within(p.Temperature, t.MinTemperature, t.MaxTemperature) &&
		within(p.Humidity, t.MinHumidity, t.MaxHumidity) &&
		within(p.Precipitation, t.MinPrecipitation, t.MaxPrecipitation)
}

func within(v *float64, lo, hi float64) bool {
	return v != nil && *v >= lo && *v <= hi
}

// afterDay reports whether t falls on a later calendar day than day.
func afterDay(t, day time.Time) bool {
	ty, tm, td := t.Date()
	dy, dm, dd := day.Date()
	if ty != dy {
		return ty > dy
	}
	if tm != dm {
		return tm > dm
	}
	return td > dd
}

// beforeDay reports whether t falls on an earlier calendar day than day.
func beforeDay(t, day time.Time) bool {
	return afterDay(day, t)
}
