package domain

import "time"

// Coordinate is a WGS-84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WeatherObservation is a timestamped set of weather metrics. A nil metric
// means the feed did not report it.
type WeatherObservation struct {
	Time          time.Time `json:"time"`
	Temperature   *float64  `json:"temperature,omitempty"`
	Humidity      *float64  `json:"humidity,omitempty"`
	WindSpeed     *float64  `json:"wind_speed,omitempty"`
	WindDirection *float64  `json:"wind_direction,omitempty"`
	WindGust      *float64  `json:"wind_gust,omitempty"`
	CloudCover    *float64  `json:"cloud_cover,omitempty"`
	Precipitation *float64  `json:"precipitation,omitempty"`
	Pressure      *float64  `json:"pressure,omitempty"`
	DewPoint      *float64  `json:"dew_point,omitempty"`
	ConditionCode *int      `json:"condition_code,omitempty"`
}

// ForecastPoint is one step of an hourly (or coarser) forecast series.
type ForecastPoint = WeatherObservation

// DailyForecast condenses one local day of forecast points.
type DailyForecast struct {
	Time          time.Time `json:"time"`
	ConditionCode *int      `json:"condition_code,omitempty"`
	TempHigh      *float64  `json:"temp_high,omitempty"`
	TempLow       *float64  `json:"temp_low,omitempty"`
	Precipitation *float64  `json:"precipitation,omitempty"`
	WindSpeed     *float64  `json:"wind_speed,omitempty"`
	WindDirection *float64  `json:"wind_direction,omitempty"`
	Pressure      *float64  `json:"pressure,omitempty"`
	Humidity      *float64  `json:"humidity,omitempty"`
}

// StrikeObservation is one parsed lightning strike before ranking.
type StrikeObservation struct {
	Coordinate   Coordinate
	ObservedAt   time.Time
	DistanceKM   float64
	Index        int // line index in the positions block
	StrikeCount  int
	PeakCurrent  float64
	CloudCover   float64
	EllipseMajor float64
}

// LightningStrike is a ranked, place-resolved strike ready for readers.
type LightningStrike struct {
	Time         string     `json:"time"`
	ObservedAt   time.Time  `json:"observed_at"`
	Place        string     `json:"place"`
	DistanceKM   float64    `json:"distance_km"`
	StrikeCount  int        `json:"strikes"`
	PeakCurrent  float64    `json:"peak_current"`
	CloudCover   float64    `json:"cloud_cover"`
	EllipseMajor float64    `json:"ellipse_major"`
	Coordinate   Coordinate `json:"coordinate"`
}

// SeaLevelRecord is one sea-level forecast step in centimetres.
type SeaLevelRecord struct {
	Time       time.Time `json:"time"`
	SeaLevelCM float64   `json:"sea_level_cm"`
}

// RefreshResult is the complete output of one refresh cycle. Once published
// it is never modified; slices carried over from earlier cycles are shared.
type RefreshResult struct {
	CycleID          string              `json:"cycle_id"`
	RefreshedAt      time.Time           `json:"refreshed_at"`
	Location         Coordinate          `json:"location"`
	Place            string              `json:"place,omitempty"`
	Current          *WeatherObservation `json:"current,omitempty"`
	Observation      *WeatherObservation `json:"observation,omitempty"`
	Forecasts        []ForecastPoint     `json:"forecasts,omitempty"`
	DailyForecasts   []DailyForecast     `json:"daily_forecasts,omitempty"`
	BestCondition    *BestCondition      `json:"best_condition,omitempty"`
	LightningStrikes []LightningStrike   `json:"lightning_strikes,omitempty"`
	SeaLevels        []SeaLevelRecord    `json:"sea_levels,omitempty"`
	Success          bool                `json:"success"`
}
