package fmi

import (
	"context"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/fmi-weather-service/internal/domain"
)

const (
	forecastQuery    = "fmi::forecast::edited::weather::scandinavia::point::simple"
	observationQuery = "fmi::observations::weather::simple"
)

type setter func(o *domain.WeatherObservation, v *float64)

// forecastFields maps point-forecast parameter names onto observation fields.
var forecastFields = map[string]setter{
	"Temperature":     func(o *domain.WeatherObservation, v *float64) { o.Temperature = v },
	"Humidity":        func(o *domain.WeatherObservation, v *float64) { o.Humidity = v },
	"WindSpeedMS":     func(o *domain.WeatherObservation, v *float64) { o.WindSpeed = v },
	"WindDirection":   func(o *domain.WeatherObservation, v *float64) { o.WindDirection = v },
	"WindGust":        func(o *domain.WeatherObservation, v *float64) { o.WindGust = v },
	"TotalCloudCover": func(o *domain.WeatherObservation, v *float64) { o.CloudCover = v },
	"Precipitation1h": func(o *domain.WeatherObservation, v *float64) { o.Precipitation = v },
	"Pressure":        func(o *domain.WeatherObservation, v *float64) { o.Pressure = v },
	"DewPoint":        func(o *domain.WeatherObservation, v *float64) { o.DewPoint = v },
	"WeatherSymbol3":  setCondition,
}

// observationFields maps station parameter names onto observation fields.
// Stations report no WeatherSymbol3 code.
var observationFields = map[string]setter{
	"t2m":      func(o *domain.WeatherObservation, v *float64) { o.Temperature = v },
	"rh":       func(o *domain.WeatherObservation, v *float64) { o.Humidity = v },
	"ws_10min": func(o *domain.WeatherObservation, v *float64) { o.WindSpeed = v },
	"wd_10min": func(o *domain.WeatherObservation, v *float64) { o.WindDirection = v },
	"wg_10min": func(o *domain.WeatherObservation, v *float64) { o.WindGust = v },
	"n_man":    setCloudOktas,
	"r_1h":     func(o *domain.WeatherObservation, v *float64) { o.Precipitation = v },
	"p_sea":    func(o *domain.WeatherObservation, v *float64) { o.Pressure = v },
	"td":       func(o *domain.WeatherObservation, v *float64) { o.DewPoint = v },
}

var (
	forecastParameters    = []string{"Temperature", "Humidity", "WindSpeedMS", "WindDirection", "WindGust", "TotalCloudCover", "Precipitation1h", "Pressure", "DewPoint", "WeatherSymbol3"}
	observationParameters = []string{"t2m", "rh", "ws_10min", "wd_10min", "wg_10min", "n_man", "r_1h", "p_sea", "td"}
)

func setCondition(o *domain.WeatherObservation, v *float64) {
	if v == nil {
		o.ConditionCode = nil
		return
	}
	code := int(math.Round(*v))
	o.ConditionCode = &code
}

// setCloudOktas converts eighths of sky to percent. 9 (sky obscured) is unavailable.
func setCloudOktas(o *domain.WeatherObservation, v *float64) {
	if v == nil || *v < 0 || *v > 8 {
		o.CloudCover = nil
		return
	}
	pct := *v * 12.5
	o.CloudCover = &pct
}

// FetchCurrent returns the latest weather at c. With a station id the
// station's own observations are used; otherwise the point forecast for the
// current hour stands in.
func (c *Client) FetchCurrent(ctx context.Context, coord domain.Coordinate, stationID string) (*domain.WeatherObservation, error) {
	now := c.clock.Now()

	params := storedQuery(forecastQuery)
	fields := forecastFields
	if stationID != "" {
		params = storedQuery(observationQuery)
		params.Set("fmisid", stationID)
		params.Set("parameters", strings.Join(observationParameters, ","))
		params.Set("starttime", formatTime(now.Add(-time.Hour)))
		params.Set("endtime", formatTime(now))
		params.Set("timestep", "10")
		fields = observationFields
	} else {
		start := now.Truncate(time.Hour)
		params.Set("latlon", formatLatLon(coord))
		params.Set("parameters", strings.Join(forecastParameters, ","))
		params.Set("starttime", formatTime(start))
		params.Set("endtime", formatTime(start.Add(time.Hour)))
		params.Set("timestep", "60")
	}

	var series []domain.WeatherObservation
	err := c.fetch(ctx, feedCurrent, params, func(r io.Reader) error {
		var err error
		series, err = c.decodeSeries(r, fields, feedCurrent)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no current weather for %v", domain.ErrParse, coord)
	}

	if stationID == "" {
		return &series[0], nil
	}
	// The newest ten-minute slot is often still incomplete.
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].Temperature != nil {
			return &series[i], nil
		}
	}
	return &series[len(series)-1], nil
}

// FetchForecast returns the point forecast at c from the current hour on,
// stepHours apart, covering days days. days <= 0 returns nothing.
func (c *Client) FetchForecast(ctx context.Context, coord domain.Coordinate, stepHours, days int) ([]domain.ForecastPoint, error) {
	if days <= 0 {
		return nil, nil
	}
	if stepHours <= 0 {
		stepHours = 1
	}

	start := c.clock.Now().Truncate(time.Hour)
	params := storedQuery(forecastQuery)
	params.Set("latlon", formatLatLon(coord))
	params.Set("parameters", strings.Join(forecastParameters, ","))
	params.Set("starttime", formatTime(start))
	params.Set("endtime", formatTime(start.Add(time.Duration(days)*24*time.Hour)))
	params.Set("timestep", strconv.Itoa(stepHours*60))

	var series []domain.ForecastPoint
	err := c.fetch(ctx, feedForecast, params, func(r io.Reader) error {
		var err error
		series, err = c.decodeSeries(r, forecastFields, feedForecast)
		return err
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

// decodeSeries folds simple-format members into one observation per time
// step, in time order. Unknown parameter names are ignored.
func (c *Client) decodeSeries(r io.Reader, fields map[string]setter, feed string) ([]domain.WeatherObservation, error) {
	records, skipped, err := decodeSimple(r)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.logger.Debug("skipped members with bad time", "feed", feed, "count", skipped)
	}

	index := make(map[int64]int)
	var series []domain.WeatherObservation
	for _, rec := range records {
		set, ok := fields[rec.Name]
		if !ok {
			continue
		}
		key := rec.Time.Unix()
		i, ok := index[key]
		if !ok {
			i = len(series)
			index[key] = i
			series = append(series, domain.WeatherObservation{Time: rec.Time})
		}
		set(&series[i], parseValue(rec.Value))
	}

	slices.SortStableFunc(series, func(a, b domain.WeatherObservation) int {
		return a.Time.Compare(b.Time)
	})
	return series, nil
}
