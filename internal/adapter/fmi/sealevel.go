package fmi

import (
	"context"
	"io"
	"time"

	"github.com/couchcryptid/fmi-weather-service/internal/domain"
)

const seaLevelQuery = "fmi::forecast::sealevel::point::simple"

// Sea-level parameter names. N2000 is the same series on a different
// vertical datum.
const (
	paramSeaLevel      = "SeaLevel"
	paramSeaLevelN2000 = "SeaLevelN2000"
)

// FetchSeaLevels returns the sea-level forecast nearest center from now on,
// in feed order.
func (c *Client) FetchSeaLevels(ctx context.Context, center domain.Coordinate, timeout time.Duration) ([]domain.SeaLevelRecord, error) {
	params := storedQuery(seaLevelQuery)
	params.Set("timestep", "30")
	params.Set("latlon", formatLatLon(center))
	params.Set("starttime", formatTime(c.clock.Now()))

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var levels []domain.SeaLevelRecord
	err := c.fetch(ctx, feedSeaLevel, params, func(r io.Reader) error {
		records, skipped, err := decodeSimple(r)
		if err != nil {
			return err
		}
		if skipped > 0 {
			c.logger.Debug("skipped sea level members with bad time", "count", skipped)
		}
		levels = c.seaLevels(records)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return levels, nil
}

func (c *Client) seaLevels(records []simpleRecord) []domain.SeaLevelRecord {
	levels := make([]domain.SeaLevelRecord, 0, len(records)/2)
	for _, rec := range records {
		switch rec.Name {
		case paramSeaLevel:
			v := parseValue(rec.Value)
			if v == nil {
				c.logger.Debug("skipping sea level record without value", "time", rec.Time, "value", rec.Value)
				continue
			}
			levels = append(levels, domain.SeaLevelRecord{Time: rec.Time, SeaLevelCM: *v})
		case paramSeaLevelN2000:
		default:
			c.logger.Debug("skipping unexpected sea level parameter", "name", rec.Name)
		}
	}
	return levels
}
