package domain

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ResolvePlace reverse-geocodes c into an address, falling back to the raw
// "lat, lon" string when geocoder is nil, finds nothing, or fails. Each
// lookup runs under its own timeout. It never returns an error.
func ResolvePlace(ctx context.Context, c Coordinate, geocoder Geocoder, timeout time.Duration, logger *slog.Logger) string {
	raw := c.String()
	if geocoder == nil {
		return raw
	}

	lookupCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := geocoder.ReverseGeocode(lookupCtx, c.Lat, c.Lon)
	switch {
	case err == nil:
	case errors.Is(err, ErrGeocode), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		logger.Info("reverse geocoding failed, using coordinates",
			"location", raw,
			"error", err,
		)
		return raw
	default:
		logger.Error("unexpected reverse geocoding error, using coordinates",
			"location", raw,
			"error", err,
		)
		return raw
	}

	if result.FormattedAddress == "" {
		return raw
	}
	return result.FormattedAddress
}
