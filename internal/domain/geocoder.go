package domain

import "context"

// GeocodingResult contains place data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
}

// Geocoder resolves coordinates to human-readable places.
type Geocoder interface {
	// ReverseGeocode converts coordinates to place details. An empty
	// FormattedAddress with a nil error means the provider found nothing.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}
