package domain

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusKM is the mean radius of the spherical earth model.
const EarthRadiusKM = 6371.0

// BoundingBox is a lat/lon rectangle in decimal degrees.
type BoundingBox struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
}

// FinlandBoundingBox covers mainland Finland and its coastal waters.
func FinlandBoundingBox() BoundingBox {
	return BoundingBox{LatMin: 58.406721, LatMax: 70.44, LonMin: 15.311937, LonMax: 39.262133}
}

// ComputeBoundingBox returns the rectangle whose sides lie halfSideKM from
// center along the meridian and the parallel. Longitudes are not clamped, so
// the box widens without bound as center approaches a pole.
func ComputeBoundingBox(center Coordinate, halfSideKM float64) (BoundingBox, error) {
	if !(halfSideKM > 0) || math.IsInf(halfSideKM, 0) {
		return BoundingBox{}, fmt.Errorf("%w: half side %v km must be positive", ErrInvalidArgument, halfSideKM)
	}
	if err := validateCoordinate(center); err != nil {
		return BoundingBox{}, err
	}

	lat := center.Lat * math.Pi / 180
	lon := center.Lon * math.Pi / 180

	// Radius of the parallel at the given latitude.
	parallelRadius := EarthRadiusKM * math.Cos(lat)

	dLat := halfSideKM / EarthRadiusKM
	dLon := halfSideKM / parallelRadius

	return BoundingBox{
		LatMin: degrees(lat - dLat),
		LatMax: degrees(lat + dLat),
		LonMin: degrees(lon - dLon),
		LonMax: degrees(lon + dLon),
	}, nil
}

// GreatCircleDistanceKM returns the surface distance between a and b.
func GreatCircleDistanceKM(a, b Coordinate) (float64, error) {
	from := s2.LatLngFromDegrees(a.Lat, a.Lon)
	to := s2.LatLngFromDegrees(b.Lat, b.Lon)
	if !from.IsValid() || !to.IsValid() {
		return 0, fmt.Errorf("%w: distance between %v and %v", ErrInvalidArgument, a, b)
	}
	return from.Distance(to).Radians() * EarthRadiusKM, nil
}

// String formats the coordinate the way FMI and geocoders expect it: "lat, lon".
func (c Coordinate) String() string {
	return fmt.Sprintf("%s, %s", formatDegrees(c.Lat), formatDegrees(c.Lon))
}

func validateCoordinate(c Coordinate) error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidArgument, c.Lat)
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidArgument, c.Lon)
	}
	return nil
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
