// Package domain models weather data published by the Finnish Meteorological
// Institute (FMI) open-data services and the pure derivations built on it.
//
// # Data Sources
//
// All feeds come from the FMI WFS endpoint (https://opendata.fmi.fi/wfs) via
// stored queries. Point forecasts, station observations and sea-level
// forecasts use the "simple" format: one BsWfsElement per (time, parameter)
// pair. Lightning observations use the "multipointcoverage" format: one
// block of "lat lon epoch" positions and a parallel block of value tuples.
//
// # Conventions
//
// Coordinates are WGS-84 decimal degrees. Distances are kilometres on a
// spherical earth of radius [EarthRadiusKM]. FMI reports missing values as
// the literal "NaN"; those decode to nil metric pointers and surface as
// "unavailable" to readers.
//
// Weather condition codes follow FMI's WeatherSymbol3 scheme:
//
//	1 clear | 2 partly cloudy | 3 cloudy
//	21-23 showers | 31-33 rain | 41-43, 51-53 snow
//	61-64 thunder | 71-73, 81-83 sleet | 91-92 fog
//
// Code 0 is not issued by FMI; it stands for "clear at night" and is only
// produced by [MapCondition].
//
// # Best Condition
//
// The best time of day is the warmest remaining hour of today among the
// forecast points, gated on at least one point passing every threshold in
// [Thresholds] and having a favorable condition code. See
// [EvaluateBestCondition].
package domain
