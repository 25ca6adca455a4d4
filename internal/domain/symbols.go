package domain

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// Condition labels.
const (
	ConditionClearNight     = "clear-night"
	ConditionSunny          = "sunny"
	ConditionPartlyCloudy   = "partlycloudy"
	ConditionCloudy         = "cloudy"
	ConditionRainy          = "rainy"
	ConditionPouring        = "pouring"
	ConditionSnowy          = "snowy"
	ConditionSnowyRainy     = "snowy-rainy"
	ConditionLightning      = "lightning"
	ConditionLightningRainy = "lightning-rainy"
	ConditionFog            = "fog"
)

// conditionLabels maps FMI WeatherSymbol3 codes to condition labels.
var conditionLabels = map[int]string{
	0:  ConditionClearNight,
	1:  ConditionSunny,
	2:  ConditionPartlyCloudy,
	21: ConditionRainy,
	22: ConditionPouring,
	23: ConditionPouring,
	3:  ConditionCloudy,
	31: ConditionRainy,
	32: ConditionRainy,
	33: ConditionPouring,
	41: ConditionSnowyRainy,
	42: ConditionCloudy,
	43: ConditionSnowy,
	51: ConditionSnowy,
	52: ConditionSnowy,
	53: ConditionSnowy,
	61: ConditionLightning,
	62: ConditionLightningRainy,
	63: ConditionLightning,
	64: ConditionLightningRainy,
	71: ConditionRainy,
	72: ConditionRainy,
	73: ConditionPouring,
	81: ConditionRainy,
	82: ConditionRainy,
	83: ConditionPouring,
	91: ConditionFog,
	92: ConditionFog,
}

// MapCondition returns the condition label for an FMI symbol code, or "" for
// unknown codes. Clear skies at night map to ConditionClearNight.
func MapCondition(code int, isNight bool) string {
	label, ok := conditionLabels[code]
	if !ok {
		return ""
	}
	if code == 1 && isNight {
		return ConditionClearNight
	}
	return label
}

// IsNight reports whether at falls before sunrise or after sunset on at's
// calendar date at c. On days without a sunrise or sunset (midnight sun,
// polar night) the sun's elevation at that moment decides.
func IsNight(c Coordinate, at time.Time) bool {
	rise, set := sunrise.SunriseSunset(c.Lat, c.Lon, at.Year(), at.Month(), at.Day())
	if rise.IsZero() || set.IsZero() {
		return sunrise.Elevation(c.Lat, c.Lon, at) < 0
	}
	return !at.After(rise) || !at.Before(set)
}

// WindDirectionLabel converts a bearing in degrees to an 8-point compass label.
func WindDirectionLabel(deg *float64) string {
	if deg == nil {
		return "Unavailable"
	}
	d := *deg
	switch {
	case d <= 23, d > 338:
		return "N"
	case d <= 68:
		return "NE"
	case d <= 113:
		return "E"
	case d <= 158:
		return "SE"
	case d <= 203:
		return "S"
	case d <= 248:
		return "SW"
	case d <= 293:
		return "W"
	default:
		return "NW"
	}
}
