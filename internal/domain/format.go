package domain

import (
	"math"
	"strconv"
)

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
