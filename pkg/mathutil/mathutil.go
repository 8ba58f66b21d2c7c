// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/cone-expert/pkg/constants"
)

// Round rounds a value to the given number of decimal places.
func Round(val float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(val*scale) / scale
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// WithinRelativeTolerance checks if two values agree to a relative tolerance.
// Values near zero are compared absolutely.
func WithinRelativeTolerance(val1, val2, tolerance float64) bool {
	scale := math.Max(math.Abs(val1), math.Abs(val2))
	if scale < 1 {
		return WithinTolerance(val1, val2, tolerance)
	}
	return math.Abs(val1-val2) <= tolerance*scale
}

// RelativeErrorPercent returns |measured - nominal| / nominal as a percentage.
func RelativeErrorPercent(measured, nominal float64) float64 {
	if nominal == 0 {
		return 0
	}
	return math.Abs(measured-nominal) / nominal * constants.PercentageMultiplier
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
