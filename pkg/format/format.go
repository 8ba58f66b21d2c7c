// Package format renders solver values as fixed-precision strings.
package format

import (
	"fmt"
	"strings"

	"github.com/iwvelando/cone-expert/pkg/constants"
	"github.com/iwvelando/cone-expert/pkg/units"
)

// Length returns a length with two decimals and its unit (e.g., "100.00 mm").
func Length(value float64, unit units.Unit) string {
	return fmt.Sprintf("%s %s", Number(value, constants.LengthPrecision), unit)
}

// Angle returns an angle in degrees with two decimals (e.g., "11.42°").
func Angle(value float64) string {
	return Number(value, constants.LengthPrecision) + "°"
}

// Ratio returns a taper ratio in "1:k" form with three decimals.
func Ratio(value float64) string {
	return "1:" + Number(value, constants.RatioPrecision)
}

// Number returns value with the given decimals and no negative zero.
func Number(value float64, decimals int) string {
	formatted := fmt.Sprintf("%.*f", decimals, value)
	if strings.HasPrefix(formatted, "-") && strings.Trim(formatted, "-0.") == "" {
		return formatted[1:]
	}
	return formatted
}
