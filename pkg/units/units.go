// Package units normalizes user-entered lengths to the canonical unit
// (millimeters) and converts results back for display.
package units

import (
	"fmt"
	"strings"

	"github.com/iwvelando/cone-expert/pkg/constants"
)

// Unit is a linear length unit.
type Unit string

const (
	// Millimeter is the canonical unit.
	Millimeter Unit = "mm"
	// Inch is 25.4 millimeters.
	Inch Unit = "in"
)

// Parse converts a user-supplied unit name into a Unit.
func Parse(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mm", "millimeter", "millimeters", "millimetre", "millimetres":
		return Millimeter, nil
	case "in", "inch", "inches", `"`:
		return Inch, nil
	default:
		return "", fmt.Errorf("unsupported unit %q: expected mm or in", s)
	}
}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	return u == Millimeter || u == Inch
}

// Factor returns the multiplier from u to millimeters. Unknown units are
// treated as millimeters.
func (u Unit) Factor() float64 {
	if u == Inch {
		return constants.MillimetersPerInch
	}
	return 1.0
}

func (u Unit) String() string {
	if u == "" {
		return string(Millimeter)
	}
	return string(u)
}

// ToCanonical converts value expressed in unit to millimeters.
func ToCanonical(value float64, unit Unit) float64 {
	return value * unit.Factor()
}

// FromCanonical converts a millimeter value back to unit.
func FromCanonical(value float64, unit Unit) float64 {
	return value / unit.Factor()
}
