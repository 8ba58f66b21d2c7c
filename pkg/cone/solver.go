// Package cone solves the geometry of a truncated cone (a taper) as turned on
// a lathe: included angle, taper ratio, and whichever of the large diameter,
// small diameter, or length is missing.
//
// All values are in the canonical unit (millimeters); see package units for
// conversion. Every function is pure and safe for concurrent use. Bad numeric
// input never panics or yields NaN/Inf; it is reported as an *Error whose Kind
// the caller branches on.
package cone

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/cone-expert/pkg/constants"
	"github.com/iwvelando/cone-expert/pkg/mathutil"
)

// Spec is a possibly partial cone description. A nil field is unknown.
type Spec struct {
	LargeDiameter *float64 `json:"large,omitempty" yaml:"large,omitempty"`
	SmallDiameter *float64 `json:"small,omitempty" yaml:"small,omitempty"`
	Length        *float64 `json:"length,omitempty" yaml:"length,omitempty"`
	AngleDegrees  *float64 `json:"angle,omitempty" yaml:"angle,omitempty"`
}

// Value returns a pointer to v, for filling in a Spec.
func Value(v float64) *float64 {
	return &v
}

// Cone is a fully resolved cone.
type Cone struct {
	LargeDiameter float64 `json:"large" yaml:"large"`
	SmallDiameter float64 `json:"small" yaml:"small"`
	Length        float64 `json:"length" yaml:"length"`
	AngleDegrees  float64 `json:"angle" yaml:"angle"`
}

// Quantity names one of the three linear dimensions of a cone.
type Quantity string

const (
	LargeDiameter Quantity = "D"
	SmallDiameter Quantity = "d"
	Length        Quantity = "l"
)

// Dimension is a solved linear dimension.
type Dimension struct {
	Quantity Quantity `json:"quantity" yaml:"quantity"`
	Value    float64  `json:"value" yaml:"value"`
}

// Result is the outcome of a successful solve.
type Result struct {
	AngleDegrees            float64    `json:"angle" yaml:"angle"`
	TaperRatio              float64    `json:"taperRatio" yaml:"taperRatio"`
	MissingDimension        *Dimension `json:"missingDimension,omitempty" yaml:"missingDimension,omitempty"`
	MeasurementErrorPercent *float64   `json:"measurementErrorPercent,omitempty" yaml:"measurementErrorPercent,omitempty"`
	Cone                    Cone       `json:"cone" yaml:"cone"`
}

// KnownPair selects which two dimensions are known when solving from an angle.
type KnownPair string

const (
	DiametersKnown         KnownPair = "D&d"
	LargeDiameterAndLength KnownPair = "D&l"
	SmallDiameterAndLength KnownPair = "d&l"
)

// ParseKnownPair accepts "D&d", "D & d", "Dd" and the like. Case matters:
// D is the large diameter, d the small one.
func ParseKnownPair(s string) (KnownPair, error) {
	compact := strings.NewReplacer(" ", "", "&", "", ",", "", "+", "").Replace(s)
	switch compact {
	case "Dd":
		return DiametersKnown, nil
	case "Dl", "DL":
		return LargeDiameterAndLength, nil
	case "dl", "dL":
		return SmallDiameterAndLength, nil
	default:
		return "", fmt.Errorf("unknown known-pair %q: expected one of D&d, D&l, d&l", s)
	}
}

// Unknown returns the dimension solved for when p is known.
func (p KnownPair) Unknown() Quantity {
	switch p {
	case DiametersKnown:
		return Length
	case LargeDiameterAndLength:
		return SmallDiameter
	case SmallDiameterAndLength:
		return LargeDiameter
	default:
		return ""
	}
}

// TaperRatio returns k in "1 : k" for a cone with the given included angle:
// k = 1 / (2·tan(α/2)).
func TaperRatio(angleDeg float64) (float64, error) {
	tanHalf, err := halfAngleTangent("cone.TaperRatio", angleDeg)
	if err != nil {
		return 0, err
	}
	return 1 / (2 * tanHalf), nil
}

// SolveFromDimensions computes the included angle and taper ratio from the
// large diameter D, small diameter d and length l. When realD is non-nil and
// positive, the measurement error of the real large diameter against D is
// reported as a percentage.
func SolveFromDimensions(D, d, l float64, realD *float64) (Result, error) {
	const op = "cone.SolveFromDimensions"

	if !mathutil.IsFinite(D) || !mathutil.IsFinite(d) || !mathutil.IsFinite(l) {
		return Result{}, newError(InvalidDimensions, op, "dimensions must be finite")
	}
	if d < 0 {
		return Result{}, newError(InvalidDimensions, op, "small diameter must not be negative (d=%g)", d)
	}
	if D <= d {
		return Result{}, newError(InvalidDimensions, op, "large diameter must exceed small diameter (D=%g, d=%g)", D, d)
	}
	if l <= 0 {
		return Result{}, newError(InvalidDimensions, op, "length must be positive (l=%g)", l)
	}

	halfDelta := (D - d) / 2
	tanHalf := halfDelta / l
	if tanHalf <= constants.DegenerateTangent || tanHalf >= 1/constants.DegenerateTangent {
		return Result{}, newError(DegenerateAngle, op, "tan(α/2)=%g is outside the usable range", tanHalf)
	}

	angleDeg := mathutil.Degrees(2 * math.Atan(tanHalf))
	result := Result{
		AngleDegrees: angleDeg,
		TaperRatio:   1 / (2 * tanHalf),
		Cone: Cone{
			LargeDiameter: D,
			SmallDiameter: d,
			Length:        l,
			AngleDegrees:  angleDeg,
		},
	}

	if realD != nil {
		if !mathutil.IsFinite(*realD) {
			return Result{}, newError(InvalidDimensions, op, "measured diameter must be finite")
		}
		if *realD > 0 {
			errorPercent := mathutil.RelativeErrorPercent(*realD, D)
			result.MeasurementErrorPercent = &errorPercent
		}
	}

	return result, nil
}

// SolveMissingDimension computes the dimension not named by pair from the
// included angle and the two known dimensions in known. Only the fields that
// pair names are read from known.
func SolveMissingDimension(angleDeg float64, pair KnownPair, known Spec) (Result, error) {
	const op = "cone.SolveMissingDimension"

	tanHalf, err := halfAngleTangent(op, angleDeg)
	if err != nil {
		return Result{}, err
	}

	c := Cone{AngleDegrees: angleDeg}
	var solved Dimension

	switch pair {
	case DiametersKnown:
		if err := require(op, pair, known.LargeDiameter, known.SmallDiameter); err != nil {
			return Result{}, err
		}
		c.LargeDiameter, c.SmallDiameter = *known.LargeDiameter, *known.SmallDiameter
		if err := checkDiameters(op, c.LargeDiameter, c.SmallDiameter); err != nil {
			return Result{}, err
		}
		if c.LargeDiameter <= c.SmallDiameter {
			return Result{}, newError(InvalidDimensions, op, "large diameter must exceed small diameter (D=%g, d=%g)", c.LargeDiameter, c.SmallDiameter)
		}
		c.Length = (c.LargeDiameter - c.SmallDiameter) / (2 * tanHalf)
		solved = Dimension{Quantity: Length, Value: c.Length}

	case LargeDiameterAndLength:
		if err := require(op, pair, known.LargeDiameter, known.Length); err != nil {
			return Result{}, err
		}
		c.LargeDiameter, c.Length = *known.LargeDiameter, *known.Length
		if err := checkDiameters(op, c.LargeDiameter, 0); err != nil {
			return Result{}, err
		}
		if err := checkLength(op, c.Length); err != nil {
			return Result{}, err
		}
		c.SmallDiameter = c.LargeDiameter - 2*c.Length*tanHalf
		if c.SmallDiameter < 0 {
			// Tiny negatives are rounding noise on a cone that closes exactly at l.
			if c.SmallDiameter > -constants.RelativeTolerance*c.LargeDiameter {
				c.SmallDiameter = 0
			} else {
				return Result{}, newError(InvalidDimensions, op,
					"cone closes before length %g: small diameter would be %g", c.Length, c.SmallDiameter)
			}
		}
		solved = Dimension{Quantity: SmallDiameter, Value: c.SmallDiameter}

	case SmallDiameterAndLength:
		if err := require(op, pair, known.SmallDiameter, known.Length); err != nil {
			return Result{}, err
		}
		c.SmallDiameter, c.Length = *known.SmallDiameter, *known.Length
		if err := checkDiameters(op, 0, c.SmallDiameter); err != nil {
			return Result{}, err
		}
		if err := checkLength(op, c.Length); err != nil {
			return Result{}, err
		}
		c.LargeDiameter = c.SmallDiameter + 2*c.Length*tanHalf
		solved = Dimension{Quantity: LargeDiameter, Value: c.LargeDiameter}

	default:
		return Result{}, newError(MissingInputs, op, "no known-pair selected (got %q)", string(pair))
	}

	if !mathutil.IsFinite(solved.Value) {
		return Result{}, newError(DegenerateAngle, op, "solved %s is not finite", solved.Quantity)
	}

	return Result{
		AngleDegrees:     angleDeg,
		TaperRatio:       1 / (2 * tanHalf),
		MissingDimension: &solved,
		Cone:             c,
	}, nil
}

// Solve picks the mode from what spec contains: with D, d and l all known it
// solves for the angle, otherwise it needs the angle plus exactly two of them.
func Solve(spec Spec, realD *float64) (Result, error) {
	const op = "cone.Solve"

	if spec.LargeDiameter != nil && spec.SmallDiameter != nil && spec.Length != nil {
		return SolveFromDimensions(*spec.LargeDiameter, *spec.SmallDiameter, *spec.Length, realD)
	}
	if spec.AngleDegrees == nil {
		return Result{}, newError(MissingInputs, op, "need D, d and l, or the angle plus two of them")
	}

	var pair KnownPair
	switch {
	case spec.LargeDiameter != nil && spec.SmallDiameter != nil:
		pair = DiametersKnown
	case spec.LargeDiameter != nil && spec.Length != nil:
		pair = LargeDiameterAndLength
	case spec.SmallDiameter != nil && spec.Length != nil:
		pair = SmallDiameterAndLength
	default:
		return Result{}, newError(MissingInputs, op, "the angle needs two of D, d and l")
	}

	result, err := SolveMissingDimension(*spec.AngleDegrees, pair, spec)
	if err != nil {
		return Result{}, err
	}
	if realD != nil && *realD > 0 && mathutil.IsFinite(*realD) {
		errorPercent := mathutil.RelativeErrorPercent(*realD, result.Cone.LargeDiameter)
		result.MeasurementErrorPercent = &errorPercent
	}
	return result, nil
}

func halfAngleTangent(op string, angleDeg float64) (float64, error) {
	if !mathutil.IsFinite(angleDeg) || angleDeg <= 0 || angleDeg >= constants.MaxIncludedAngle {
		return 0, newError(DegenerateAngle, op, "angle must be strictly between 0° and 180° (got %g)", angleDeg)
	}
	tanHalf := math.Tan(mathutil.Radians(angleDeg / 2))
	if tanHalf < constants.DegenerateTangent || tanHalf > 1/constants.DegenerateTangent {
		return 0, newError(DegenerateAngle, op, "angle %g° gives an unusable tan(α/2)=%g", angleDeg, tanHalf)
	}
	return tanHalf, nil
}

func require(op string, pair KnownPair, values ...*float64) error {
	for _, v := range values {
		if v == nil {
			return newError(MissingInputs, op, "%s requires both of its dimensions", pair)
		}
	}
	return nil
}

func checkDiameters(op string, D, d float64) error {
	if !mathutil.IsFinite(D) || !mathutil.IsFinite(d) {
		return newError(InvalidDimensions, op, "diameters must be finite")
	}
	if D < 0 || d < 0 {
		return newError(InvalidDimensions, op, "diameters must not be negative (D=%g, d=%g)", D, d)
	}
	return nil
}

func checkLength(op string, l float64) error {
	if !mathutil.IsFinite(l) || l <= 0 {
		return newError(InvalidDimensions, op, "length must be positive (l=%g)", l)
	}
	return nil
}
