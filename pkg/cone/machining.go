package cone

import (
	"math"

	"github.com/iwvelando/cone-expert/pkg/constants"
	"github.com/iwvelando/cone-expert/pkg/mathutil"
)

// SupportAngle returns the angle to tilt the compound rest of a lathe when
// turning a cone with the given included angle: α/2.
func SupportAngle(angleDeg float64) (float64, error) {
	if !mathutil.IsFinite(angleDeg) || angleDeg <= 0 || angleDeg >= constants.MaxIncludedAngle {
		return 0, newError(DegenerateAngle, "cone.SupportAngle", "angle must be strictly between 0° and 180° (got %g)", angleDeg)
	}
	return angleDeg / 2, nil
}

// CuttingSpeed returns the surface speed in m/min for a workpiece of
// diameterMM turning at rpm: V = π·D·n / 1000.
func CuttingSpeed(diameterMM, rpm float64) (float64, error) {
	if err := checkNonNegative("cone.CuttingSpeed", diameterMM, rpm); err != nil {
		return 0, err
	}
	return math.Pi * diameterMM * rpm / constants.MillimetersPerMeter, nil
}

// FeedPerMinute returns the table feed in mm/min for a feed of feedPerRev
// mm/rev at rpm.
func FeedPerMinute(feedPerRev, rpm float64) (float64, error) {
	if err := checkNonNegative("cone.FeedPerMinute", feedPerRev, rpm); err != nil {
		return 0, err
	}
	return feedPerRev * rpm, nil
}

func checkNonNegative(op string, values ...float64) error {
	for _, v := range values {
		if !mathutil.IsFinite(v) || v < 0 {
			return newError(InvalidDimensions, op, "value must be a non-negative number (got %g)", v)
		}
	}
	return nil
}
