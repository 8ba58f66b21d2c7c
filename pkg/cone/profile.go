package cone

import (
	"math"

	"github.com/iwvelando/cone-expert/pkg/constants"
)

// Point is a vertex of the side profile. X runs along the cone axis from the
// large end, Y is the signed radius.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Point3 is a vertex of the 3D ring mesh. Z runs along the cone axis.
type Point3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Outline returns the closed side-view polygon of c, clockwise from the top
// of the large end.
func Outline(c Cone) ([]Point, error) {
	if err := checkDrawable("cone.Outline", c); err != nil {
		return nil, err
	}
	R, r := c.LargeDiameter/2, c.SmallDiameter/2
	return []Point{
		{X: 0, Y: R},
		{X: c.Length, Y: r},
		{X: c.Length, Y: -r},
		{X: 0, Y: -R},
	}, nil
}

// Rings returns steps vertices around the large circle at z=0 followed by
// steps vertices around the small circle at z=l. steps <= 0 uses
// constants.DefaultRingSteps.
func Rings(c Cone, steps int) ([]Point3, error) {
	if err := checkDrawable("cone.Rings", c); err != nil {
		return nil, err
	}
	if steps <= 0 {
		steps = constants.DefaultRingSteps
	}

	points := make([]Point3, 0, 2*steps)
	for _, ring := range []struct{ radius, z float64 }{
		{c.LargeDiameter / 2, 0},
		{c.SmallDiameter / 2, c.Length},
	} {
		for i := 0; i < steps; i++ {
			theta := 2 * math.Pi * float64(i) / float64(steps)
			points = append(points, Point3{
				X: ring.radius * math.Cos(theta),
				Y: ring.radius * math.Sin(theta),
				Z: ring.z,
			})
		}
	}
	return points, nil
}

func checkDrawable(op string, c Cone) error {
	if err := checkDiameters(op, c.LargeDiameter, c.SmallDiameter); err != nil {
		return err
	}
	if c.LargeDiameter <= c.SmallDiameter {
		return newError(InvalidDimensions, op, "large diameter must exceed small diameter (D=%g, d=%g)", c.LargeDiameter, c.SmallDiameter)
	}
	return checkLength(op, c.Length)
}
