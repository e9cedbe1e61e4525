package astro

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const angleε = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

func vectorsEqual(a, b r3.Vec) bool {
	return vectorsEqualWithin(a, b, 1e-3)
}

// vectorsEqualWithin compares each component with the relative tolerance tol.
func vectorsEqualWithin(a, b r3.Vec, tol float64) bool {
	return scalar.EqualWithinRel(a.X, b.X, tol) && scalar.EqualWithinRel(a.Y, b.Y, tol) && scalar.EqualWithinRel(a.Z, b.Z, tol)
}

// anglesEqual returns whether two angles in Radians are equal.
func anglesEqual(a, b float64) (bool, error) {
	diff := math.Mod(math.Abs(a-b), 2*math.Pi)
	if diff < angleε {
		return true, nil
	}
	return false, fmt.Errorf("difference of %3.10f degrees", math.Abs(Rad2deg(diff)))
}
