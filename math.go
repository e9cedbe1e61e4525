package astro

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	deg2rad = math.Pi / 180
	// SpeedOfLight in meters per second.
	SpeedOfLight = 299792458.0
	// AU is one astronomical unit in meters.
	AU = 1.49597870700e11
)

// unit returns the unit vector of a given vector, or the nil vector if its norm is zero.
func unit(a r3.Vec) r3.Vec {
	n := r3.Norm(a)
	if scalar.EqualWithinAbs(n, 0, 1e-12) {
		return r3.Vec{}
	}
	return r3.Scale(1/n, a)
}

// sign returns the sign of a given number.
func sign(v float64) float64 {
	if scalar.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// finite returns whether all components of v are neither NaN nor infinite.
func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Deg2rad converts degrees to radians, and enforced only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, and enforced only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}

// MxV33 multiplies a 3x3 matrix with a vector. Note that there is no dimension check!
func MxV33(m mat.Matrix, v r3.Vec) r3.Vec {
	var o mat.VecDense
	o.MulVec(m, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec{X: o.AtVec(0), Y: o.AtVec(1), Z: o.AtVec(2)}
}

// MTxV33 multiplies the transpose of a 3x3 matrix with a vector.
func MTxV33(m mat.Matrix, v r3.Vec) r3.Vec {
	return MxV33(m.T(), v)
}

// angleBetween returns the angle between two vectors in radians.
func angleBetween(a, b r3.Vec) float64 {
	// atan2 keeps precision for nearly aligned vectors where acos does not.
	return math.Atan2(r3.Norm(r3.Cross(a, b)), r3.Dot(a, b))
}
