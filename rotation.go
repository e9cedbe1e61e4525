package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// EarthRotationRate is the average Earth rotation rate in radians per second.
	EarthRotationRate = 7.2921158553e-5
)

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 rotation about the 2nd axis.
func R2(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// Orientation returns the rotation from the inertial frame to a body-fixed frame.
type Orientation interface {
	BodyFixed(epoch time.Time) mat.Matrix
}

// UniformRotation spins about the inertial Z axis at a constant rate.
// The pole is assumed aligned with Z, which is good enough for altitude and
// zonal terms but not for precise longitudes.
type UniformRotation struct {
	Rate   float64   // rad/s
	W0     float64   // prime meridian angle at Epoch0, in radians
	Epoch0 time.Time // reference epoch of W0
}

// BodyFixed implements the Orientation interface.
func (u UniformRotation) BodyFixed(epoch time.Time) mat.Matrix {
	θ := u.W0 + u.Rate*epoch.Sub(u.Epoch0).Seconds()
	return R3(math.Mod(θ, 2*math.Pi))
}

// GreenwichSidereal orients the Earth with the Greenwich mean sidereal time, ignoring
// precession, nutation and polar motion.
type GreenwichSidereal struct{}

// BodyFixed implements the Orientation interface.
func (GreenwichSidereal) BodyFixed(epoch time.Time) mat.Matrix {
	return R3(sidereal.Mean(julian.TimeToJD(epoch)).Angle().Rad())
}

// toBodyFixed rotates an inertial vector with the provided orientation, if any.
func toBodyFixed(o Orientation, epoch time.Time, v r3.Vec) (r3.Vec, mat.Matrix) {
	if o == nil {
		return v, nil
	}
	m := o.BodyFixed(epoch)
	return MxV33(m, v), m
}

// fromBodyFixed undoes toBodyFixed.
func fromBodyFixed(m mat.Matrix, v r3.Vec) r3.Vec {
	if m == nil {
		return v
	}
	return MTxV33(m, v)
}

// ecliptic2Equatorial rotates ecliptic coordinates to equatorial ones for the obliquity ε.
func ecliptic2Equatorial(v r3.Vec, ε float64) r3.Vec {
	return MxV33(R1(-ε), v)
}
