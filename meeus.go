package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/solar"
	munit "github.com/soniakeys/unit"
	"gonum.org/v1/gonum/spatial/r3"
)

// Half width of the central difference used for analytic velocities.
const analyticVelocityStep = 30 * time.Second

// Precession in longitude from the mean equinox of date back to J2000, per Julian century.
const precessionPerCentury = 1.397 * deg2rad

// obliquityJ2000 is the mean obliquity of the ecliptic at J2000.
var obliquityJ2000 = nutation.MeanObliquity(base.J2000).Rad()

// MeeusSun is the low precision geocentric solar ephemeris of Meeus (ch. 25), rotated to J2000 equatorial axes.
// Its center of motion is the Earth.
type MeeusSun struct{}

// State implements the EphemerisSource interface.
func (MeeusSun) State(epoch time.Time) (r3.Vec, r3.Vec, error) {
	pos, vel := centralDifference(sunPosition, epoch)
	return pos, vel, nil
}

func sunPosition(epoch time.Time) r3.Vec {
	T := base.J2000Century(julian.TimeToJD(epoch))
	s, _ := solar.True2000(T)
	R := solar.Radius(T) * AU
	return eclipticJ2000(s, 0, R)
}

// MeeusMoon is the geocentric lunar ephemeris of Meeus (ch. 47), rotated to J2000 equatorial axes.
// Its center of motion is the Earth.
type MeeusMoon struct{}

// State implements the EphemerisSource interface.
func (MeeusMoon) State(epoch time.Time) (r3.Vec, r3.Vec, error) {
	pos, vel := centralDifference(moonPosition, epoch)
	return pos, vel, nil
}

func moonPosition(epoch time.Time) r3.Vec {
	jde := julian.TimeToJD(epoch)
	λ, β, Δ := moonposition.Position(jde)
	λ -= munit.Angle(precessionPerCentury * base.J2000Century(jde))
	return eclipticJ2000(λ, β, Δ*1e3)
}

// MeeusEarth is the heliocentric Earth derived from MeeusSun, which follows the Earth-Moon
// barycenter, and MeeusMoon for the Earth's motion about that barycenter.
// Its center of motion is the Sun.
type MeeusEarth struct{}

// State implements the EphemerisSource interface.
func (MeeusEarth) State(epoch time.Time) (r3.Vec, r3.Vec, error) {
	pos, vel := centralDifference(earthPosition, epoch)
	return pos, vel, nil
}

func earthPosition(epoch time.Time) r3.Vec {
	k := Moon.GM() / (Earth.GM() + Moon.GM())
	return r3.Scale(-1, r3.Add(sunPosition(epoch), r3.Scale(k, moonPosition(epoch))))
}

// eclipticJ2000 converts spherical ecliptic coordinates of J2000 to equatorial Cartesian ones.
func eclipticJ2000(λ, β munit.Angle, r float64) r3.Vec {
	sλ, cλ := math.Sincos(λ.Rad())
	sβ, cβ := math.Sincos(β.Rad())
	return ecliptic2Equatorial(r3.Vec{X: r * cβ * cλ, Y: r * cβ * sλ, Z: r * sβ}, obliquityJ2000)
}

// centralDifference returns the position and its numerical derivative.
func centralDifference(position func(time.Time) r3.Vec, epoch time.Time) (r3.Vec, r3.Vec) {
	before := position(epoch.Add(-analyticVelocityStep))
	after := position(epoch.Add(analyticVelocityStep))
	return position(epoch), r3.Scale(1/(2*analyticVelocityStep.Seconds()), r3.Sub(after, before))
}
