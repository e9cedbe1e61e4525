package astro

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	eccentricityε = 5e-5                         // 0.00005
	angleOrbitε   = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
	distanceε     = 20.0                         // 20 m
)

// KeplerianElements defines an osculating orbit. Angles are in radians and the semi-major
// axis in meters.
type KeplerianElements struct {
	SMA, Ecc, Inc, RAAN, ArgPeri, TrueAnomaly float64
	Body                                      *CelestialBody
	Epoch                                     time.Time
}

// NewKeplerianElements creates an orbit from its elements.
// WARNING: Angles must be in degrees not radian.
func NewKeplerianElements(a, e, i, Ω, ω, ν float64, body *CelestialBody, epoch time.Time) (KeplerianElements, error) {
	if body == nil {
		return KeplerianElements{}, ErrNilBody
	}
	if e < 0 || e >= 1 {
		return KeplerianElements{}, fmt.Errorf("only elliptical orbits are supported, e=%f", e)
	}
	if a <= 0 {
		return KeplerianElements{}, fmt.Errorf("invalid semi-major axis %f", a)
	}
	return KeplerianElements{SMA: a, Ecc: e, Inc: i * deg2rad, RAAN: Deg2rad(Ω), ArgPeri: Deg2rad(ω), TrueAnomaly: Deg2rad(ν), Body: body, Epoch: epoch}, nil
}

// Energyξ returns the specific mechanical energy ξ.
func (o KeplerianElements) Energyξ() float64 {
	return -o.Body.GM() / (2 * o.SMA)
}

// TrueLongλ returns the *approximate* true longitude (cf. Vallado page 103).
func (o KeplerianElements) TrueLongλ() float64 {
	return math.Mod(o.ArgPeri+o.RAAN+o.TrueAnomaly, 2*math.Pi)
}

// ArgLatitudeU returns the argument of latitude.
func (o KeplerianElements) ArgLatitudeU() float64 {
	return math.Mod(o.TrueAnomaly+o.ArgPeri, 2*math.Pi)
}

// SemiParameter returns the semi parameter.
func (o KeplerianElements) SemiParameter() float64 {
	return o.SMA * (1 - o.Ecc*o.Ecc)
}

// Apoapsis returns the apoapsis radius.
func (o KeplerianElements) Apoapsis() float64 {
	return o.SMA * (1 + o.Ecc)
}

// Periapsis returns the periapsis radius.
func (o KeplerianElements) Periapsis() float64 {
	return o.SMA * (1 - o.Ecc)
}

// Period returns the period of this orbit.
func (o KeplerianElements) Period() time.Duration {
	seconds := 2 * math.Pi * math.Sqrt(math.Pow(o.SMA, 3)/o.Body.GM())
	return time.Duration(seconds * float64(time.Second))
}

// ToStateVector returns the state relative to the orbit's body, in ICRF.
func (o KeplerianElements) ToStateVector() StateVector {
	p := o.SemiParameter()
	μ := o.Body.GM()
	// Support special orbits.
	ν, ω, Ω := o.TrueAnomaly, o.ArgPeri, o.RAAN
	if o.Ecc < eccentricityε {
		ω = 0
		if o.Inc < angleOrbitε {
			// Circular equatorial
			Ω = 0
			ν = o.TrueLongλ()
		} else {
			// Circular inclined
			ν = o.ArgLatitudeU()
		}
	} else if o.Inc < angleOrbitε {
		Ω = 0
		ω = math.Mod(o.ArgPeri+o.RAAN, 2*math.Pi)
	}
	sinν, cosν := math.Sincos(ν)
	rPQW := r3.Vec{X: p * cosν / (1 + o.Ecc*cosν), Y: p * sinν / (1 + o.Ecc*cosν)}
	vPQW := r3.Vec{X: -math.Sqrt(μ/p) * sinν, Y: math.Sqrt(μ/p) * (o.Ecc + cosν)}
	m := pqw2Inertial(o.Inc, ω, Ω)
	return NewStateVector(o.Epoch, MxV33(m, rPQW), MxV33(m, vPQW), o.Body)
}

// pqw2Inertial returns the rotation from the perifocal frame.
func pqw2Inertial(i, ω, Ω float64) mat.Matrix {
	var tmp, m mat.Dense
	tmp.Mul(R3(-Ω), R1(-i))
	m.Mul(&tmp, R3(-ω))
	return &m
}

// KeplerianFromStateVector returns the osculating elements of a state relative to a body (Vallado's RV2COE).
func KeplerianFromStateVector(sv StateVector) (KeplerianElements, error) {
	if sv.Observer == nil {
		return KeplerianElements{}, ErrNilBody
	}
	μ := sv.Observer.GM()
	R, V := sv.Position, sv.Velocity
	r, v := r3.Norm(R), r3.Norm(V)
	if r == 0 {
		return KeplerianElements{}, errors.New("null position")
	}
	hVec := r3.Cross(R, V)
	n := r3.Cross(r3.Vec{Z: 1}, hVec)
	ξ := (v*v)/2 - μ/r
	a := -μ / (2 * ξ)
	eVec := r3.Scale(1/μ, r3.Sub(r3.Scale(v*v-μ/r, R), r3.Scale(r3.Dot(R, V), V)))
	e := r3.Norm(eVec)
	if e >= 1 {
		return KeplerianElements{}, fmt.Errorf("parabolic and hyperbolic orbits not supported, e=%f", e)
	}
	i := math.Acos(hVec.Z / r3.Norm(hVec))
	ω := math.Acos(r3.Dot(n, eVec) / (r3.Norm(n) * e))
	if math.IsNaN(ω) {
		ω = 0
	}
	if eVec.Z < 0 {
		ω = 2*math.Pi - ω
	}
	if r3.Norm(n) == 0 {
		// Equatorial: longitude of periapsis.
		ω = math.Mod(math.Atan2(eVec.Y, eVec.X)+2*math.Pi, 2*math.Pi)
	}
	Ω := math.Acos(n.X / r3.Norm(n))
	if math.IsNaN(Ω) {
		Ω = 0
	}
	if n.Y < 0 {
		Ω = 2*math.Pi - Ω
	}
	var ν float64
	if e < eccentricityε {
		// Circular: measure from the node, or from X when equatorial.
		ref := unit(n)
		if r3.Norm(n) == 0 {
			ref = r3.Vec{X: 1}
		}
		ν = angleBetween(ref, R)
		if r3.Dot(r3.Cross(ref, R), hVec) < 0 {
			ν = 2*math.Pi - ν
		}
		ν = math.Mod(ν-ω+2*math.Pi, 2*math.Pi)
	} else {
		cosν := r3.Dot(eVec, R) / (e * r)
		if abscosν := math.Abs(cosν); abscosν > 1 && scalar.EqualWithinAbs(abscosν, 1, 1e-12) {
			cosν = sign(cosν)
		}
		ν = math.Acos(cosν)
		if r3.Dot(R, V) < 0 {
			ν = 2*math.Pi - ν
		}
	}
	return KeplerianElements{SMA: a, Ecc: e, Inc: i, RAAN: math.Mod(Ω, 2*math.Pi), ArgPeri: math.Mod(ω, 2*math.Pi), TrueAnomaly: math.Mod(ν, 2*math.Pi), Body: sv.Observer, Epoch: sv.Epoch}, nil
}

// String implements the stringer interface (hence the value receiver)
func (o KeplerianElements) String() string {
	if o.Ecc < eccentricityε {
		// Circular orbit
		if o.Inc > angleOrbitε {
			return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f u=%.3f", o.SMA, o.Ecc, Rad2deg(o.Inc), Rad2deg(o.RAAN), Rad2deg(o.ArgLatitudeU()))
		}
		// Equatorial
		return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f λ=%.3f", o.SMA, o.Ecc, Rad2deg(o.Inc), Rad2deg(o.RAAN), Rad2deg(o.TrueLongλ()))
	}
	return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f ω=%.3f ν=%.3f", o.SMA, o.Ecc, Rad2deg(o.Inc), Rad2deg(o.RAAN), Rad2deg(o.ArgPeri), Rad2deg(o.TrueAnomaly))
}

// Equals returns whether two orbits are identical with free true anomaly.
func (o KeplerianElements) Equals(o1 KeplerianElements) (bool, error) {
	if !o.Body.Equals(o1.Body) {
		return false, errors.New("different body")
	}
	if !scalar.EqualWithinAbs(o.SMA, o1.SMA, distanceε) {
		return false, errors.New("semi major axis invalid")
	}
	if !scalar.EqualWithinAbs(o.Ecc, o1.Ecc, eccentricityε) {
		return false, errors.New("eccentricity invalid")
	}
	if !scalar.EqualWithinAbs(o.Inc, o1.Inc, angleOrbitε) {
		return false, errors.New("inclination invalid")
	}
	if o.Inc > angleOrbitε {
		if ok, _ := anglesWithin(o.RAAN, o1.RAAN, angleOrbitε); !ok {
			return false, errors.New("RAAN invalid")
		}
	}
	if o.Ecc > eccentricityε {
		if ok, _ := anglesWithin(o.ArgPeri, o1.ArgPeri, angleOrbitε); !ok {
			return false, errors.New("argument of periapsis invalid")
		}
	}
	return true, nil
}

// StrictlyEquals returns whether two orbits are identical, including their position on the orbit.
func (o KeplerianElements) StrictlyEquals(o1 KeplerianElements) (bool, error) {
	if ok, err := o.Equals(o1); !ok {
		return false, err
	}
	if ok, _ := anglesWithin(o.TrueLongλ(), o1.TrueLongλ(), angleOrbitε); !ok {
		return false, errors.New("true longitude invalid")
	}
	return true, nil
}

// anglesWithin returns whether two angles are equal modulo a full turn.
func anglesWithin(a, b, ε float64) (bool, float64) {
	diff := math.Mod(math.Abs(a-b), 2*math.Pi)
	diff = math.Min(diff, 2*math.Pi-diff)
	return diff < ε, diff
}

// Radii2ae returns the semi major axis and the eccentricty from the radii.
func Radii2ae(rA, rP float64) (a, e float64, err error) {
	if rA < rP {
		return 0, 0, errors.New("periapsis cannot be greater than apoapsis")
	}
	a = (rP + rA) / 2
	e = (rA - rP) / (rA + rP)
	return a, e, nil
}
