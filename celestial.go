package astro

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// J2000 is the reference epoch. Time scales are not distinguished in this package.
var J2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// CelestialBody defines a celestial body, in SI units.
// Bodies are shared read-only by every force of every propagation: use the With* helpers
// to derive a modified copy instead of mutating a catalog body.
type CelestialBody struct {
	Name             string
	NAIFID           int
	EquatorialRadius float64 // m
	PolarRadius      float64 // m
	μ                float64 // m^3/s^2
	Luminosity       float64 // W, only for light sources
	J2, J3, J4       float64
	Atmosphere       AtmosphericModel // nil when airless
	Field            GravityField     // nil for a point mass
	Orientation      Orientation      // nil when the body-fixed frame is the inertial one
}

// NewCelestialBody returns a spherical point-mass body.
func NewCelestialBody(name string, naifID int, gm, radius float64) *CelestialBody {
	return &CelestialBody{Name: name, NAIFID: naifID, μ: gm, EquatorialRadius: radius, PolarRadius: radius}
}

// GM returns μ (which is unexported because it's a lowercase letter)
func (c *CelestialBody) GM() float64 {
	return c.μ
}

// J returns the perturbing J_n factor for the provided n.
func (c *CelestialBody) J(n uint8) float64 {
	switch n {
	case 2:
		return c.J2
	case 3:
		return c.J3
	case 4:
		return c.J4
	default:
		return 0.0
	}
}

// Flattening returns the ellipsoid flattening.
func (c *CelestialBody) Flattening() float64 {
	if c.EquatorialRadius == 0 {
		return 0
	}
	return (c.EquatorialRadius - c.PolarRadius) / c.EquatorialRadius
}

// String implements the Stringer interface.
func (c *CelestialBody) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial body is the same.
func (c *CelestialBody) Equals(b *CelestialBody) bool {
	if c == nil || b == nil {
		return c == b
	}
	return c.NAIFID == b.NAIFID
}

// AirDensity returns the atmospheric density in kg/m^3 at the provided altitude in meters.
// Airless bodies return zero.
func (c *CelestialBody) AirDensity(altitude float64) float64 {
	if c.Atmosphere == nil {
		return 0
	}
	return c.Atmosphere.Density(altitude)
}

// EvaluateGravitationalAcceleration returns the gravitational acceleration of this body on
// a state which must be expressed relative to this body.
func (c *CelestialBody) EvaluateGravitationalAcceleration(sv StateVector) (r3.Vec, error) {
	if !c.Equals(sv.Observer) {
		return r3.Vec{}, fmt.Errorf("%w: state relative to %v, expected %s", ErrObserverMismatch, sv.Observer, c.Name)
	}
	if c.Field == nil {
		r := sv.RNorm()
		return r3.Scale(-c.μ/(r*r*r), sv.Position), nil
	}
	rBF, m := toBodyFixed(c.Orientation, sv.Epoch, sv.Position)
	return fromBodyFixed(m, c.Field.Acceleration(c, rBF)), nil
}

// WithGravityField returns a copy of this body using the provided gravity field.
func (c *CelestialBody) WithGravityField(f GravityField) *CelestialBody {
	cpy := *c
	cpy.Field = f
	return &cpy
}

// WithAtmosphere returns a copy of this body using the provided atmosphere.
func (c *CelestialBody) WithAtmosphere(a AtmosphericModel) *CelestialBody {
	cpy := *c
	cpy.Atmosphere = a
	return &cpy
}

// WithOrientation returns a copy of this body using the provided orientation.
func (c *CelestialBody) WithOrientation(o Orientation) *CelestialBody {
	cpy := *c
	cpy.Orientation = o
	return &cpy
}

/* Definitions */

// SolarSystemBarycenter is the massless inertial origin of the solar system.
var SolarSystemBarycenter = &CelestialBody{Name: "SSB", NAIFID: 0}

// Sun is our closest star.
var Sun = &CelestialBody{Name: "Sun", NAIFID: 10, EquatorialRadius: 695700e3, PolarRadius: 695700e3, μ: 1.32712440041e20, Luminosity: 3.828e26}

// Earth is home.
var Earth = &CelestialBody{
	Name:             "Earth",
	NAIFID:           399,
	EquatorialRadius: 6378137.0,
	PolarRadius:      6356752.314245,
	μ:                3.986004418e14,
	J2:               1.08262668e-3,
	J3:               -2.53265649e-6,
	J4:               -1.61962159e-6,
	Atmosphere:       ExponentialAtmosphere{},
	Orientation:      GreenwichSidereal{},
}

// Moon is Earth's only natural satellite.
var Moon = &CelestialBody{Name: "Moon", NAIFID: 301, EquatorialRadius: 1737400, PolarRadius: 1737400, μ: 4.9028000661637961e12}

// CelestialBodyFromString returns the catalog body from its name.
func CelestialBodyFromString(name string) (*CelestialBody, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ssb", "solar system barycenter":
		return SolarSystemBarycenter, nil
	case "sun":
		return Sun, nil
	case "earth":
		return Earth, nil
	case "moon":
		return Moon, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBody, name)
	}
}

// angularSize returns the apparent diameter in radians of a body seen from the provided distance.
func (c *CelestialBody) angularSize(distance float64) float64 {
	if distance <= c.EquatorialRadius {
		return math.Pi
	}
	return 2 * math.Asin(c.EquatorialRadius/distance)
}
