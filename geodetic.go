package astro

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Planetodetic holds ellipsoidal coordinates.
type Planetodetic struct {
	Latitude, Longitude float64 // radians
	Altitude            float64 // meters above the ellipsoid
}

// ToPlanetodetic converts a body-fixed position to planetodetic coordinates on the
// body's ellipsoid (iterative, Vallado algorithm 12).
func (c *CelestialBody) ToPlanetodetic(r r3.Vec) Planetodetic {
	a := c.EquatorialRadius
	f := c.Flattening()
	e2 := f * (2 - f)
	p := math.Hypot(r.X, r.Y)
	λ := math.Atan2(r.Y, r.X)
	φ := math.Atan2(r.Z, p*(1-e2))
	var h float64
	for i := 0; i < 10; i++ {
		sφ, cφ := math.Sincos(φ)
		N := a / math.Sqrt(1-e2*sφ*sφ)
		// Valid at the poles, unlike p/cos(φ) - N.
		h = p*cφ + r.Z*sφ - a*a/N
		prev := φ
		φ = math.Atan2(r.Z, p*(1-e2*N/(N+h)))
		if math.Abs(φ-prev) < 1e-13 {
			break
		}
	}
	sφ, cφ := math.Sincos(φ)
	N := a / math.Sqrt(1-e2*sφ*sφ)
	h = p*cφ + r.Z*sφ - a*a/N
	return Planetodetic{Latitude: φ, Longitude: λ, Altitude: h}
}

// FromPlanetodetic converts planetodetic coordinates to a body-fixed position.
func (c *CelestialBody) FromPlanetodetic(g Planetodetic) r3.Vec {
	a := c.EquatorialRadius
	f := c.Flattening()
	e2 := f * (2 - f)
	sφ, cφ := math.Sincos(g.Latitude)
	sλ, cλ := math.Sincos(g.Longitude)
	N := a / math.Sqrt(1-e2*sφ*sφ)
	return r3.Vec{
		X: (N + g.Altitude) * cφ * cλ,
		Y: (N + g.Altitude) * cφ * sλ,
		Z: (N*(1-e2) + g.Altitude) * sφ,
	}
}
