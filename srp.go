package astro

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// SolarRadiationPressure is the radiation pressure of a light source on a spacecraft,
// shaded by the occulting bodies. The area to mass ratio is computed once, from the
// total mass at construction.
type SolarRadiationPressure struct {
	light     *CelestialBody
	occulters []*CelestialBody
	env       Environment
	name      string
	k         float64 // L/(4πc) * A/m * Cr
}

// NewSolarRadiationPressure returns the radiation pressure of light on the spacecraft.
func NewSolarRadiationPressure(sc *Spacecraft, light *CelestialBody, occulters []*CelestialBody, env Environment) (*SolarRadiationPressure, error) {
	if sc == nil {
		return nil, ErrNilSpacecraft
	}
	if light == nil {
		return nil, ErrNilBody
	}
	if occulters == nil {
		return nil, ErrNilOcculters
	}
	for i, o := range occulters {
		if o == nil {
			return nil, fmt.Errorf("%w: occulter #%d", ErrNilBody, i)
		}
	}
	if env == nil {
		return nil, ErrNilEnvironment
	}
	if light.Luminosity <= 0 {
		return nil, fmt.Errorf("%s is not a light source", light.Name)
	}
	k := light.Luminosity / (4 * math.Pi * SpeedOfLight) * sc.SectionalArea / sc.TotalMass() * sc.SolarRadiationCoefficient
	return &SolarRadiationPressure{light: light, occulters: append([]*CelestialBody(nil), occulters...), env: env, name: sc.Name, k: k}, nil
}

// Apply implements the Force interface.
func (p *SolarRadiationPressure) Apply(sv StateVector) (r3.Vec, error) {
	var shadow float64
	for _, o := range p.occulters {
		if o.Equals(p.light) {
			continue
		}
		s, err := p.env.ShadowFraction(o, sv)
		if err != nil {
			return r3.Vec{}, err
		}
		if s >= 1 {
			return r3.Vec{}, nil
		}
		shadow = math.Max(shadow, s)
	}
	light, err := p.env.Ephemeris(sv.Epoch, p.light, sv.Observer, sv.Frame, LT)
	if err != nil {
		return r3.Vec{}, err
	}
	r := r3.Sub(sv.Position, light.Position)
	d := r3.Norm(r)
	return r3.Scale(p.k*(1-shadow)/(d*d*d), r), nil
}

func (p *SolarRadiationPressure) String() string {
	return fmt.Sprintf("%s radiation pressure on %s", p.light.Name, p.name)
}
