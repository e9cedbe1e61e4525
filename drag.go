package astro

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// AtmosphericDrag is the drag of a body's atmosphere on a spacecraft.
//
// The velocity used is the inertial velocity relative to the body's center: the
// co-rotation of the atmosphere is not removed, which overestimates drag on prograde orbits.
// The area to mass ratio is computed once, from the total mass at construction.
type AtmosphericDrag struct {
	body *CelestialBody
	env  Environment
	name string
	k    float64 // A/m * Cd
}

// NewAtmosphericDrag returns the drag force of the body's atmosphere on the spacecraft.
func NewAtmosphericDrag(sc *Spacecraft, body *CelestialBody, env Environment) (*AtmosphericDrag, error) {
	if sc == nil {
		return nil, ErrNilSpacecraft
	}
	if body == nil {
		return nil, ErrNilBody
	}
	if body.Atmosphere == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAtmosphere, body.Name)
	}
	return &AtmosphericDrag{body: body, env: env, name: sc.Name, k: sc.SectionalArea / sc.TotalMass() * sc.DragCoefficient}, nil
}

// Apply implements the Force interface.
func (d *AtmosphericDrag) Apply(sv StateVector) (r3.Vec, error) {
	rel, err := relativeTo(d.env, sv, d.body)
	if err != nil {
		return r3.Vec{}, err
	}
	rBF, _ := toBodyFixed(d.body.Orientation, rel.Epoch, rel.Position)
	ρ := d.body.AirDensity(d.body.ToPlanetodetic(rBF).Altitude)
	return r3.Scale(-0.5*ρ*d.k*rel.VNorm(), rel.Velocity), nil
}

func (d *AtmosphericDrag) String() string {
	return fmt.Sprintf("%s atmospheric drag on %s", d.body.Name, d.name)
}
