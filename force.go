package astro

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Force is one contributor to the total acceleration of a spacecraft.
// Apply must not modify anything: forces are immutable once built.
type Force interface {
	// Apply returns the acceleration in m/s^2 in the frame of the state.
	Apply(sv StateVector) (r3.Vec, error)
	fmt.Stringer
}

// relativeTo re-centers the state on the provided body, looking up the body's geometric
// state relative to the current observer when needed.
func relativeTo(env Environment, sv StateVector, body *CelestialBody) (StateVector, error) {
	if body.Equals(sv.Observer) {
		return sv, nil
	}
	if env == nil {
		return sv, fmt.Errorf("%w: cannot re-center from %v on %s", ErrNilEnvironment, sv.Observer, body.Name)
	}
	center, err := env.Ephemeris(sv.Epoch, body, sv.Observer, sv.Frame, NoAberration)
	if err != nil {
		return sv, err
	}
	rel := sv.Sub(center)
	rel.Observer = body
	return rel, nil
}

// GravitationalAcceleration is the attraction of a single body, point mass or with its gravity field.
type GravitationalAcceleration struct {
	body *CelestialBody
	env  Environment
}

// NewGravitationalAcceleration returns the gravitational force of the body. The environment
// is only needed when states are not expressed relative to that body.
func NewGravitationalAcceleration(body *CelestialBody, env Environment) (*GravitationalAcceleration, error) {
	if body == nil {
		return nil, ErrNilBody
	}
	return &GravitationalAcceleration{body: body, env: env}, nil
}

// Apply implements the Force interface.
func (g *GravitationalAcceleration) Apply(sv StateVector) (r3.Vec, error) {
	rel, err := relativeTo(g.env, sv, g.body)
	if err != nil {
		return r3.Vec{}, err
	}
	return g.body.EvaluateGravitationalAcceleration(rel)
}

func (g *GravitationalAcceleration) String() string {
	return "gravity of " + g.body.Name
}
