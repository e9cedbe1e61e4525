package astro

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ThirdBodyPerturbation is the tidal acceleration of a perturbing body on a spacecraft
// orbiting a central body: the difference between the perturber's pull on the spacecraft
// and its pull on the central body.
//
// The direct difference of both pulls cancels catastrophically when the spacecraft is close to
// the central body compared to the perturber, so Battin's formulation is used instead.
type ThirdBodyPerturbation struct {
	perturber, central *CelestialBody
	env                Environment
}

// NewThirdBodyPerturbation returns the perturbation of perturber on states relative to central.
func NewThirdBodyPerturbation(perturber, central *CelestialBody, env Environment) (*ThirdBodyPerturbation, error) {
	if perturber == nil || central == nil {
		return nil, ErrNilBody
	}
	if env == nil {
		return nil, ErrNilEnvironment
	}
	if perturber.Equals(central) {
		return nil, fmt.Errorf("%s cannot perturb itself", central.Name)
	}
	return &ThirdBodyPerturbation{perturber: perturber, central: central, env: env}, nil
}

// Apply implements the Force interface.
func (p *ThirdBodyPerturbation) Apply(sv StateVector) (r3.Vec, error) {
	if !p.central.Equals(sv.Observer) {
		return r3.Vec{}, fmt.Errorf("%w: state relative to %v, expected %s", ErrObserverMismatch, sv.Observer, p.central.Name)
	}
	pert, err := p.env.Ephemeris(sv.Epoch, p.perturber, p.central, sv.Frame, NoAberration)
	if err != nil {
		return r3.Vec{}, err
	}
	return battin(p.perturber.GM(), sv.Position, pert.Position), nil
}

func (p *ThirdBodyPerturbation) String() string {
	return fmt.Sprintf("%s perturbation about %s", p.perturber.Name, p.central.Name)
}

// battin returns the tidal acceleration of a body of gravitational parameter μ located at d
// on a spacecraft at r, both relative to the central body.
func battin(μ float64, r, d r3.Vec) r3.Vec {
	d2 := r3.Norm2(d)
	q := r3.Dot(r, r3.Sub(r, r3.Scale(2, d))) / d2
	q32 := math.Pow(1+q, 1.5)
	dn := math.Sqrt(d2)
	return r3.Scale(-μ/(d2*dn*q32), r3.Add(r, r3.Scale(BattinF(q), d)))
}

// BattinF is Battin's f(q) = (1+q)^(3/2) - 1, rearranged to keep its precision for small q.
func BattinF(q float64) float64 {
	return q * (3 + 3*q + q*q) / (1 + math.Pow(1+q, 1.5))
}
