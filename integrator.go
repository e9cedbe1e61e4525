package astro

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Integrator fills an ephemeris one slot at a time.
//
// The acceleration at the previous slot is passed in and the one at the new slot is
// returned, so the caller owns the only mutable state of a run.
type Integrator interface {
	// Acceleration returns the total acceleration on the state.
	Acceleration(sv StateVector) (r3.Vec, error)
	// Integrate computes eph[idx] from eph[idx-1], whose acceleration is prevAcc. The epoch of
	// eph[idx] must already be set. It returns the acceleration at eph[idx].
	Integrate(eph Ephemeris, idx int, prevAcc r3.Vec) (r3.Vec, error)
}

// VelocityVerlet is the kick-drift-kick symplectic integrator.
type VelocityVerlet struct {
	forces []Force
}

// NewVelocityVerlet returns an integrator summing the provided forces in order.
func NewVelocityVerlet(forces ...Force) (*VelocityVerlet, error) {
	for i, f := range forces {
		if f == nil {
			return nil, fmt.Errorf("force #%d is nil", i)
		}
	}
	return &VelocityVerlet{forces: forces}, nil
}

// Forces returns the forces of this integrator, in summation order.
func (vv *VelocityVerlet) Forces() []Force {
	return append([]Force(nil), vv.forces...)
}

// Acceleration implements the Integrator interface.
func (vv *VelocityVerlet) Acceleration(sv StateVector) (r3.Vec, error) {
	var acc r3.Vec
	for _, f := range vv.forces {
		a, err := f.Apply(sv)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("%s: %w", f, err)
		}
		acc = r3.Add(acc, a)
	}
	return acc, nil
}

// Integrate implements the Integrator interface.
func (vv *VelocityVerlet) Integrate(eph Ephemeris, idx int, prevAcc r3.Vec) (r3.Vec, error) {
	if idx < 1 {
		return r3.Vec{}, fmt.Errorf("%w: index %d", ErrNoPredecessor, idx)
	}
	if idx >= len(eph) {
		return r3.Vec{}, fmt.Errorf("index %d beyond ephemeris of %d slots", idx, len(eph))
	}
	prev := eph[idx-1]
	epoch := eph[idx].Epoch
	dt := epoch.Sub(prev.Epoch).Seconds()
	if dt <= 0 {
		return r3.Vec{}, fmt.Errorf("%w: step %d from %s to %s", ErrEpochOrder, idx, prev.Epoch, epoch)
	}
	vHalf := r3.Add(prev.Velocity, r3.Scale(dt/2, prevAcc))
	next := StateVector{
		Epoch:    epoch,
		Position: r3.Add(prev.Position, r3.Scale(dt, vHalf)),
		Observer: prev.Observer,
		Frame:    prev.Frame,
	}
	// The new position is all the forces need: velocity-dependent ones see the half kick.
	next.Velocity = vHalf
	acc, err := vv.Acceleration(next)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("step %d: %w", idx, err)
	}
	next.Velocity = r3.Add(vHalf, r3.Scale(dt/2, acc))
	if !finite(next.Position) || !finite(next.Velocity) {
		return r3.Vec{}, fmt.Errorf("%w: step %d: %s", ErrNonFinite, idx, next)
	}
	eph[idx] = next
	return acc, nil
}
