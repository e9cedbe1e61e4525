package astro

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Frame names a reference frame.
type Frame string

const (
	// ICRF is the International Celestial Reference Frame.
	ICRF Frame = "ICRF"
	// EclipJ2000 is the ecliptic and equinox of J2000.
	EclipJ2000 Frame = "ECLIPJ2000"
	// ITRF93 is Earth's body-fixed frame.
	ITRF93 Frame = "ITRF93"
)

// IsInertial returns whether the frame does not rotate.
func (f Frame) IsInertial() bool {
	return f == ICRF || f == EclipJ2000
}

// Aberration selects the corrections applied to an ephemeris lookup.
type Aberration uint8

const (
	// NoAberration returns geometric states.
	NoAberration Aberration = iota
	// LT applies a one-pass light time correction.
	LT
)

func (a Aberration) String() string {
	switch a {
	case NoAberration:
		return "NONE"
	case LT:
		return "LT"
	default:
		return fmt.Sprintf("Aberration(%d)", a)
	}
}

// StateVector is a position and velocity at an epoch, relative to an observer in a frame.
type StateVector struct {
	Epoch    time.Time
	Position r3.Vec // meters
	Velocity r3.Vec // meters per second
	Observer *CelestialBody
	Frame    Frame
}

// NewStateVector returns a new state vector in ICRF.
func NewStateVector(epoch time.Time, position, velocity r3.Vec, observer *CelestialBody) StateVector {
	return StateVector{Epoch: epoch, Position: position, Velocity: velocity, Observer: observer, Frame: ICRF}
}

// RNorm returns the distance to the observer.
func (s StateVector) RNorm() float64 {
	return r3.Norm(s.Position)
}

// VNorm returns the speed relative to the observer.
func (s StateVector) VNorm() float64 {
	return r3.Norm(s.Velocity)
}

// Sub returns the state of s relative to o. Both states must share their epoch and frame.
func (s StateVector) Sub(o StateVector) StateVector {
	return StateVector{Epoch: s.Epoch, Position: r3.Sub(s.Position, o.Position), Velocity: r3.Sub(s.Velocity, o.Velocity), Observer: s.Observer, Frame: s.Frame}
}

func (s StateVector) String() string {
	obs := "?"
	if s.Observer != nil {
		obs = s.Observer.Name
	}
	return fmt.Sprintf("%s r=[%.3f %.3f %.3f] v=[%.6f %.6f %.6f] (%s, %s)", s.Epoch.Format(time.RFC3339Nano), s.Position.X, s.Position.Y, s.Position.Z, s.Velocity.X, s.Velocity.Y, s.Velocity.Z, obs, s.Frame)
}

// Ephemeris is an ordered sequence of states with strictly increasing epochs.
// Index 0 holds the initial condition and slot i is computed from slot i-1.
type Ephemeris []StateVector

// Final returns the last state of the ephemeris.
func (e Ephemeris) Final() StateVector {
	return e[len(e)-1]
}

// Epochs returns the epoch of every slot.
func (e Ephemeris) Epochs() []time.Time {
	epochs := make([]time.Time, len(e))
	for i, s := range e {
		epochs[i] = s.Epoch
	}
	return epochs
}

// Window is a time span.
type Window struct {
	Start, End time.Time
}

// Length returns the duration of the window.
func (w Window) Length() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains returns whether the epoch lies within the window, bounds included.
func (w Window) Contains(epoch time.Time) bool {
	return !epoch.Before(w.Start) && !epoch.After(w.End)
}

// newEphemeris allocates the slots covering the window with the provided step.
// A trailing remainder yields one last slot clipped to the window end.
func newEphemeris(w Window, step time.Duration) (Ephemeris, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStep, step)
	}
	if w.End.Before(w.Start) {
		return nil, fmt.Errorf("%w: end %s before start %s", ErrInvalidWindow, w.End, w.Start)
	}
	n := int(w.Length() / step)
	size := n + 1
	if n >= 1 && w.Length()%step != 0 {
		size++
	}
	eph := make(Ephemeris, size)
	for i := 0; i <= n; i++ {
		eph[i].Epoch = w.Start.Add(time.Duration(i) * step)
	}
	if size > n+1 {
		eph[size-1].Epoch = w.End
	}
	return eph, nil
}
