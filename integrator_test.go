package astro

import (
	"errors"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

type failingForce struct{ err error }

func (f failingForce) Apply(StateVector) (r3.Vec, error) {
	return r3.Vec{}, f.err
}

func (f failingForce) String() string {
	return "failing"
}

type constantForce r3.Vec

func (f constantForce) Apply(StateVector) (r3.Vec, error) {
	return r3.Vec(f), nil
}

func (f constantForce) String() string {
	return "constant"
}

// twoSlots returns an ephemeris of one step of dt seconds, starting from the LEO state.
func twoSlots(dt time.Duration) Ephemeris {
	eph := make(Ephemeris, 2)
	eph[0] = leoState()
	eph[1].Epoch = eph[0].Epoch.Add(dt)
	return eph
}

func pointMassEarth(t *testing.T) *VelocityVerlet {
	g, err := NewGravitationalAcceleration(Earth, nil)
	if err != nil {
		t.Fatal(err)
	}
	vv, err := NewVelocityVerlet(g)
	if err != nil {
		t.Fatal(err)
	}
	return vv
}

func TestVelocityVerletOneStep(t *testing.T) {
	vv := pointMassEarth(t)
	eph := twoSlots(time.Second)
	acc0, err := vv.Acceleration(eph[0])
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinRel(acc0.X, -8.620251769031142, 1e-12) {
		t.Fatalf("initial acceleration %+v", acc0)
	}
	acc1, err := vv.Integrate(eph, 1, acc0)
	if err != nil {
		t.Fatal(err)
	}
	sv := eph[1]
	if !scalar.EqualWithinAbs(sv.Position.X, 6799995.689874115, 1e-6) || !scalar.EqualWithinAbs(sv.Position.Y, 7656.220418296714, 1e-8) || sv.Position.Z != 0 {
		t.Fatalf("position %+v", sv.Position)
	}
	if !scalar.EqualWithinAbs(sv.Velocity.X, -8.620249037089684, 1e-9) || !scalar.EqualWithinAbs(sv.Velocity.Y, 7656.215565462332, 1e-9) || sv.Velocity.Z != 0 {
		t.Fatalf("velocity %+v", sv.Velocity)
	}
	if sv.Observer != Earth || sv.Frame != ICRF {
		t.Fatalf("observer or frame not carried: %s", sv)
	}
	// The returned acceleration is the one at the new slot.
	exp, _ := vv.Acceleration(sv)
	if !vectorsEqualWithin(acc1, exp, 1e-12) {
		t.Fatalf("returned acceleration %+v != %+v", acc1, exp)
	}
}

func TestVelocityVerletDeterministic(t *testing.T) {
	vv := pointMassEarth(t)
	run := func() Ephemeris {
		eph, err := newEphemeris(Window{Start: J2000, End: J2000.Add(10 * time.Minute)}, 10*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		eph[0] = leoState()
		acc, _ := vv.Acceleration(eph[0])
		for i := 1; i < len(eph); i++ {
			if acc, err = vv.Integrate(eph, i, acc); err != nil {
				t.Fatal(err)
			}
		}
		return eph
	}
	a, b := run(), run()
	for i := range a {
		if a[i].Position != b[i].Position || a[i].Velocity != b[i].Velocity {
			t.Fatalf("slot %d differs between runs", i)
		}
	}
}

func TestVelocityVerletEnergy(t *testing.T) {
	vv := pointMassEarth(t)
	eph, _ := newEphemeris(Window{Start: J2000, End: J2000.Add(92 * time.Minute)}, 10*time.Second)
	eph[0] = leoState()
	energy := func(sv StateVector) float64 {
		return sv.VNorm()*sv.VNorm()/2 - Earth.GM()/sv.RNorm()
	}
	e0 := energy(eph[0])
	acc, _ := vv.Acceleration(eph[0])
	var err error
	for i := 1; i < len(eph); i++ {
		if acc, err = vv.Integrate(eph, i, acc); err != nil {
			t.Fatal(err)
		}
		if δ := math.Abs((energy(eph[i]) - e0) / e0); δ > 1e-6 {
			t.Fatalf("energy drift %g at step %d", δ, i)
		}
		if math.Abs(eph[i].RNorm()-6.8e6) > 1e3 {
			t.Fatalf("circular orbit radius drifted to %f at step %d", eph[i].RNorm(), i)
		}
	}
}

func TestVelocityVerletConstantForce(t *testing.T) {
	// Exact for a constant acceleration.
	a := r3.Vec{X: 1, Y: -2, Z: 0.5}
	vv, _ := NewVelocityVerlet(constantForce(a))
	eph := twoSlots(4 * time.Second)
	if _, err := vv.Integrate(eph, 1, a); err != nil {
		t.Fatal(err)
	}
	x0, v0 := eph[0].Position, eph[0].Velocity
	expPos := r3.Add(r3.Add(x0, r3.Scale(4, v0)), r3.Scale(8, a))
	expVel := r3.Add(v0, r3.Scale(4, a))
	if !vectorsEqualWithin(eph[1].Position, expPos, 1e-12) || !vectorsEqualWithin(eph[1].Velocity, expVel, 1e-12) {
		t.Fatalf("got %s", eph[1])
	}
}

func TestVelocityVerletNoForce(t *testing.T) {
	vv, err := NewVelocityVerlet()
	if err != nil {
		t.Fatal(err)
	}
	eph := twoSlots(time.Second)
	acc, err := vv.Integrate(eph, 1, r3.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	if acc != (r3.Vec{}) || eph[1].Velocity != eph[0].Velocity {
		t.Fatalf("free motion changed velocity: %s", eph[1])
	}
	if eph[1].Position != r3.Add(eph[0].Position, eph[0].Velocity) {
		t.Fatalf("free motion: %s", eph[1])
	}
}

func TestVelocityVerletErrors(t *testing.T) {
	if _, err := NewVelocityVerlet(Force(nil)); err == nil {
		t.Fatal("nil force accepted")
	}
	vv := pointMassEarth(t)
	eph := twoSlots(time.Second)
	if _, err := vv.Integrate(eph, 0, r3.Vec{}); !errors.Is(err, ErrNoPredecessor) {
		t.Fatalf("expected ErrNoPredecessor, got %v", err)
	}
	if _, err := vv.Integrate(eph, 2, r3.Vec{}); err == nil {
		t.Fatal("index beyond the ephemeris accepted")
	}
	if _, err := vv.Integrate(twoSlots(0), 1, r3.Vec{}); !errors.Is(err, ErrEpochOrder) {
		t.Fatalf("expected ErrEpochOrder, got %v", err)
	}
	if _, err := vv.Integrate(twoSlots(-time.Second), 1, r3.Vec{}); !errors.Is(err, ErrEpochOrder) {
		t.Fatalf("expected ErrEpochOrder, got %v", err)
	}
	boom := errors.New("boom")
	failing, _ := NewVelocityVerlet(constantForce{X: 1}, failingForce{boom})
	eph = twoSlots(time.Second)
	if _, err := failing.Integrate(eph, 1, r3.Vec{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped force error, got %v", err)
	}
	if eph[1].Velocity != (r3.Vec{}) {
		t.Fatal("slot written despite the error")
	}
	nan, _ := NewVelocityVerlet(constantForce{X: math.NaN()})
	if _, err := nan.Integrate(twoSlots(time.Second), 1, r3.Vec{}); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
}
