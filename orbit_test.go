package astro

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestKeplerianRoundTrip(t *testing.T) {
	for _, exp := range []struct {
		a, e, i, Ω, ω, ν float64
	}{
		{7000e3, 0.1, 28.5, 45, 30, 60},
		{24396e3, 0.7283, 7, 350, 178, 300},
		{42164e3, 0.001, 0.5, 10, 270, 180},
	} {
		oe, err := NewKeplerianElements(exp.a, exp.e, exp.i, exp.Ω, exp.ω, exp.ν, Earth, J2000)
		if err != nil {
			t.Fatal(err)
		}
		sv := oe.ToStateVector()
		if !scalar.EqualWithinRel(sv.RNorm(), oe.SemiParameter()/(1+oe.Ecc*math.Cos(oe.TrueAnomaly)), 1e-12) {
			t.Fatalf("%s: radius %f", oe, sv.RNorm())
		}
		// Vis-viva
		if vis := math.Sqrt(Earth.GM() * (2/sv.RNorm() - 1/oe.SMA)); !scalar.EqualWithinRel(sv.VNorm(), vis, 1e-12) {
			t.Fatalf("%s: speed %f != %f", oe, sv.VNorm(), vis)
		}
		back, err := KeplerianFromStateVector(sv)
		if err != nil {
			t.Fatal(err)
		}
		if ok, err := oe.StrictlyEquals(back); !ok {
			t.Fatalf("%s != %s: %s", oe, back, err)
		}
		if !scalar.EqualWithinRel(back.SMA, exp.a, 1e-10) || !scalar.EqualWithinAbs(back.Ecc, exp.e, 1e-10) {
			t.Fatalf("a=%f e=%f", back.SMA, back.Ecc)
		}
	}
}

func TestKeplerianCircular(t *testing.T) {
	leo, err := KeplerianFromStateVector(leoState())
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(leo.SMA, 6.8e6, 1) || leo.Ecc > 1e-7 || leo.Inc != 0 {
		t.Fatalf("LEO: %s", leo)
	}
	if ok, δ := anglesWithin(leo.TrueLongλ(), 0, 1e-9); !ok {
		t.Fatalf("true longitude off by %g", δ)
	}
	period := 2 * math.Pi * math.Sqrt(math.Pow(6.8e6, 3)/Earth.GM())
	if δ := leo.Period().Seconds() - period; math.Abs(δ) > 1e-3 {
		t.Fatalf("period off by %f s", δ)
	}

	iss, _ := NewKeplerianElements(6778e3, 0, 51.6, 100, 0, 20, Earth, J2000)
	sv := iss.ToStateVector()
	back, err := KeplerianFromStateVector(sv)
	if err != nil {
		t.Fatal(err)
	}
	if ok, δ := anglesWithin(back.ArgLatitudeU(), 20*deg2rad, 1e-9); !ok {
		t.Fatalf("argument of latitude off by %g", δ)
	}
	if ok, err := iss.StrictlyEquals(back); !ok {
		t.Fatalf("%s != %s: %s", iss, back, err)
	}
	if ok, δ := anglesWithin(back.RAAN, 100*deg2rad, 1e-9); !ok {
		t.Fatalf("RAAN off by %g", δ)
	}
}

func TestKeplerianPropagation(t *testing.T) {
	// A propagated two body orbit keeps its elements.
	oe, _ := NewKeplerianElements(7000e3, 0.05, 45, 30, 60, 0, Earth, J2000)
	conf := leoConfig(t, oe.Period(), 5*time.Second)
	conf.Initial = oe.ToStateVector()
	prop, err := NewPropagator(conf)
	if err != nil {
		t.Fatal(err)
	}
	eph, err := prop.Propagate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	final, err := KeplerianFromStateVector(eph.Final())
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := oe.Equals(final); !ok {
		t.Fatalf("%s != %s: %s", oe, final, err)
	}
	if δ := r3.Norm(r3.Sub(eph.Final().Position, eph[0].Position)); δ > 5e3 {
		t.Fatalf("not back after one period: %f m away", δ)
	}
}

func TestKeplerianErrors(t *testing.T) {
	if _, err := NewKeplerianElements(7000e3, 0, 0, 0, 0, 0, nil, J2000); !errors.Is(err, ErrNilBody) {
		t.Fatalf("expected ErrNilBody, got %v", err)
	}
	if _, err := NewKeplerianElements(7000e3, 1.2, 0, 0, 0, 0, Earth, J2000); err == nil {
		t.Fatal("hyperbolic orbit accepted")
	}
	if _, err := NewKeplerianElements(-1, 0, 0, 0, 0, 0, Earth, J2000); err == nil {
		t.Fatal("negative semi-major axis accepted")
	}
	escape := NewStateVector(J2000, r3.Vec{X: 7e6}, r3.Vec{Y: 12e3}, Earth)
	if _, err := KeplerianFromStateVector(escape); err == nil {
		t.Fatal("hyperbolic state accepted")
	}
	if _, _, err := Radii2ae(1, 2); err == nil {
		t.Fatal("apoapsis below periapsis accepted")
	}
	a, e, _ := Radii2ae(3, 1)
	if a != 2 || e != 0.5 {
		t.Fatalf("a=%f e=%f", a, e)
	}
}
