package astro

import (
	"errors"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewEphemerisSizing(t *testing.T) {
	for _, exp := range []struct {
		length, step time.Duration
		size         int
	}{
		{time.Hour, time.Minute, 61},
		{time.Hour + 30*time.Second, time.Minute, 62},
		{10 * time.Second, time.Second, 11},
		{500 * time.Millisecond, time.Second, 1},
		{0, time.Second, 1},
		{time.Second, time.Second, 2},
	} {
		w := Window{Start: J2000, End: J2000.Add(exp.length)}
		eph, err := newEphemeris(w, exp.step)
		if err != nil {
			t.Fatalf("%s/%s: %s", exp.length, exp.step, err)
		}
		if len(eph) != exp.size {
			t.Fatalf("%s/%s: %d slots instead of %d", exp.length, exp.step, len(eph), exp.size)
		}
		if !eph[0].Epoch.Equal(J2000) {
			t.Fatalf("first slot at %s", eph[0].Epoch)
		}
		for i := 1; i < len(eph); i++ {
			if !eph[i].Epoch.After(eph[i-1].Epoch) {
				t.Fatalf("%s/%s: epochs not increasing at %d", exp.length, exp.step, i)
			}
		}
		if exp.size > 1 && !eph.Final().Epoch.Equal(w.End) {
			t.Fatalf("%s/%s: last slot at %s instead of %s", exp.length, exp.step, eph.Final().Epoch, w.End)
		}
	}
}

func TestNewEphemerisClippedStep(t *testing.T) {
	w := Window{Start: J2000, End: J2000.Add(150 * time.Second)}
	eph, err := newEphemeris(w, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	epochs := eph.Epochs()
	if len(epochs) != 4 {
		t.Fatalf("expected 4 epochs, got %d", len(epochs))
	}
	if d := epochs[3].Sub(epochs[2]); d != 30*time.Second {
		t.Fatalf("last step is %s", d)
	}
	if d := epochs[2].Sub(epochs[1]); d != time.Minute {
		t.Fatalf("regular step is %s", d)
	}
}

func TestNewEphemerisErrors(t *testing.T) {
	w := Window{Start: J2000, End: J2000.Add(time.Hour)}
	if _, err := newEphemeris(w, 0); !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("expected ErrInvalidStep, got %v", err)
	}
	if _, err := newEphemeris(w, -time.Second); !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("expected ErrInvalidStep, got %v", err)
	}
	if _, err := newEphemeris(Window{Start: w.End, End: w.Start}, time.Second); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestWindow(t *testing.T) {
	w := Window{Start: J2000, End: J2000.Add(time.Hour)}
	if w.Length() != time.Hour {
		t.Fatalf("length %s", w.Length())
	}
	if !w.Contains(w.Start) || !w.Contains(w.End) || !w.Contains(J2000.Add(time.Minute)) {
		t.Fatal("window should contain its bounds and interior")
	}
	if w.Contains(J2000.Add(-time.Nanosecond)) || w.Contains(w.End.Add(time.Nanosecond)) {
		t.Fatal("window should not contain outside epochs")
	}
}

func TestStateVector(t *testing.T) {
	sv := NewStateVector(J2000, r3.Vec{X: 3, Y: 4}, r3.Vec{Z: 2}, Earth)
	if sv.Frame != ICRF {
		t.Fatalf("frame %s", sv.Frame)
	}
	if sv.RNorm() != 5 || sv.VNorm() != 2 {
		t.Fatalf("norms %f %f", sv.RNorm(), sv.VNorm())
	}
	rel := sv.Sub(NewStateVector(J2000, r3.Vec{X: 1}, r3.Vec{Z: 1}, Earth))
	if rel.Position != (r3.Vec{X: 2, Y: 4}) || rel.Velocity != (r3.Vec{Z: 1}) {
		t.Fatalf("sub: %s", rel)
	}
	if !ICRF.IsInertial() || !EclipJ2000.IsInertial() || ITRF93.IsInertial() {
		t.Fatal("wrong inertial frames")
	}
	if LT.String() != "LT" || NoAberration.String() != "NONE" {
		t.Fatal("wrong aberration names")
	}
}

func TestEphemerisFinalEmpty(t *testing.T) {
	assertPanic(t, func() {
		Ephemeris{}.Final()
	})
}
