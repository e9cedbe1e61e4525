package astro

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const leoScenario = `
[propagation]
start = "2000-01-01 12:00:00"
end = "2000-01-01 12:10:00"
step = "10s"
mode = "central"
drag = true
srp = true
jn = 2
bodies = ["Sun", "Moon", "Earth"]

[spacecraft]
name = "LEO"
dry = 100
fuel = 20
area = 2.5
cd = 2.0

[state]
center = "Earth"
x = 6800000.0
vy = 7656.2204182967143
`

func writeScenario(t *testing.T, name, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, "leo.toml", leoScenario))
	if err != nil {
		t.Fatal(err)
	}
	if !s.Window.Start.Equal(J2000) || s.Window.Length() != 10*time.Minute {
		t.Fatalf("window %+v", s.Window)
	}
	if s.Step != 10*time.Second || s.Mode != CentralBodyMode || !s.AtmosphericDrag || !s.SolarRadiationPressure {
		t.Fatalf("propagation parameters %+v", s)
	}
	if s.EphemerisGrid != DefaultEphemerisGrid {
		t.Fatalf("grid %s", s.EphemerisGrid)
	}
	if len(s.Bodies) != 3 || !s.Bodies[0].Equals(Earth) || !s.Bodies[1].Equals(Sun) || !s.Bodies[2].Equals(Moon) {
		t.Fatalf("bodies %v", s.Bodies)
	}
	if s.Bodies[0].Field == nil {
		t.Fatal("zonal harmonics not set on the center")
	}
	sc := s.Spacecraft
	if sc.Name != "LEO" || sc.TotalMass() != 120 || sc.SectionalArea != 2.5 || sc.DragCoefficient != 2 || sc.SolarRadiationCoefficient != DefaultSolarRadiationCoefficient {
		t.Fatalf("spacecraft %s", sc)
	}
	if s.Initial.Position.X != 6.8e6 || s.Initial.Velocity.Y != 7656.2204182967143 || s.Initial.Position.Y != 0 {
		t.Fatalf("initial state %s", s.Initial)
	}
	if !s.Initial.Observer.Equals(Earth) || !s.Initial.Epoch.Equal(J2000) {
		t.Fatalf("initial state %s", s.Initial)
	}
}

func TestScenarioPropagation(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, "leo.toml", leoScenario))
	if err != nil {
		t.Fatal(err)
	}
	ss, err := s.SolarSystem()
	if err != nil {
		t.Fatal(err)
	}
	prop, err := NewPropagator(s.Config(ss, nil))
	if err != nil {
		t.Fatal(err)
	}
	eph, err := prop.Propagate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(eph) != 61 {
		t.Fatalf("%d states", len(eph))
	}
	if r := eph.Final().RNorm(); r < 6.7e6 || r > 6.9e6 {
		t.Fatalf("final radius %f", r)
	}
}

func TestScenarioDirectMode(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, "leo.toml", leoScenario))
	if err != nil {
		t.Fatal(err)
	}
	ss, err := s.SolarSystem()
	if err != nil {
		t.Fatal(err)
	}
	if !ss.Root().Equals(SolarSystemBarycenter) {
		t.Fatalf("root %s", ss.Root())
	}
	var finals []StateVector
	for _, mode := range []PropagationMode{CentralBodyMode, DirectMode} {
		s.Mode = mode
		prop, err := NewPropagator(s.Config(ss, nil))
		if err != nil {
			t.Fatal(err)
		}
		eph, err := prop.Propagate(context.Background())
		if err != nil {
			t.Fatalf("%s: %s", mode, err)
		}
		if !eph.Final().Observer.Equals(Earth) {
			t.Fatalf("%s: final state %s", mode, eph.Final())
		}
		finals = append(finals, eph.Final())
	}
	if δ := r3.Norm(r3.Sub(finals[0].Position, finals[1].Position)); δ > 10 {
		t.Fatalf("direct and central body runs differ by %f m", δ)
	}
	if δ := r3.Norm(r3.Sub(finals[0].Velocity, finals[1].Velocity)); δ > 1e-2 {
		t.Fatalf("direct and central body runs differ by %f m/s", δ)
	}
}

func TestLoadScenarioJulianDates(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, "jd.toml", `
[propagation]
start = 2451545.0
end = 2451545.5
step = "1m"
[spacecraft]
name = "jd"
dry = 10
[state]
center = "earth"
x = 7000000.0
`))
	if err != nil {
		t.Fatal(err)
	}
	if δ := s.Window.Start.Sub(J2000); δ > time.Millisecond || δ < -time.Millisecond {
		t.Fatalf("start off by %s", δ)
	}
	if δ := s.Window.Length() - 12*time.Hour; δ > time.Millisecond || δ < -time.Millisecond {
		t.Fatalf("length off by %s", δ)
	}
	if s.Mode != DirectMode || s.Spacecraft.DragCoefficient != DefaultDragCoefficient || s.Spacecraft.SectionalArea != 1 {
		t.Fatalf("defaults not applied: %+v", s)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("missing file accepted")
	}
	if _, err := LoadScenario(writeScenario(t, "nodate.toml", "[state]\ncenter = \"Earth\"\n")); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	body := `
[propagation]
start = "2000-01-01 12:00:00"
end = "2000-01-01 13:00:00"
step = "1m"
[spacecraft]
name = "x"
dry = 10
[state]
center = "Mars"
`
	if _, err := LoadScenario(writeScenario(t, "mars.toml", body)); !errors.Is(err, ErrUnknownBody) {
		t.Fatalf("expected ErrUnknownBody, got %v", err)
	}
}

func TestLoadScenarioStep(t *testing.T) {
	scenario := func(step string) string {
		return `
[propagation]
start = "2000-01-01 12:00:00"
end = "2000-01-01 13:00:00"
step = ` + step + `
[spacecraft]
name = "x"
dry = 10
[state]
center = "Earth"
x = 7000000.0
`
	}
	for _, tt := range []struct {
		step string
		exp  time.Duration
	}{
		{"10", 10 * time.Second},
		{"0.5", 500 * time.Millisecond},
		{`"10s"`, 10 * time.Second},
		{`"2m"`, 2 * time.Minute},
	} {
		s, err := LoadScenario(writeScenario(t, "step.toml", scenario(tt.step)))
		if err != nil {
			t.Fatalf("step %s: %s", tt.step, err)
		}
		if s.Step != tt.exp {
			t.Fatalf("step %s read as %s", tt.step, s.Step)
		}
	}
	for _, step := range []string{`"10"`, "0", `"500us"`} {
		if _, err := LoadScenario(writeScenario(t, "step.toml", scenario(step))); !errors.Is(err, ErrInvalidStep) {
			t.Fatalf("step %s: expected ErrInvalidStep, got %v", step, err)
		}
	}
}

func TestLoadScenarioOrbit(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, "gto.yaml", `
propagation:
  start: "2000-01-01 12:00:00"
  end: "2000-01-01 18:00:00"
  step: 30s
spacecraft:
  name: gto
  dry: 500
state:
  center: Earth
orbit:
  sma: 24396000
  ecc: 0.7283
  inc: 7
  RAAN: 350
  argPeri: 178
  tAnomaly: 0
`))
	if err != nil {
		t.Fatal(err)
	}
	oe, err := KeplerianFromStateVector(s.Initial)
	if err != nil {
		t.Fatal(err)
	}
	exp, _ := NewKeplerianElements(24396e3, 0.7283, 7, 350, 178, 0, Earth, J2000)
	if ok, err := exp.StrictlyEquals(oe); !ok {
		t.Fatalf("%s != %s: %s", oe, exp, err)
	}
	if !scalar.EqualWithinRel(s.Initial.RNorm(), exp.Periapsis(), 1e-12) {
		t.Fatalf("not at periapsis: %f", s.Initial.RNorm())
	}
}
