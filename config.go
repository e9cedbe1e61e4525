package astro

import (
	"fmt"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/spatial/r3"
)

// Scenario is a propagation run read from a configuration file.
type Scenario struct {
	Window                 Window
	Step                   time.Duration
	Mode                   PropagationMode
	AtmosphericDrag        bool
	SolarRadiationPressure bool
	// Bodies starts with the center of the initial state.
	Bodies        []*CelestialBody
	EphemerisGrid time.Duration
	Spacecraft    *Spacecraft
	Initial       StateVector
}

// LoadScenario reads a scenario file in any format viper supports (TOML, YAML, JSON...).
// Positions are in meters and velocities in meters per second, expressed in ICRF.
func LoadScenario(path string) (*Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("propagation.mode", DirectMode.String())
	v.SetDefault("propagation.ephemeris_grid", DefaultEphemerisGrid)
	v.SetDefault("spacecraft.area", 1.0)
	v.SetDefault("spacecraft.cd", DefaultDragCoefficient)
	v.SetDefault("spacecraft.cr", DefaultSolarRadiationCoefficient)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s := &Scenario{}
	// Propagation parameters
	s.Window = Window{Start: confReadJDEorTime(v, "propagation.start"), End: confReadJDEorTime(v, "propagation.end")}
	if s.Window.Start.IsZero() || s.Window.End.IsZero() {
		return nil, fmt.Errorf("%w: propagation.start and propagation.end are required", ErrInvalidWindow)
	}
	s.Step = confReadDuration(v, "propagation.step")
	if s.Step < time.Millisecond {
		return nil, fmt.Errorf("%w: propagation.step %q is under a millisecond", ErrInvalidStep, v.GetString("propagation.step"))
	}
	s.EphemerisGrid = confReadDuration(v, "propagation.ephemeris_grid")
	mode, err := PropagationModeFromString(v.GetString("propagation.mode"))
	if err != nil {
		return nil, err
	}
	s.Mode = mode
	s.AtmosphericDrag = v.GetBool("propagation.drag")
	s.SolarRadiationPressure = v.GetBool("propagation.srp")

	// Central body, optionally with its zonal harmonics
	center, err := CelestialBodyFromString(v.GetString("state.center"))
	if err != nil {
		return nil, fmt.Errorf("state.center: %w", err)
	}
	if jn := v.GetInt("propagation.jn"); jn >= 2 {
		center = center.WithGravityField(NewZonalField(uint8(jn)))
	}
	s.Bodies = []*CelestialBody{center}
	for _, name := range v.GetStringSlice("propagation.bodies") {
		body, err := CelestialBodyFromString(name)
		if err != nil {
			return nil, fmt.Errorf("propagation.bodies: %w", err)
		}
		if !body.Equals(center) {
			s.Bodies = append(s.Bodies, body)
		}
	}

	// Spacecraft
	s.Spacecraft, err = NewSpacecraftWithSurface(v.GetString("spacecraft.name"), v.GetFloat64("spacecraft.dry"), v.GetFloat64("spacecraft.fuel"), v.GetFloat64("spacecraft.area"), v.GetFloat64("spacecraft.cd"), v.GetFloat64("spacecraft.cr"))
	if err != nil {
		return nil, err
	}

	// Initial state, either Cartesian or from orbital elements (angles in degrees)
	if v.IsSet("orbit.sma") {
		oe, err := NewKeplerianElements(v.GetFloat64("orbit.sma"), v.GetFloat64("orbit.ecc"), v.GetFloat64("orbit.inc"), v.GetFloat64("orbit.RAAN"), v.GetFloat64("orbit.argPeri"), v.GetFloat64("orbit.tAnomaly"), center, s.Window.Start)
		if err != nil {
			return nil, fmt.Errorf("orbit: %w", err)
		}
		s.Initial = oe.ToStateVector()
		return s, nil
	}
	pos := r3.Vec{X: v.GetFloat64("state.x"), Y: v.GetFloat64("state.y"), Z: v.GetFloat64("state.z")}
	vel := r3.Vec{X: v.GetFloat64("state.vx"), Y: v.GetFloat64("state.vy"), Z: v.GetFloat64("state.vz")}
	s.Initial = NewStateVector(s.Window.Start, pos, vel, center)
	return s, nil
}

// SolarSystem returns the analytic Sun, Earth and Moon environment, interpolated over the
// scenario window. Its root is the solar system barycenter, where the Sun is held fixed.
func (s *Scenario) SolarSystem() (*SolarSystem, error) {
	ss := NewSolarSystem(SolarSystemBarycenter, Sun)
	if err := ss.Add(Sun, SolarSystemBarycenter, LinearMotion{}); err != nil {
		return nil, err
	}
	if err := ss.Add(Earth, Sun, MeeusEarth{}); err != nil {
		return nil, err
	}
	if err := ss.Add(Moon, Earth, MeeusMoon{}); err != nil {
		return nil, err
	}
	return ss.Cached(s.Window, s.EphemerisGrid)
}

// Config returns the propagator configuration of this scenario.
func (s *Scenario) Config(env Environment, logger kitlog.Logger) PropagatorConfig {
	return PropagatorConfig{
		Window:                 s.Window,
		Step:                   s.Step,
		Initial:                s.Initial,
		Spacecraft:             s.Spacecraft,
		Bodies:                 s.Bodies,
		Mode:                   s.Mode,
		AtmosphericDrag:        s.AtmosphericDrag,
		SolarRadiationPressure: s.SolarRadiationPressure,
		Environment:            env,
		Logger:                 logger,
	}
}

// confReadDuration reads a duration, where a bare number is in seconds.
func confReadDuration(v *viper.Viper, key string) time.Duration {
	switch d := v.Get(key).(type) {
	case int, int32, int64, float32, float64:
		return time.Duration(v.GetFloat64(key) * float64(time.Second))
	case time.Duration:
		return d
	default:
		return v.GetDuration(key)
	}
}

// confReadJDEorTime reads a date either as a Julian date or as a timestamp.
func confReadJDEorTime(v *viper.Viper, key string) (dt time.Time) {
	jde := v.GetFloat64(key)
	if jde == 0 {
		dt = v.GetTime(key)
	} else {
		dt = julian.JDToTime(jde)
	}
	return dt.UTC()
}
