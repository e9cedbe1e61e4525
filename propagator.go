package astro

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/spatial/r3"
)

/* Handles the propagation of a spacecraft over a time window. */

// PropagationMode selects how the listed bodies act on the spacecraft.
type PropagationMode uint8

const (
	// DirectMode sums the attraction of every listed body. States are typically
	// expressed relative to the solar system barycenter.
	DirectMode PropagationMode = iota
	// CentralBodyMode uses the attraction of the initial state's observer plus the
	// tidal perturbation of every other listed body.
	CentralBodyMode
)

func (m PropagationMode) String() string {
	switch m {
	case DirectMode:
		return "direct"
	case CentralBodyMode:
		return "central"
	default:
		return fmt.Sprintf("PropagationMode(%d)", m)
	}
}

// PropagationModeFromString returns the mode from its name.
func PropagationModeFromString(name string) (PropagationMode, error) {
	switch name {
	case "", "direct":
		return DirectMode, nil
	case "central":
		return CentralBodyMode, nil
	default:
		return 0, fmt.Errorf("unknown propagation mode %q", name)
	}
}

// PropagatorConfig defines a propagation run.
type PropagatorConfig struct {
	Window     Window
	Step       time.Duration
	Initial    StateVector // must be at Window.Start
	Spacecraft *Spacecraft
	// Bodies act on the spacecraft. In DirectMode, the first one is the primary body,
	// against which drag is computed.
	Bodies                 []*CelestialBody
	Mode                   PropagationMode
	AtmosphericDrag        bool
	SolarRadiationPressure bool
	LightSource            *CelestialBody // defaults to the environment's, or the Sun
	Environment            Environment
	Logger                 kitlog.Logger // defaults to the spacecraft's logger
}

// rootedEnvironment is an environment whose states all derive from an inertial root.
type rootedEnvironment interface {
	Root() *CelestialBody
}

// litEnvironment is an environment whose shadows are cast from a known light source.
type litEnvironment interface {
	LightSource() *CelestialBody
}

// Propagator integrates one spacecraft over a window. It is not safe for concurrent use,
// but distinct propagators may run concurrently and share bodies and environment.
// Every call to Propagate fills a new ephemeris.
type Propagator struct {
	mode       PropagationMode
	integrator Integrator
	env        Environment
	initial    StateVector    // as provided
	slots      Ephemeris      // epochs of the run, slot 0 relative to origin
	origin     *CelestialBody // observer of the integrated states
	acc0       r3.Vec         // acceleration at the initial state
	primary    *CelestialBody
	logger     kitlog.Logger
	collided   bool
}

// NewPropagator builds the forces, allocates the ephemeris and evaluates the initial acceleration.
//
// In DirectMode, states are integrated relative to the root of the environment whenever the
// initial observer is not the only body listed, and converted back to the initial observer.
func NewPropagator(conf PropagatorConfig) (*Propagator, error) {
	if conf.Spacecraft == nil {
		return nil, ErrNilSpacecraft
	}
	if conf.Initial.Observer == nil {
		return nil, fmt.Errorf("%w: initial state has no observer", ErrNilBody)
	}
	if !conf.Initial.Frame.IsInertial() {
		return nil, fmt.Errorf("%w: initial state must be in an inertial frame, not %q", ErrUnsupportedFrame, conf.Initial.Frame)
	}
	if !conf.Initial.Epoch.Equal(conf.Window.Start) {
		return nil, fmt.Errorf("%w: initial state at %s but window starts at %s", ErrInvalidWindow, conf.Initial.Epoch, conf.Window.Start)
	}
	lit, isLit := conf.Environment.(litEnvironment)
	if conf.LightSource == nil {
		conf.LightSource = Sun
		if isLit && lit.LightSource() != nil {
			conf.LightSource = lit.LightSource()
		}
	}
	if conf.SolarRadiationPressure && isLit && !conf.LightSource.Equals(lit.LightSource()) {
		return nil, fmt.Errorf("%w: %s radiates but the environment shades %v", ErrLightSourceMismatch, conf.LightSource.Name, lit.LightSource())
	}
	logger := conf.Logger
	if logger == nil {
		logger = conf.Spacecraft.Logger()
	}
	eph, err := newEphemeris(conf.Window, conf.Step)
	if err != nil {
		return nil, err
	}
	forces, primary, err := buildForces(conf)
	if err != nil {
		return nil, err
	}
	origin, err := integrationOrigin(conf)
	if err != nil {
		return nil, err
	}
	eph[0], err = relativeTo(conf.Environment, conf.Initial, origin)
	if err != nil {
		return nil, fmt.Errorf("initial state relative to %s: %w", origin.Name, err)
	}
	vv, err := NewVelocityVerlet(forces...)
	if err != nil {
		return nil, err
	}
	acc0, err := vv.Acceleration(eph[0])
	if err != nil {
		return nil, fmt.Errorf("initial acceleration: %w", err)
	}
	if (conf.AtmosphericDrag || conf.SolarRadiationPressure) && conf.Spacecraft.FuelMass > 0 {
		logger.Log("level", "warning", "subsys", "prop", "message", "mass captured for the whole run", "mass(kg)", conf.Spacecraft.TotalMass())
	}
	return &Propagator{mode: conf.Mode, integrator: vv, env: conf.Environment, initial: conf.Initial, slots: eph, origin: origin, acc0: acc0, primary: primary, logger: logger}, nil
}

// integrationOrigin returns the observer of the integrated states.
func integrationOrigin(conf PropagatorConfig) (*CelestialBody, error) {
	observer := conf.Initial.Observer
	if conf.Mode != DirectMode {
		return observer, nil
	}
	listed, others := false, false
	for _, b := range conf.Bodies {
		if b.Equals(observer) {
			listed = true
		} else {
			others = true
		}
	}
	if !others {
		// Two body problem about the observer.
		return observer, nil
	}
	if conf.Environment == nil {
		return nil, fmt.Errorf("%w: direct propagation about several bodies", ErrNilEnvironment)
	}
	if rooted, ok := conf.Environment.(rootedEnvironment); ok && rooted.Root() != nil {
		observer = rooted.Root()
		listed = false
		for _, b := range conf.Bodies {
			listed = listed || b.Equals(observer)
		}
	}
	if listed {
		return nil, fmt.Errorf("%w: %s", ErrAcceleratedOrigin, observer.Name)
	}
	return observer, nil
}

// buildForces returns the forces of the run and the primary body.
func buildForces(conf PropagatorConfig) ([]Force, *CelestialBody, error) {
	var forces []Force
	var primary *CelestialBody
	var occulters []*CelestialBody
	env := conf.Environment
	for _, b := range conf.Bodies {
		if b == nil {
			return nil, nil, fmt.Errorf("%w: nil body in propagation", ErrNilBody)
		}
	}
	switch conf.Mode {
	case DirectMode:
		if len(conf.Bodies) == 0 {
			return nil, nil, fmt.Errorf("%w: no body to propagate about", ErrNilBody)
		}
		primary = conf.Bodies[0]
		for _, b := range conf.Bodies {
			g, err := NewGravitationalAcceleration(b, env)
			if err != nil {
				return nil, nil, err
			}
			forces = append(forces, g)
		}
		occulters = conf.Bodies
	case CentralBodyMode:
		primary = conf.Initial.Observer
		g, err := NewGravitationalAcceleration(primary, env)
		if err != nil {
			return nil, nil, err
		}
		forces = append(forces, g)
		occulters = []*CelestialBody{primary}
		for _, b := range conf.Bodies {
			if b.Equals(primary) {
				continue
			}
			tb, err := NewThirdBodyPerturbation(b, primary, env)
			if err != nil {
				return nil, nil, err
			}
			forces = append(forces, tb)
			occulters = append(occulters, b)
		}
	default:
		return nil, nil, fmt.Errorf("unsupported propagation mode %s", conf.Mode)
	}
	if conf.AtmosphericDrag {
		drag, err := NewAtmosphericDrag(conf.Spacecraft, primary, env)
		if err != nil {
			return nil, nil, err
		}
		forces = append(forces, drag)
	}
	if conf.SolarRadiationPressure {
		srp, err := NewSolarRadiationPressure(conf.Spacecraft, conf.LightSource, occulters, env)
		if err != nil {
			return nil, nil, err
		}
		forces = append(forces, srp)
	}
	return forces, primary, nil
}

// Forces returns the forces of this run, in summation order.
func (p *Propagator) Forces() []Force {
	if vv, ok := p.integrator.(*VelocityVerlet); ok {
		return vv.Forces()
	}
	return nil
}

// Propagate fills a new ephemeris. Cancellation of ctx is checked between steps: on error,
// the completed part of the ephemeris is returned with the error.
func (p *Propagator) Propagate(ctx context.Context) (Ephemeris, error) {
	start := time.Now()
	eph := append(Ephemeris(nil), p.slots...)
	out := eph
	recentered := !p.origin.Equals(p.initial.Observer)
	if recentered {
		out = make(Ephemeris, len(eph))
		out[0] = p.initial
	}
	p.logger.Log("level", "info", "subsys", "prop", "mode", p.mode, "origin", p.origin.Name, "forces", len(p.Forces()), "slots", len(eph), "start", eph[0].Epoch, "end", eph.Final().Epoch)
	acc := p.acc0
	p.collided = false
	for i := 1; i < len(eph); i++ {
		var err error
		if err = ctx.Err(); err == nil {
			acc, err = p.integrator.Integrate(eph, i, acc)
		}
		if err == nil && recentered {
			out[i], err = relativeTo(p.env, eph[i], p.initial.Observer)
		}
		if err != nil {
			outcome := "failed"
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				outcome = "cancelled"
			}
			recordPropagation(p.mode, outcome, i-1, time.Since(start))
			p.logger.Log("level", "error", "subsys", "prop", "status", outcome, "step", i, "err", err)
			return out[:i], fmt.Errorf("propagation stopped at step %d: %w", i, err)
		}
		p.checkCollision(out[i])
	}
	duration := time.Since(start)
	recordPropagation(p.mode, "completed", len(out)-1, duration)
	span := out.Final().Epoch.Sub(out[0].Epoch)
	spanStr := span.String()
	if span.Hours() > 24 {
		spanStr += fmt.Sprintf(" (~%.3fd)", span.Hours()/24)
	}
	final := out.Final()
	kv := []interface{}{"level", "notice", "subsys", "prop", "status", "finished", "span", spanStr, "duration", duration, "Δv(m/s)", math.Abs(final.VNorm() - out[0].VNorm()), "r(km)", final.RNorm() / 1e3}
	if oe, err := KeplerianFromStateVector(final); err == nil && p.primary.Equals(final.Observer) {
		kv = append(kv, "orbit", oe)
	}
	p.logger.Log(kv...)
	return out, nil
}

// checkCollision logs when the spacecraft enters or leaves the primary body.
func (p *Propagator) checkCollision(sv StateVector) {
	if !p.primary.Equals(sv.Observer) {
		return
	}
	if !p.collided && sv.RNorm() < p.primary.EquatorialRadius {
		p.collided = true
		p.logger.Log("level", "critical", "subsys", "prop", "collided", p.primary.Name, "dt", sv.Epoch, "r", sv.RNorm(), "radius", p.primary.EquatorialRadius)
	} else if p.collided && sv.RNorm() > p.primary.EquatorialRadius*1.1 {
		// Now further from the 10% dead zone
		p.collided = false
		p.logger.Log("level", "critical", "subsys", "prop", "revived", p.primary.Name, "dt", sv.Epoch)
	}
}

// PropagateAll runs the propagators concurrently on a fixed number of workers and returns
// their ephemerides in order. The first failure cancels the runs which have not completed
// and is the one returned.
func PropagateAll(ctx context.Context, props ...*Propagator) ([]Ephemeris, error) {
	return propagateAll(ctx, runtime.NumCPU(), props)
}

func propagateAll(ctx context.Context, workers int, props []*Propagator) ([]Ephemeris, error) {
	if len(props) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if workers > len(props) {
		workers = len(props)
	}
	if workers < 1 {
		workers = 1
	}
	results := make([]Ephemeris, len(props))
	jobs := make(chan int)
	var (
		once     sync.Once
		firstErr error
	)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				eph, err := props[i].Propagate(ctx)
				results[i] = eph
				if err != nil {
					// Runs failing after this one were cancelled by it.
					once.Do(func() { firstErr = fmt.Errorf("propagation #%d: %w", i, err) })
					cancel()
				}
			}
		}()
	}
	// Feed jobs until done or cancelled.
	go func() {
		defer close(jobs)
		for i := range props {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()

	if firstErr != nil {
		return results, firstErr
	}
	for i, eph := range results {
		if eph == nil {
			// Never scheduled.
			return results, fmt.Errorf("propagation #%d: %w", i, ctx.Err())
		}
	}
	return results, nil
}
