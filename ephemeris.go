package astro

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Environment is the read-only view of the solar system which forces query while stepping.
// Implementations must be safe for concurrent reads.
type Environment interface {
	// Ephemeris returns the state of target relative to observer.
	Ephemeris(epoch time.Time, target, observer *CelestialBody, frame Frame, aberration Aberration) (StateVector, error)
	// ShadowFraction returns the fraction of the light source hidden by the occulting body
	// as seen from the provided state: 0 in full light, 1 in umbra.
	ShadowFraction(occulting *CelestialBody, sv StateVector) (float64, error)
}

// EphemerisSource returns the geometric state of a body relative to its center of motion, in ICRF.
type EphemerisSource interface {
	State(epoch time.Time) (position, velocity r3.Vec, err error)
}

// LinearMotion is a body moving in a straight line at constant velocity, which includes not moving at all.
type LinearMotion struct {
	Epoch    time.Time
	Position r3.Vec
	Velocity r3.Vec
}

// State implements the EphemerisSource interface.
func (l LinearMotion) State(epoch time.Time) (r3.Vec, r3.Vec, error) {
	dt := epoch.Sub(l.Epoch).Seconds()
	return r3.Add(l.Position, r3.Scale(dt, l.Velocity)), l.Velocity, nil
}

type ephemerisNode struct {
	body, center *CelestialBody
	src          EphemerisSource
}

// SolarSystem is a tree of bodies whose states are known relative to their center of motion.
// It is an Environment. Register every body with Add before using it: Add is not safe
// to call concurrently with lookups.
type SolarSystem struct {
	root  *CelestialBody
	light *CelestialBody
	nodes map[int]ephemerisNode
}

// NewSolarSystem returns a solar system centered on root, lit by light (may be nil when unused).
func NewSolarSystem(root, light *CelestialBody) *SolarSystem {
	s := &SolarSystem{root: root, light: light, nodes: make(map[int]ephemerisNode)}
	s.nodes[root.NAIFID] = ephemerisNode{body: root}
	return s
}

// Add registers a body whose state relative to center is provided by src.
func (s *SolarSystem) Add(body, center *CelestialBody, src EphemerisSource) error {
	if body == nil || center == nil {
		return ErrNilBody
	}
	if src == nil {
		return fmt.Errorf("no ephemeris source for %s", body.Name)
	}
	if _, exists := s.nodes[center.NAIFID]; !exists {
		return fmt.Errorf("%w: center %s of %s", ErrUnknownBody, center.Name, body.Name)
	}
	if _, exists := s.nodes[body.NAIFID]; exists {
		return fmt.Errorf("%s already registered", body.Name)
	}
	s.nodes[body.NAIFID] = ephemerisNode{body: body, center: center, src: src}
	return nil
}

// Bodies returns the registered bodies, sorted by NAIF ID.
func (s *SolarSystem) Bodies() []*CelestialBody {
	bodies := make([]*CelestialBody, 0, len(s.nodes))
	for _, n := range s.nodes {
		bodies = append(bodies, n.body)
	}
	sort.Slice(bodies, func(i, j int) bool { return bodies[i].NAIFID < bodies[j].NAIFID })
	return bodies
}

// Root returns the body every registered state is ultimately relative to.
func (s *SolarSystem) Root() *CelestialBody {
	return s.root
}

// LightSource returns the body used for shadow computations.
func (s *SolarSystem) LightSource() *CelestialBody {
	return s.light
}

// geometric returns the state of body relative to the root.
func (s *SolarSystem) geometric(epoch time.Time, body *CelestialBody) (pos, vel r3.Vec, err error) {
	if body == nil {
		return pos, vel, ErrNilBody
	}
	node, ok := s.nodes[body.NAIFID]
	if !ok {
		return pos, vel, fmt.Errorf("%w: %s", ErrUnknownBody, body.Name)
	}
	for node.center != nil {
		p, v, err := node.src.State(epoch)
		if err != nil {
			return pos, vel, fmt.Errorf("ephemeris of %s: %w", node.body.Name, err)
		}
		pos = r3.Add(pos, p)
		vel = r3.Add(vel, v)
		node = s.nodes[node.center.NAIFID]
	}
	return pos, vel, nil
}

// Ephemeris implements the Environment interface.
func (s *SolarSystem) Ephemeris(epoch time.Time, target, observer *CelestialBody, frame Frame, aberration Aberration) (StateVector, error) {
	if frame != ICRF {
		return StateVector{}, fmt.Errorf("%w: %s", ErrUnsupportedFrame, frame)
	}
	oPos, oVel, err := s.geometric(epoch, observer)
	if err != nil {
		return StateVector{}, err
	}
	tPos, tVel, err := s.geometric(epoch, target)
	if err != nil {
		return StateVector{}, err
	}
	if aberration == LT && !target.Equals(observer) {
		// One pass: where the target was when the light now reaching the observer left it.
		τ := r3.Norm(r3.Sub(tPos, oPos)) / SpeedOfLight
		if tPos, tVel, err = s.geometric(epoch.Add(-time.Duration(τ*float64(time.Second))), target); err != nil {
			return StateVector{}, err
		}
	}
	return StateVector{Epoch: epoch, Position: r3.Sub(tPos, oPos), Velocity: r3.Sub(tVel, oVel), Observer: observer, Frame: frame}, nil
}

// ShadowFraction implements the Environment interface.
func (s *SolarSystem) ShadowFraction(occulting *CelestialBody, sv StateVector) (float64, error) {
	if s.light == nil || occulting == nil {
		return 0, ErrNilBody
	}
	if occulting.Equals(s.light) {
		return 0, nil
	}
	light, err := s.Ephemeris(sv.Epoch, s.light, sv.Observer, sv.Frame, LT)
	if err != nil {
		return 0, err
	}
	occ, err := s.Ephemeris(sv.Epoch, occulting, sv.Observer, sv.Frame, LT)
	if err != nil {
		return 0, err
	}
	return shadowFraction(s.light, r3.Sub(light.Position, sv.Position), occulting, r3.Sub(occ.Position, sv.Position)), nil
}

// Cached returns a copy of this solar system where every source is replaced by an
// interpolation cache covering the window, sampled every grid. The cache starts early
// enough for light time corrected lookups at the start of the window.
func (s *SolarSystem) Cached(w Window, grid time.Duration) (*SolarSystem, error) {
	var farthest float64
	for _, n := range s.nodes {
		pos, _, err := s.geometric(w.Start, n.body)
		if err != nil {
			return nil, err
		}
		farthest = math.Max(farthest, r3.Norm(pos))
	}
	// Two bodies are at most twice the farthest distance apart.
	w.Start = w.Start.Add(-time.Duration(2 * farthest / SpeedOfLight * float64(time.Second)))
	cpy := &SolarSystem{root: s.root, light: s.light, nodes: make(map[int]ephemerisNode, len(s.nodes))}
	for id, n := range s.nodes {
		if n.src != nil {
			cache, err := NewEphemerisCache(n.src, w, grid)
			if err != nil {
				return nil, fmt.Errorf("caching %s: %w", n.body.Name, err)
			}
			n.src = cache
		}
		cpy.nodes[id] = n
	}
	return cpy, nil
}
