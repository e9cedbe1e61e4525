package astro

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distmv"
)

// Half width of the central difference used for station velocities.
const stationVelocityStep = time.Second

var (
	σρ             = 5.0  // m
	σρDot          = 5e-3 // m/s
	DSS34Canberra  = mustStation(NewStation("DSS34Canberra", Earth, -35.398333, 148.981944, 691.750, 6, σρ, σρDot))
	DSS65Madrid    = mustStation(NewStation("DSS65Madrid", Earth, 40.427222, 4.250556, 834.939, 6, σρ, σρDot))
	DSS13Goldstone = mustStation(NewStation("DSS13Goldstone", Earth, 35.247164, 243.205, 1071.14904, 6, σρ, σρDot))
)

// Station is a ground station fixed on a body.
type Station struct {
	Name          string
	Body          *CelestialBody
	Location      Planetodetic
	ElevationMask float64 // radians
	position      r3.Vec  // body-fixed
	// Measurement noise, nil when noiseless.
	rangeNoise, rangeRateNoise *distmv.Normal
}

// NewStation returns a new station. Angles are in degrees and the altitude in meters.
// The range and range rate noises are standard deviations in m and m/s; zero disables noise.
func NewStation(name string, body *CelestialBody, latitude, longitude, altitude, elevationMask, σρ, σρDot float64) (*Station, error) {
	if body == nil {
		return nil, ErrNilBody
	}
	if math.Abs(latitude) > 90 {
		return nil, fmt.Errorf("invalid latitude %f", latitude)
	}
	loc := Planetodetic{Latitude: latitude * deg2rad, Longitude: Deg2rad(longitude), Altitude: altitude}
	s := &Station{Name: name, Body: body, Location: loc, ElevationMask: elevationMask * deg2rad, position: body.FromPlanetodetic(loc)}
	var err error
	if s.rangeNoise, err = gaussianNoise(σρ); err != nil {
		return nil, err
	}
	if s.rangeRateNoise, err = gaussianNoise(σρDot); err != nil {
		return nil, err
	}
	return s, nil
}

func gaussianNoise(σ float64) (*distmv.Normal, error) {
	if σ < 0 {
		return nil, fmt.Errorf("negative noise deviation %f", σ)
	}
	if σ == 0 {
		return nil, nil
	}
	noise, ok := distmv.NewNormal([]float64{0}, mat.NewSymDense(1, []float64{σ * σ}), nil)
	if !ok {
		return nil, fmt.Errorf("invalid noise deviation %f", σ)
	}
	return noise, nil
}

func mustStation(s *Station, err error) *Station {
	if err != nil {
		panic(err)
	}
	return s
}

// StationFromName returns one of the built-in deep space network stations.
func StationFromName(name string) (*Station, error) {
	switch strings.ToLower(name) {
	case "dss13":
		return DSS13Goldstone, nil
	case "dss34":
		return DSS34Canberra, nil
	case "dss65":
		return DSS65Madrid, nil
	default:
		return nil, fmt.Errorf("unknown station `%s`", name)
	}
}

// State returns the inertial position and velocity of the station relative to its body.
func (s *Station) State(epoch time.Time) (r3.Vec, r3.Vec) {
	at := func(t time.Time) r3.Vec {
		if s.Body.Orientation == nil {
			return s.position
		}
		return fromBodyFixed(s.Body.Orientation.BodyFixed(t), s.position)
	}
	before, after := at(epoch.Add(-stationVelocityStep)), at(epoch.Add(stationVelocityStep))
	return at(epoch), r3.Scale(1/(2*stationVelocityStep.Seconds()), r3.Sub(after, before))
}

// Measurement is a range and range rate measurement of a station.
type Measurement struct {
	Visible                  bool
	Range, RangeRate         float64 // noisy
	TrueRange, TrueRangeRate float64
	Elevation, Azimuth       float64 // radians
	State                    StateVector
	Station                  *Station
}

// Measure returns the measurement of the state, which must be relative to the station's body.
func (s *Station) Measure(sv StateVector) (Measurement, error) {
	if !s.Body.Equals(sv.Observer) {
		return Measurement{}, fmt.Errorf("%w: state relative to %v, station on %s", ErrObserverMismatch, sv.Observer, s.Body.Name)
	}
	if !sv.Frame.IsInertial() {
		return Measurement{}, fmt.Errorf("%w: %s", ErrUnsupportedFrame, sv.Frame)
	}
	pos, vel := s.State(sv.Epoch)
	ρVec := r3.Sub(sv.Position, pos)
	ρ := r3.Norm(ρVec)
	if ρ == 0 {
		return Measurement{}, fmt.Errorf("spacecraft at station %s", s.Name)
	}
	ρDot := r3.Dot(ρVec, r3.Sub(sv.Velocity, vel)) / ρ
	el, az := s.elevationAzimuth(sv.Epoch, ρVec, ρ)
	m := Measurement{Visible: el >= s.ElevationMask, Range: ρ, RangeRate: ρDot, TrueRange: ρ, TrueRangeRate: ρDot, Elevation: el, Azimuth: az, State: sv, Station: s}
	if s.rangeNoise != nil {
		m.Range += s.rangeNoise.Rand(nil)[0]
	}
	if s.rangeRateNoise != nil {
		m.RangeRate += s.rangeRateNoise.Rand(nil)[0]
	}
	return m, nil
}

// elevationAzimuth returns the topocentric elevation and azimuth (from north, towards east).
func (s *Station) elevationAzimuth(epoch time.Time, ρVec r3.Vec, ρ float64) (el, az float64) {
	ρBF, _ := toBodyFixed(s.Body.Orientation, epoch, ρVec)
	sφ, cφ := math.Sincos(s.Location.Latitude)
	sλ, cλ := math.Sincos(s.Location.Longitude)
	up := r3.Vec{X: cφ * cλ, Y: cφ * sλ, Z: sφ}
	east := r3.Vec{X: -sλ, Y: cλ}
	north := r3.Vec{X: -sφ * cλ, Y: -sφ * sλ, Z: cφ}
	el = math.Asin(r3.Dot(ρBF, up) / ρ)
	az = math.Atan2(r3.Dot(ρBF, east), r3.Dot(ρBF, north))
	if az < 0 {
		az += 2 * math.Pi
	}
	return el, az
}

// Measurements returns the visible measurements of an ephemeris.
func (s *Station) Measurements(eph Ephemeris) ([]Measurement, error) {
	var visible []Measurement
	for _, sv := range eph {
		m, err := s.Measure(sv)
		if err != nil {
			return nil, err
		}
		if m.Visible {
			visible = append(visible, m)
		}
	}
	return visible, nil
}

func (s *Station) String() string {
	return fmt.Sprintf("%s (%f,%f); alt = %f m; el = %f deg", s.Name, s.Location.Latitude/deg2rad, Rad2deg(s.Location.Longitude), s.Location.Altitude, s.ElevationMask/deg2rad)
}

// CSV returns the data as CSV (does *not* include the new line)
func (m Measurement) CSV() string {
	return fmt.Sprintf("%s,%s,%f,%f,%f,%f,%f,%f", m.State.Epoch.UTC().Format(time.RFC3339Nano), m.Station.Name, m.TrueRange, m.TrueRangeRate, m.Range, m.RangeRate, m.Elevation/deg2rad, Rad2deg(m.Azimuth))
}

func (m Measurement) String() string {
	return fmt.Sprintf("%s@%s", m.Station.Name, m.State.Epoch)
}
