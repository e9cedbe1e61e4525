package astro

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultEphemerisGrid is the default sampling of an EphemerisCache.
	DefaultEphemerisGrid = 60 * time.Second
	lagrangePoints       = 8
	cacheBuffer          = 4 // extra grid points on each side of the window
)

// EphemerisCache samples an EphemerisSource on a regular grid once, and interpolates
// it with eight point Lagrange polynomials afterwards. It is read-only once built.
type EphemerisCache struct {
	first      time.Time
	grid       time.Duration
	x, y, z    []float64
	vx, vy, vz []float64
}

// NewEphemerisCache samples src over the window, padded by a few grid points on each side.
func NewEphemerisCache(src EphemerisSource, w Window, grid time.Duration) (*EphemerisCache, error) {
	if grid <= 0 {
		return nil, fmt.Errorf("%w: cache grid %s", ErrInvalidStep, grid)
	}
	if w.End.Before(w.Start) {
		return nil, fmt.Errorf("%w: end %s before start %s", ErrInvalidWindow, w.End, w.Start)
	}
	inner := int(math.Ceil(w.Length().Seconds()/grid.Seconds())) + 1
	size := inner + 2*cacheBuffer
	if size < lagrangePoints {
		size = lagrangePoints
	}
	c := &EphemerisCache{first: w.Start.Add(-cacheBuffer * grid), grid: grid}
	for _, s := range []*[]float64{&c.x, &c.y, &c.z, &c.vx, &c.vy, &c.vz} {
		*s = make([]float64, size)
	}
	for i := 0; i < size; i++ {
		p, v, err := src.State(c.first.Add(time.Duration(i) * grid))
		if err != nil {
			return nil, err
		}
		c.x[i], c.y[i], c.z[i] = p.X, p.Y, p.Z
		c.vx[i], c.vy[i], c.vz[i] = v.X, v.Y, v.Z
	}
	return c, nil
}

// Window returns the span covered by the cache, buffer included.
func (c *EphemerisCache) Window() Window {
	return Window{Start: c.first, End: c.first.Add(time.Duration(len(c.x)-1) * c.grid)}
}

// State implements the EphemerisSource interface.
func (c *EphemerisCache) State(epoch time.Time) (r3.Vec, r3.Vec, error) {
	size := len(c.x)
	// Fractional grid index of the epoch.
	u := epoch.Sub(c.first).Seconds() / c.grid.Seconds()
	if u < 0 || u > float64(size-1) {
		return r3.Vec{}, r3.Vec{}, fmt.Errorf("%w: %s not in %s - %s", ErrOutOfRange, epoch, c.first, c.Window().End)
	}
	start := int(math.Floor(u)) - lagrangePoints/2 + 1
	if start < 0 {
		start = 0
	} else if start > size-lagrangePoints {
		start = size - lagrangePoints
	}
	w := lagrangeWeights(u - float64(start))
	end := start + lagrangePoints
	pos := r3.Vec{X: floats.Dot(w, c.x[start:end]), Y: floats.Dot(w, c.y[start:end]), Z: floats.Dot(w, c.z[start:end])}
	vel := r3.Vec{X: floats.Dot(w, c.vx[start:end]), Y: floats.Dot(w, c.vy[start:end]), Z: floats.Dot(w, c.vz[start:end])}
	return pos, vel, nil
}

// lagrangeWeights returns the Lagrange basis at u for the nodes 0, 1, ..., lagrangePoints-1.
func lagrangeWeights(u float64) []float64 {
	w := make([]float64, lagrangePoints)
	for j := range w {
		w[j] = 1
		for k := 0; k < lagrangePoints; k++ {
			if k != j {
				w[j] *= (u - float64(k)) / float64(j-k)
			}
		}
	}
	return w
}
