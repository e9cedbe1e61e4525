package astro

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// shadowFraction returns the fraction of the light source's disk hidden by the occulting body's disk,
// both seen from the observer. Positions are relative to the observer.
func shadowFraction(light *CelestialBody, toLight r3.Vec, occulting *CelestialBody, toOcc r3.Vec) float64 {
	dl, do := r3.Norm(toLight), r3.Norm(toOcc)
	switch {
	case do <= occulting.EquatorialRadius:
		return 1 // Inside the occulting body.
	case dl <= light.EquatorialRadius, do >= dl:
		return 0
	}
	θl := light.angularSize(dl) / 2
	θo := occulting.angularSize(do) / 2
	θ := angleBetween(toLight, toOcc)
	switch {
	case θ >= θl+θo:
		return 0
	case θ <= θo-θl:
		return 1 // Total
	case θ <= θl-θo:
		return (θo * θo) / (θl * θl) // Annular
	}
	return math.Max(0, math.Min(1, diskOverlap(θl, θo, θ)/(math.Pi*θl*θl)))
}

// diskOverlap returns the area of the lens where two disks of radii r1 and r2, whose centers
// are d apart, intersect.
func diskOverlap(r1, r2, d float64) float64 {
	c1 := clamp((d*d+r1*r1-r2*r2)/(2*d*r1), -1, 1)
	c2 := clamp((d*d+r2*r2-r1*r1)/(2*d*r2), -1, 1)
	k := (-d + r1 + r2) * (d + r1 - r2) * (d - r1 + r2) * (d + r1 + r2)
	return r1*r1*math.Acos(c1) + r2*r2*math.Acos(c2) - 0.5*math.Sqrt(math.Max(k, 0))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
