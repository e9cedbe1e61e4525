package astro

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// GravityField computes the full gravitational acceleration of a body, central term included,
// at a position expressed in that body's body-fixed frame.
type GravityField interface {
	Acceleration(body *CelestialBody, r r3.Vec) r3.Vec
}

// ZonalField adds the closed form J2, J3 and J4 terms to the central attraction.
type ZonalField struct {
	Jn uint8 // Highest zonal term used (only up to 4 supported)
}

// NewZonalField returns a zonal field up to the provided degree.
func NewZonalField(jn uint8) ZonalField {
	if jn > 4 {
		jn = 4
	}
	return ZonalField{Jn: jn}
}

// Acceleration implements the GravityField interface.
func (z ZonalField) Acceleration(body *CelestialBody, R r3.Vec) r3.Vec {
	μ := body.GM()
	Re := body.EquatorialRadius
	x, y, zz := R.X, R.Y, R.Z
	z2 := zz * zz
	r2 := r3.Norm2(R)
	r := math.Sqrt(r2)
	acc := r3.Scale(-μ/(r2*r), R)
	if z.Jn < 2 {
		return acc
	}
	r5 := r2 * r2 * r
	r7 := r5 * r2
	// J2
	accJ2 := (3 / 2.) * body.J(2) * Re * Re * μ
	acc.X += accJ2 * (5*x*z2/r7 - x/r5)
	acc.Y += accJ2 * (5*y*z2/r7 - y/r5)
	acc.Z += accJ2 * (5*z2*zz/r7 - 3*zz/r5)
	if z.Jn >= 3 {
		r9 := r7 * r2
		accJ3 := body.J(3) * Re * Re * Re * μ
		acc.X += (5 / 2.) * accJ3 * (7*x*z2*zz/r9 - 3*x*zz/r7)
		acc.Y += (5 / 2.) * accJ3 * (7*y*z2*zz/r9 - 3*y*zz/r7)
		acc.Z += 0.5 * accJ3 * (35*z2*z2/r9 - 30*z2/r7 + 3/r5)
	}
	if z.Jn >= 4 {
		u2 := z2 / r2
		accJ4 := (15 / 8.) * body.J(4) * Re * Re * Re * Re * μ / r7
		acc.X += accJ4 * x * (1 - 14*u2 + 21*u2*u2)
		acc.Y += accJ4 * y * (1 - 14*u2 + 21*u2*u2)
		acc.Z += accJ4 * zz * (5 - (70/3.)*u2 + 21*u2*u2)
	}
	return acc
}

// Coefficient is a fully normalized Stokes coefficient pair of degree N and order M.
type Coefficient struct {
	N, M int
	C, S float64
}

// ZonalCoefficients returns the normalized zonal coefficients matching the body's J2 to J4.
func ZonalCoefficients(body *CelestialBody) []Coefficient {
	var coeffs []Coefficient
	for n := 2; n <= 4; n++ {
		coeffs = append(coeffs, Coefficient{N: n, C: -body.J(uint8(n)) / math.Sqrt(float64(2*n+1))})
	}
	return coeffs
}

// SphericalHarmonicField is a geopotential model expanded in fully normalized spherical harmonics.
type SphericalHarmonicField struct {
	degree int
	c, s   [][]float64
}

// NewSphericalHarmonicField returns a geopotential of the provided maximum degree.
// Coefficients of degree zero and one are ignored: the central term is always included.
func NewSphericalHarmonicField(degree int, coeffs []Coefficient) (*SphericalHarmonicField, error) {
	if degree < 2 {
		return nil, fmt.Errorf("geopotential degree must be at least 2, got %d", degree)
	}
	f := &SphericalHarmonicField{degree: degree, c: triangle(degree), s: triangle(degree)}
	for _, k := range coeffs {
		if k.N < 0 || k.M < 0 || k.M > k.N {
			return nil, fmt.Errorf("invalid coefficient (%d, %d)", k.N, k.M)
		}
		if k.N > degree || k.N < 2 {
			continue
		}
		f.c[k.N][k.M] = k.C
		f.s[k.N][k.M] = k.S
	}
	return f, nil
}

// Degree returns the maximum degree of this field.
func (f *SphericalHarmonicField) Degree() int {
	return f.degree
}

// Acceleration implements the GravityField interface.
func (f *SphericalHarmonicField) Acceleration(body *CelestialBody, R r3.Vec) r3.Vec {
	μ := body.GM()
	r := r3.Norm(R)
	φ := math.Asin(R.Z / r)
	λ := math.Atan2(R.Y, R.X)
	sφ, cφ := math.Sincos(φ)
	sλ, cλ := math.Sincos(λ)
	P, dP := normalizedLegendre(φ, f.degree)

	var sumR, sumφ, sumλ float64
	ρ := body.EquatorialRadius / r
	ρn := ρ
	for n := 2; n <= f.degree; n++ {
		ρn *= ρ
		var tR, tφ, tλ float64
		for m := 0; m <= n; m++ {
			smλ, cmλ := math.Sincos(float64(m) * λ)
			cs := f.c[n][m]*cmλ + f.s[n][m]*smλ
			tR += P[n][m] * cs
			tφ += dP[n][m] * cs
			tλ += float64(m) * P[n][m] * (f.s[n][m]*cmλ - f.c[n][m]*smλ)
		}
		sumR += float64(n+1) * ρn * tR
		sumφ += ρn * tφ
		sumλ += ρn * tλ
	}
	g := μ / (r * r)
	ar := -g * (1 + sumR)
	aφ := g * sumφ
	var aλ float64
	if cφ > 1e-12 {
		aλ = g * sumλ / cφ
	}
	return r3.Vec{
		X: ar*cφ*cλ - aφ*sφ*cλ - aλ*sλ,
		Y: ar*cφ*sλ - aφ*sφ*sλ + aλ*cλ,
		Z: ar*sφ + aφ*cφ,
	}
}

// normalizedLegendre returns the fully normalized associated Legendre functions of sin(φ)
// and their derivatives with respect to φ, indexed [n][m].
func normalizedLegendre(φ float64, nmax int) (P, dP [][]float64) {
	P = triangle(nmax)
	dP = triangle(nmax)
	s, c := math.Sincos(φ)
	P[0][0] = 1
	for m := 0; m <= nmax; m++ {
		if m > 0 {
			k := 1.0
			if m == 1 {
				k = 2
			}
			fm := float64(m)
			P[m][m] = math.Sqrt(k*(2*fm+1)/(2*fm)) * c * P[m-1][m-1]
		}
		if m+1 <= nmax {
			P[m+1][m] = math.Sqrt(float64(2*m+3)) * s * P[m][m]
		}
		for n := m + 2; n <= nmax; n++ {
			fn, fm := float64(n), float64(m)
			a := math.Sqrt((4*fn*fn - 1) / (fn*fn - fm*fm))
			b := math.Sqrt((2*fn + 1) * ((fn-1)*(fn-1) - fm*fm) / ((2*fn - 3) * (fn*fn - fm*fm)))
			P[n][m] = a*s*P[n-1][m] - b*P[n-2][m]
		}
	}
	if math.Abs(c) < 1e-12 {
		// Derivatives are left at zero at the poles.
		return
	}
	for n := 1; n <= nmax; n++ {
		fn := float64(n)
		for m := 0; m <= n; m++ {
			fm := float64(m)
			dP[n][m] = -fn * s * P[n][m]
			if m < n {
				dP[n][m] += math.Sqrt((2*fn+1)*(fn+fm)*(fn-fm)/(2*fn-1)) * P[n-1][m]
			}
			dP[n][m] /= c
		}
	}
	return
}

// triangle allocates a lower triangular [n][m] table.
func triangle(nmax int) [][]float64 {
	t := make([][]float64, nmax+1)
	for n := range t {
		t[n] = make([]float64, n+1)
	}
	return t
}
