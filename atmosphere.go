package astro

import (
	"math"
	"sort"
)

// AtmosphericModel returns the air density in kg/m^3 at an altitude in meters.
type AtmosphericModel interface {
	Density(altitude float64) float64
}

// EarthStandardAtmosphere is the analytical fit of the 1976 US standard atmosphere.
// It is only meaningful in the lower atmosphere: above ~50 km the density quickly vanishes.
type EarthStandardAtmosphere struct{}

// Temperature returns the air temperature in Celsius.
func (EarthStandardAtmosphere) Temperature(altitude float64) float64 {
	switch {
	case altitude < 11000:
		return 15.04 - 0.00649*altitude
	case altitude < 25000:
		return -56.46
	default:
		return math.Min(-131.21+0.00299*altitude, 2200)
	}
}

// Pressure returns the air pressure in kPa.
func (a EarthStandardAtmosphere) Pressure(altitude float64) float64 {
	T := a.Temperature(altitude) + 273.15
	switch {
	case altitude < 11000:
		return 101.29 * math.Pow(T/288.08, 5.256)
	case altitude < 25000:
		return 22.65 * math.Exp(1.73-0.000157*altitude)
	default:
		return 2.488 * math.Pow(T/216.6, -11.388)
	}
}

// Density implements the AtmosphericModel interface.
func (a EarthStandardAtmosphere) Density(altitude float64) float64 {
	return a.Pressure(altitude) / (0.2869 * (a.Temperature(altitude) + 273.15))
}

// expLayer is one layer of the exponential atmosphere.
type expLayer struct {
	h0 float64 // base altitude, m
	ρ0 float64 // base density, kg/m^3
	H  float64 // scale height, m
}

// Vallado, Fundamentals of Astrodynamics and Applications, table 8-4.
var expLayers = []expLayer{
	{0, 1.225, 7249},
	{25e3, 3.899e-2, 6349},
	{30e3, 1.774e-2, 6682},
	{40e3, 3.972e-3, 7554},
	{50e3, 1.057e-3, 8382},
	{60e3, 3.206e-4, 7714},
	{70e3, 8.770e-5, 6549},
	{80e3, 1.905e-5, 5799},
	{90e3, 3.396e-6, 5382},
	{100e3, 5.297e-7, 5877},
	{110e3, 9.661e-8, 7263},
	{120e3, 2.438e-8, 9473},
	{130e3, 8.484e-9, 12636},
	{140e3, 3.845e-9, 16149},
	{150e3, 2.070e-9, 22523},
	{180e3, 5.464e-10, 29740},
	{200e3, 2.789e-10, 37105},
	{250e3, 7.248e-11, 45546},
	{300e3, 2.418e-11, 53628},
	{350e3, 9.518e-12, 53298},
	{400e3, 3.725e-12, 58515},
	{450e3, 1.585e-12, 60828},
	{500e3, 6.967e-13, 63822},
	{600e3, 1.454e-13, 71835},
	{700e3, 3.614e-14, 88667},
	{800e3, 1.170e-14, 124640},
	{900e3, 5.245e-15, 181050},
	{1000e3, 3.019e-15, 268000},
}

// ExponentialAtmosphere is a piecewise exponential density model of Earth's atmosphere,
// valid from the ground up to the exosphere.
type ExponentialAtmosphere struct{}

// Density implements the AtmosphericModel interface.
func (ExponentialAtmosphere) Density(altitude float64) float64 {
	if altitude < 0 {
		altitude = 0
	}
	// Index of the last layer whose base is below the altitude.
	i := sort.Search(len(expLayers), func(i int) bool { return expLayers[i].h0 > altitude }) - 1
	l := expLayers[i]
	return l.ρ0 * math.Exp(-(altitude-l.h0)/l.H)
}
