package astro

import (
	"fmt"

	kitlog "github.com/go-kit/kit/log"
)

const (
	// DefaultDragCoefficient is used when no drag coefficient is provided.
	DefaultDragCoefficient = 2.2
	// DefaultSolarRadiationCoefficient is used when no radiation coefficient is provided.
	DefaultSolarRadiationCoefficient = 1.0
)

// Spacecraft holds the physical properties which matter to non-gravitational forces.
type Spacecraft struct {
	Name                      string
	DryMass, FuelMass         float64 // kg
	SectionalArea             float64 // m^2
	DragCoefficient           float64
	SolarRadiationCoefficient float64
	logger                    kitlog.Logger
}

// NewSpacecraft returns a spacecraft with a one square meter sectional area and default coefficients.
func NewSpacecraft(name string, dryMass, fuelMass float64) (*Spacecraft, error) {
	return NewSpacecraftWithSurface(name, dryMass, fuelMass, 1.0, DefaultDragCoefficient, DefaultSolarRadiationCoefficient)
}

// NewSpacecraftWithSurface returns a spacecraft with the provided surface properties.
func NewSpacecraftWithSurface(name string, dryMass, fuelMass, area, cd, cr float64) (*Spacecraft, error) {
	switch {
	case dryMass <= 0:
		return nil, fmt.Errorf("%w: dry mass must be positive, got %f", ErrInvalidSpacecraft, dryMass)
	case fuelMass < 0:
		return nil, fmt.Errorf("%w: fuel mass cannot be negative, got %f", ErrInvalidSpacecraft, fuelMass)
	case area <= 0:
		return nil, fmt.Errorf("%w: sectional area must be positive, got %f", ErrInvalidSpacecraft, area)
	case cd < 0:
		return nil, fmt.Errorf("%w: drag coefficient cannot be negative, got %f", ErrInvalidSpacecraft, cd)
	case cr < 0:
		return nil, fmt.Errorf("%w: radiation coefficient cannot be negative, got %f", ErrInvalidSpacecraft, cr)
	}
	return &Spacecraft{Name: name, DryMass: dryMass, FuelMass: fuelMass, SectionalArea: area, DragCoefficient: cd, SolarRadiationCoefficient: cr}, nil
}

// TotalMass returns the dry mass plus the remaining fuel.
func (sc *Spacecraft) TotalMass() float64 {
	return sc.DryMass + sc.FuelMass
}

// Logger returns the logger of this spacecraft, which discards everything until SetLogger is called.
func (sc *Spacecraft) Logger() kitlog.Logger {
	if sc.logger == nil {
		return kitlog.NewNopLogger()
	}
	return sc.logger
}

// SetLogger replaces the logger of this spacecraft.
func (sc *Spacecraft) SetLogger(logger kitlog.Logger) {
	sc.logger = kitlog.With(logger, "spacecraft", sc.Name)
}

func (sc *Spacecraft) String() string {
	return fmt.Sprintf("%s (%.3f kg)", sc.Name, sc.TotalMass())
}
