package astro

import "errors"

var (
	// ErrNoPredecessor is returned when integrating a slot without a previous one.
	ErrNoPredecessor = errors.New("no previous state to integrate from")
	// ErrEpochOrder is returned when slot epochs do not strictly increase.
	ErrEpochOrder = errors.New("epochs must strictly increase")
	// ErrNonFinite is returned when a state or acceleration is NaN or infinite.
	ErrNonFinite = errors.New("non-finite value")
	// ErrNilSpacecraft is returned when a force requires a spacecraft.
	ErrNilSpacecraft = errors.New("spacecraft is required")
	// ErrNilBody is returned when a celestial body is required.
	ErrNilBody = errors.New("celestial body is required")
	// ErrNilOcculters is returned when the occulting body list is missing.
	ErrNilOcculters = errors.New("occulting body list is required")
	// ErrNilEnvironment is returned when a force needs ephemerides but has none.
	ErrNilEnvironment = errors.New("environment is required")
	// ErrNoAtmosphere is returned when drag is requested against a body without atmosphere.
	ErrNoAtmosphere = errors.New("body has no atmosphere model")
	// ErrUnknownBody is returned when a body is not known to the environment.
	ErrUnknownBody = errors.New("unknown celestial body")
	// ErrUnsupportedFrame is returned for frames the environment cannot serve.
	ErrUnsupportedFrame = errors.New("unsupported frame")
	// ErrObserverMismatch is returned when a state is not relative to the expected body.
	ErrObserverMismatch = errors.New("state observer mismatch")
	// ErrInvalidWindow is returned for windows ending before they start.
	ErrInvalidWindow = errors.New("invalid window")
	// ErrInvalidStep is returned for non-positive steps and scenario steps under a millisecond.
	ErrInvalidStep = errors.New("invalid step")
	// ErrOutOfRange is returned when an epoch falls outside of a cached ephemeris.
	ErrOutOfRange = errors.New("epoch out of range")
	// ErrAcceleratedOrigin is returned when a direct propagation would integrate about a
	// body attracted by the other propagation bodies.
	ErrAcceleratedOrigin = errors.New("integration origin is accelerated by the propagation bodies")
	// ErrLightSourceMismatch is returned when radiation pressure and shadows use different lights.
	ErrLightSourceMismatch = errors.New("light source differs from the environment's")
	// ErrInvalidSpacecraft is returned for inconsistent spacecraft properties.
	ErrInvalidSpacecraft = errors.New("invalid spacecraft")
)
