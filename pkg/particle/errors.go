package particle

import "errors"

var (
	// ErrInvalidDuration is returned for a negative segment duration.
	ErrInvalidDuration = errors.New("invalid segment duration")

	// ErrInvalidVelocity is returned for a non-positive move speed.
	ErrInvalidVelocity = errors.New("velocity must be positive")

	// ErrInvalidFrequency is returned for a non-positive oscillation frequency.
	ErrInvalidFrequency = errors.New("frequency must be positive")

	// ErrInvalidAmplitude is returned for a negative oscillation amplitude.
	ErrInvalidAmplitude = errors.New("amplitude must not be negative")

	// ErrInvalidShape is returned for a malformed nervous move shape.
	ErrInvalidShape = errors.New("invalid nervous shape")

	// ErrInvalidRepeat is returned when a pattern is repeated less than once.
	ErrInvalidRepeat = errors.New("repeat count must be at least 1")

	// ErrZeroLengthRotation is returned when a rotation with a nonzero yaw
	// change is asked to complete in zero time.
	ErrZeroLengthRotation = errors.New("rotation needs a positive duration")

	// ErrNonFinite is returned when a target or parameter is NaN or infinite.
	ErrNonFinite = errors.New("non-finite value")
)
