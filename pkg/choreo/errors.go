package choreo

import "errors"

// Configuration errors.
var (
	// ErrDuplicateDrone is returned when a drone appears twice in an act or roster.
	ErrDuplicateDrone = errors.New("duplicate drone")

	// ErrUnknownDrone is returned when an act flies a drone outside the roster.
	ErrUnknownDrone = errors.New("drone not in roster")

	// ErrMissingDrone is returned when an act leaves out a roster drone.
	ErrMissingDrone = errors.New("act is missing a roster drone")

	// ErrEmptyRoster is returned for a choreography without drones.
	ErrEmptyRoster = errors.New("empty roster")

	// ErrEmptyAct is returned when locking an act without drones.
	ErrEmptyAct = errors.New("act has no drones")

	// ErrInvalidName is returned for an empty act or drone name.
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidStartDelay is returned for a negative start delay.
	ErrInvalidStartDelay = errors.New("start delay must not be negative")

	// ErrNoScript is returned when a script set has no entry for a drone.
	ErrNoScript = errors.New("no script for drone")

	// ErrNoBuilder is returned when an act has nothing to build trajectories with.
	ErrNoBuilder = errors.New("act has no trajectory builder")

	// ErrNilTrajectory is returned when a builder returns no trajectory.
	ErrNilTrajectory = errors.New("builder returned nil trajectory")

	// ErrNilAct is returned when adding a nil act to a choreography.
	ErrNilAct = errors.New("nil act")
)

// Lifecycle errors. These signal misuse of the API rather than bad data.
var (
	// ErrActLocked is returned when mutating or re-locking a locked act.
	ErrActLocked = errors.New("act already locked")

	// ErrChoreographyClosed is returned when adding acts after playback
	// has taken its view.
	ErrChoreographyClosed = errors.New("choreography closed for playback")
)
