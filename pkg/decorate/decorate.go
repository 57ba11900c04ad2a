// Package decorate derives new trajectories from existing ones.
//
// A decorator wraps a trajectory.FiniteTrajectory and is itself one, so
// decorators chain. The wrapped value is never modified.
package decorate

import (
	"errors"
	"fmt"
	"math"

	"github.com/teslashibe/go-swarmshow/pkg/geom"
	"github.com/teslashibe/go-swarmshow/pkg/trajectory"
)

var (
	// ErrInvalidFrequency is returned for a non-positive sweep frequency.
	ErrInvalidFrequency = errors.New("frequency must be positive")

	// ErrInvalidDelay is returned for a negative or non-finite delay.
	ErrInvalidDelay = errors.New("delay must be a non-negative number of seconds")

	// ErrNilTrajectory is returned when there is nothing to decorate.
	ErrNilTrajectory = errors.New("nil trajectory")
)

// ============================================================
// HorizontalCircle - rotating sweep around a vertical axis
// ============================================================

// HorizontalCircle sweeps the wrapped trajectory around a vertical axis
// through center at frequency revolutions per second.
//
// The sweep radius is the wrapped trajectory's current horizontal distance
// to center, so the circle grows and shrinks as the underlying path moves
// away from or towards the axis. Altitude and yaw pass through unchanged.
// The starting angle is taken from the wrapped trajectory's first pose, so
// both agree at t=0.
type HorizontalCircle struct {
	inner     trajectory.FiniteTrajectory
	center    geom.Point3D
	frequency float64
	phase     float64
}

// NewHorizontalCircle wraps traj. The Z coordinate of center is ignored.
func NewHorizontalCircle(traj trajectory.FiniteTrajectory, center geom.Point3D, frequency float64) (*HorizontalCircle, error) {
	if traj == nil {
		return nil, ErrNilTrajectory
	}
	if !(frequency > 0) || math.IsInf(frequency, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrequency, frequency)
	}

	first := traj.DesiredPosition(0)
	return &HorizontalCircle{
		inner:     traj,
		center:    geom.Point3D{X: center.X, Y: center.Y},
		frequency: frequency,
		phase:     math.Atan2(first.X-center.X, first.Y-center.Y),
	}, nil
}

// Duration returns the wrapped trajectory's duration.
func (c *HorizontalCircle) Duration() float64 {
	return c.inner.Duration()
}

// Phase returns the starting angle, measured from +Y towards +X.
func (c *HorizontalCircle) Phase() float64 {
	return c.phase
}

// DesiredPosition returns the swept pose at t.
func (c *HorizontalCircle) DesiredPosition(t float64) geom.Pose {
	t = trajectory.ClampTime(t, c.inner.Duration())
	base := c.inner.DesiredPosition(t)

	radius := geom.HorizontalDistance(base.Position(), c.center)
	angle := 2*math.Pi*c.frequency*t + c.phase
	return geom.Pose{
		X:   c.center.X + radius*math.Sin(angle),
		Y:   c.center.Y + radius*math.Cos(angle),
		Z:   base.Z,
		Yaw: base.Yaw,
	}
}

// ============================================================
// Delay - hold the start pose before playing
// ============================================================

// Delay holds the wrapped trajectory's first pose for a fixed time and
// then plays it.
type Delay struct {
	inner trajectory.FiniteTrajectory
	delay float64
	first geom.Pose
}

// NewDelay wraps traj, starting it after seconds.
func NewDelay(traj trajectory.FiniteTrajectory, seconds float64) (*Delay, error) {
	if traj == nil {
		return nil, ErrNilTrajectory
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDelay, seconds)
	}
	return &Delay{inner: traj, delay: seconds, first: traj.DesiredPosition(0)}, nil
}

// Duration returns the delay plus the wrapped duration.
func (d *Delay) Duration() float64 {
	return d.delay + d.inner.Duration()
}

// DesiredPosition returns the start pose during the delay and the wrapped
// trajectory's pose afterwards.
func (d *Delay) DesiredPosition(t float64) geom.Pose {
	t = trajectory.ClampTime(t, d.Duration())
	if t < d.delay {
		return d.first
	}
	return d.inner.DesiredPosition(t - d.delay)
}
