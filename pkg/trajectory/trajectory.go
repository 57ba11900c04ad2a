// Package trajectory defines the finite trajectory contract shared by every
// motion in a show and the generic building blocks composed from it.
//
// A FiniteTrajectory is a pure function of elapsed time. Implementations in
// this module are immutable once constructed, so a single value can be
// sampled from any number of goroutines without coordination.
//
// Time outside [0, Duration()] is clamped to the nearest end: sampling
// before the start returns the first pose, sampling after the end holds the
// last pose. NaN is treated as 0. Evaluation never fails.
package trajectory

import (
	"math"

	"github.com/teslashibe/go-swarmshow/pkg/geom"
)

// FiniteTrajectory is a bounded-duration motion.
type FiniteTrajectory interface {
	// Duration returns the length of the trajectory in seconds. It never
	// changes for the lifetime of the value.
	Duration() float64

	// DesiredPosition returns the pose at t seconds since the start.
	DesiredPosition(t float64) geom.Pose
}

// ClampTime maps t into [0, duration].
func ClampTime(t, duration float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > duration {
		return duration
	}
	return t
}

// StartPose returns the pose at the start of traj.
func StartPose(traj FiniteTrajectory) geom.Pose {
	return traj.DesiredPosition(0)
}

// EndPose returns the pose at the end of traj.
func EndPose(traj FiniteTrajectory) geom.Pose {
	return traj.DesiredPosition(traj.Duration())
}

// ============================================================
// Hold - constant pose
// ============================================================

type hold struct {
	pose     geom.Pose
	duration float64
}

// Hold returns a trajectory that stays at pose for duration seconds.
// A negative duration is treated as zero.
func Hold(pose geom.Pose, duration float64) FiniteTrajectory {
	return hold{pose: pose, duration: math.Max(0, duration)}
}

func (h hold) Duration() float64 { return h.duration }

func (h hold) DesiredPosition(float64) geom.Pose { return h.pose }

// ============================================================
// Padded - extend a trajectory by holding its last pose
// ============================================================

type padded struct {
	inner    FiniteTrajectory
	duration float64
}

// Padded reports duration as the length of traj, holding the final pose
// of traj past its own end. If duration is not longer than traj, traj is
// returned unchanged.
func Padded(traj FiniteTrajectory, duration float64) FiniteTrajectory {
	if duration <= traj.Duration() {
		return traj
	}
	return padded{inner: traj, duration: duration}
}

func (p padded) Duration() float64 { return p.duration }

func (p padded) DesiredPosition(t float64) geom.Pose {
	// The inner trajectory clamps anything past its own end.
	return p.inner.DesiredPosition(ClampTime(t, p.duration))
}

// ============================================================
// Sampling helpers
// ============================================================

// Sample is one evaluated point of a trajectory.
type Sample struct {
	T    float64   `json:"t"`
	Pose geom.Pose `json:"pose"`
}

// Samples evaluates traj at hz samples per second, always including both
// end points. It allocates and is meant for inspection, not control loops.
func Samples(traj FiniteTrajectory, hz float64) []Sample {
	d := traj.Duration()
	if hz <= 0 || d == 0 {
		return []Sample{{T: 0, Pose: traj.DesiredPosition(0)}}
	}

	n := int(math.Ceil(d * hz))
	out := make([]Sample, 0, n+1)
	step := 1 / hz
	for i := 0; i < n; i++ {
		t := float64(i) * step
		out = append(out, Sample{T: t, Pose: traj.DesiredPosition(t)})
	}
	return append(out, Sample{T: d, Pose: traj.DesiredPosition(d)})
}
