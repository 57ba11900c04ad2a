// Package particle builds a drone's motion from primitive segments.
//
// A Particle starts at an initial pose and appends hover, move, oscillating
// move and rotation segments. Each segment starts at the pose the previous
// one ended on, so the assembled trajectory is continuous at every boundary
// without any stitching.
//
// Append methods return the particle so a script reads top to bottom:
//
//	p := particle.New(initial).
//		Hover(2).
//		MoveToPointWithVelocity(target, 1.0).
//		RotateToAngle(-math.Pi/2, 3)
//	traj, err := p.Trajectory()
//
// The first invalid parameter is remembered and returned by Trajectory and
// Err; appends after an error are ignored.
package particle

import (
	"fmt"
	"math"

	"github.com/teslashibe/go-swarmshow/pkg/geom"
	"github.com/teslashibe/go-swarmshow/pkg/trajectory"
)

// Particle is a single drone's segment builder. It is not safe for
// concurrent use; build first, then share the returned trajectory.
type Particle struct {
	initial  geom.Point4D
	segments []segment
	err      error
}

// New creates a particle resting at initial.
func New(initial geom.Pose) *Particle {
	return &Particle{initial: geom.FromPose(initial)}
}

// Current returns the pose the next segment will start from.
func (p *Particle) Current() geom.Point4D {
	if len(p.segments) == 0 {
		return p.initial
	}
	return p.segments[len(p.segments)-1].end()
}

// Elapsed returns the summed duration of all appended segments.
func (p *Particle) Elapsed() float64 {
	var total float64
	for _, s := range p.segments {
		total += s.Duration()
	}
	return total
}

// Len returns the number of appended segments.
func (p *Particle) Len() int {
	return len(p.segments)
}

// Err returns the first configuration error, if any.
func (p *Particle) Err() error {
	return p.err
}

// Trajectory returns an immutable snapshot of the segments appended so far.
// Appending to the particle afterwards does not change the result.
func (p *Particle) Trajectory() (trajectory.FiniteTrajectory, error) {
	if p.err != nil {
		return nil, p.err
	}
	if len(p.segments) == 0 {
		return trajectory.Hold(p.initial.Pose(), 0), nil
	}

	parts := make([]trajectory.FiniteTrajectory, len(p.segments))
	for i, s := range p.segments {
		parts[i] = s
	}
	return trajectory.NewSequence(parts...), nil
}

// Hover holds the current pose for duration seconds.
func (p *Particle) Hover(duration float64) *Particle {
	if p.err != nil {
		return p
	}
	if !finite(duration) {
		return p.fail("hover", ErrNonFinite)
	}
	if duration < 0 {
		return p.fail("hover", fmt.Errorf("%w: %v", ErrInvalidDuration, duration))
	}

	cur := p.Current()
	return p.append(linear{from: cur, to: cur, duration: duration})
}

// MoveToPointWithVelocity flies in a straight line to target at speed m/s.
// Yaw is interpolated alongside the position. A target at the current
// position yields a zero-length segment.
func (p *Particle) MoveToPointWithVelocity(target geom.Point4D, speed float64) *Particle {
	if p.err != nil {
		return p
	}
	if !finitePoint(target) || !finite(speed) {
		return p.fail("move", ErrNonFinite)
	}
	if speed <= 0 {
		return p.fail("move", fmt.Errorf("%w: %v", ErrInvalidVelocity, speed))
	}

	cur := p.Current()
	var duration float64
	if d := geom.Distance4D(cur, target); d > 0 {
		duration = d / speed
	}
	return p.append(linear{from: cur, to: target, duration: duration})
}

// MoveToPointWithDuration flies in a straight line to target in exactly
// duration seconds.
func (p *Particle) MoveToPointWithDuration(target geom.Point4D, duration float64) *Particle {
	if p.err != nil {
		return p
	}
	if !finitePoint(target) || !finite(duration) {
		return p.fail("move", ErrNonFinite)
	}
	if duration < 0 {
		return p.fail("move", fmt.Errorf("%w: %v", ErrInvalidDuration, duration))
	}
	cur := p.Current()
	if duration == 0 && cur != target {
		return p.fail("move", fmt.Errorf("%w: zero duration to reach %v", ErrInvalidDuration, target))
	}
	return p.append(linear{from: cur, to: target, duration: duration})
}

// MoveTriangleToPoint flies to target while zig-zagging sideways with a
// triangle wave of the given amplitude (m) and frequency (Hz).
//
// The leg is made of a whole number of wave periods, one period per
// 4*amplitude metres of travel (at least one), so the deviation is back to
// zero on arrival.
func (p *Particle) MoveTriangleToPoint(target geom.Point4D, amplitude, frequency float64) *Particle {
	if p.err != nil {
		return p
	}
	if !finitePoint(target) || !finite(amplitude) || !finite(frequency) {
		return p.fail("triangle", ErrNonFinite)
	}
	if frequency <= 0 {
		return p.fail("triangle", fmt.Errorf("%w: %v", ErrInvalidFrequency, frequency))
	}
	if amplitude < 0 {
		return p.fail("triangle", fmt.Errorf("%w: %v", ErrInvalidAmplitude, amplitude))
	}

	cur := p.Current()
	dist := geom.Distance4D(cur, target)
	if dist == 0 {
		return p.append(linear{from: cur, to: target})
	}

	periods := 1.0
	if amplitude > 0 {
		periods = math.Max(1, math.Round(dist/(4*amplitude)))
	}
	return p.append(oscillating{
		linear: linear{from: cur, to: target, duration: periods / frequency},
		axis:   lateralAxis(cur, target),
		wave:   triangleWave{amplitude: amplitude, frequency: frequency},
	})
}

// MoveNervouslyToPoint flies to target while twitching sideways following
// shape, played repeat times. The total duration is repeat times the
// shape's cycle.
func (p *Particle) MoveNervouslyToPoint(target geom.Point4D, shape NervousShape, repeat int) *Particle {
	if p.err != nil {
		return p
	}
	if !finitePoint(target) {
		return p.fail("nervous", ErrNonFinite)
	}
	if repeat < 1 {
		return p.fail("nervous", fmt.Errorf("%w: %d", ErrInvalidRepeat, repeat))
	}
	if err := shape.Validate(); err != nil {
		return p.fail("nervous", err)
	}

	cur := p.Current()
	w := newNervousWave(shape)
	return p.append(oscillating{
		linear: linear{from: cur, to: target, duration: float64(repeat) * w.cycle},
		axis:   lateralAxis(cur, target),
		wave:   w,
	})
}

// RotateToAngle turns in place to yaw over duration seconds.
func (p *Particle) RotateToAngle(yaw, duration float64) *Particle {
	if p.err != nil {
		return p
	}
	if !finite(yaw) || !finite(duration) {
		return p.fail("rotate", ErrNonFinite)
	}
	if duration < 0 {
		return p.fail("rotate", fmt.Errorf("%w: %v", ErrInvalidDuration, duration))
	}

	cur := p.Current()
	if duration == 0 && yaw != cur.Yaw {
		return p.fail("rotate", fmt.Errorf("%w: %.3f -> %.3f rad", ErrZeroLengthRotation, cur.Yaw, yaw))
	}

	target := cur
	target.Yaw = yaw
	return p.append(linear{from: cur, to: target, duration: duration})
}

func (p *Particle) append(s segment) *Particle {
	p.segments = append(p.segments, s)
	return p
}

func (p *Particle) fail(op string, err error) *Particle {
	p.err = fmt.Errorf("segment %d (%s): %w", len(p.segments), op, err)
	return p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finitePoint(pt geom.Point4D) bool {
	return finite(pt.X) && finite(pt.Y) && finite(pt.Z) && finite(pt.Yaw)
}
