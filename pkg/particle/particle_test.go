package particle

import (
	"errors"
	"math"
	"testing"

	"github.com/teslashibe/go-swarmshow/pkg/geom"
	"github.com/teslashibe/go-swarmshow/pkg/trajectory"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

var yaw = -math.Pi / 2

func start() geom.Pose {
	return geom.Pose{X: 0, Y: 0, Z: 1, Yaw: yaw}
}

func mustTrajectory(t *testing.T, p *Particle) trajectory.FiniteTrajectory {
	t.Helper()
	traj, err := p.Trajectory()
	if err != nil {
		t.Fatalf("Trajectory: %v", err)
	}
	return traj
}

// boundaries returns the cumulative segment end times of p.
func boundaries(p *Particle) []float64 {
	var out []float64
	var acc float64
	for _, s := range p.segments {
		acc += s.Duration()
		out = append(out, acc)
	}
	return out
}

func TestDurationAdditivity(t *testing.T) {
	p := New(start()).
		Hover(2).
		MoveToPointWithVelocity(geom.Point4D{X: 4, Y: 0, Z: 1, Yaw: yaw}, 2).
		RotateToAngle(yaw+1, 3)

	traj := mustTrajectory(t, p)
	if !floatEquals(traj.Duration(), 7) {
		t.Errorf("Duration: got %v, want 7", traj.Duration())
	}
	if !floatEquals(p.Elapsed(), 7) {
		t.Errorf("Elapsed: got %v, want 7", p.Elapsed())
	}
	if p.Len() != 3 {
		t.Errorf("Len: got %d, want 3", p.Len())
	}
}

func TestContinuityAtBoundaries(t *testing.T) {
	shape, err := NervousShapeFromParams(0.3, 0.19, 0.0, 1.0, 3.5, 0.19, 1.5, 0.19)
	if err != nil {
		t.Fatalf("NervousShapeFromParams: %v", err)
	}

	p := New(start()).
		Hover(1).
		MoveToPointWithVelocity(geom.Point4D{X: 5, Y: 3, Z: 3.5, Yaw: yaw}, 1).
		MoveTriangleToPoint(geom.Point4D{X: 2, Y: 2.5, Z: 3, Yaw: yaw}, 1, 1).
		MoveNervouslyToPoint(geom.Point4D{X: 2, Y: 1, Z: 3.2, Yaw: yaw}, shape, 4).
		RotateToAngle(yaw+0.39, 3).
		MoveTriangleToPoint(geom.Point4D{X: 2, Y: 1, Z: 1, Yaw: yaw}, 0.5, 2). // vertical leg
		MoveToPointWithDuration(geom.Point4D{X: 3, Y: 1, Z: 1, Yaw: yaw}, 2)

	traj := mustTrajectory(t, p)
	const eps = 1e-6

	for _, b := range boundaries(p)[:p.Len()-1] {
		before := traj.DesiredPosition(b - 1e-9)
		at := traj.DesiredPosition(b)
		if d := before.MaxDelta(at); d > eps {
			t.Errorf("discontinuity at t=%.4f: %v vs %v (delta %g)", b, before, at, d)
		}
	}
}

func TestSegmentsEndOnTarget(t *testing.T) {
	target := geom.Point4D{X: 5, Y: 2, Z: 3, Yaw: yaw}
	shape := NervousShape{Beats: []Beat{{Duration: 0.4, Amplitude: 0.2}, {Duration: 0.6, Amplitude: 0.1}}}

	tests := []struct {
		name  string
		build func(*Particle) *Particle
	}{
		{"linear", func(p *Particle) *Particle { return p.MoveToPointWithVelocity(target, 1.5) }},
		{"triangle", func(p *Particle) *Particle { return p.MoveTriangleToPoint(target, 1, 1) }},
		{"nervous", func(p *Particle) *Particle { return p.MoveNervouslyToPoint(target, shape, 3) }},
		{"timed", func(p *Particle) *Particle { return p.MoveToPointWithDuration(target, 4) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.build(New(start()))
			traj := mustTrajectory(t, p)

			if got := traj.DesiredPosition(0); !got.ApproxEqual(start(), floatTolerance) {
				t.Errorf("start: got %v, want %v", got, start())
			}
			if got := trajectory.EndPose(traj); !got.ApproxEqual(target.Pose(), floatTolerance) {
				t.Errorf("end: got %v, want %v", got, target.Pose())
			}
			if p.Current() != target {
				t.Errorf("Current: got %v, want %v", p.Current(), target)
			}
		})
	}
}

func TestMoveToPointWithVelocity_Midpoint(t *testing.T) {
	traj := mustTrajectory(t, New(geom.Pose{}).MoveToPointWithVelocity(geom.Point4D{X: 4, Yaw: 2}, 2))

	mid := traj.DesiredPosition(1)
	if !floatEquals(mid.X, 2) || !floatEquals(mid.Yaw, 1) {
		t.Errorf("midpoint: got %v, want x=2 yaw=1", mid)
	}
}

func TestMoveToPointWithVelocity_ZeroDistance(t *testing.T) {
	p := New(start()).MoveToPointWithVelocity(geom.FromPose(start()), 1)
	traj := mustTrajectory(t, p)

	if traj.Duration() != 0 {
		t.Errorf("zero-distance move should have zero duration, got %v", traj.Duration())
	}
	if got := traj.DesiredPosition(0); got != start() {
		t.Errorf("got %v, want %v", got, start())
	}
}

func TestTriangle_DeviatesSideways(t *testing.T) {
	target := geom.Point4D{X: 8, Y: 0, Z: 1, Yaw: yaw}
	p := New(start()).MoveTriangleToPoint(target, 1, 1)
	traj := mustTrajectory(t, p)

	// 8 m of travel at 4 m per period -> two periods at 1 Hz.
	if !floatEquals(traj.Duration(), 2) {
		t.Fatalf("Duration: got %v, want 2", traj.Duration())
	}

	quarter := traj.DesiredPosition(0.25)
	if !floatEquals(math.Abs(quarter.Y), 1) {
		t.Errorf("peak deviation: got y=%v, want |y|=1", quarter.Y)
	}
	if !floatEquals(quarter.X, 1) {
		t.Errorf("progress at quarter period: got x=%v, want 1", quarter.X)
	}
	if half := traj.DesiredPosition(0.5); !floatEquals(half.Y, 0) {
		t.Errorf("half period should be back on the path, got y=%v", half.Y)
	}
	if z := traj.DesiredPosition(1.3).Z; !floatEquals(z, 1) {
		t.Errorf("altitude should not oscillate, got z=%v", z)
	}
}

func TestNervous_Duration(t *testing.T) {
	shape, err := NervousShapeFromParams(0.3, 0.19, 0.0, 1.0, 3.5, 0.19, 1.5, 0.19)
	if err != nil {
		t.Fatalf("NervousShapeFromParams: %v", err)
	}
	if !floatEquals(shape.Cycle(), 5.3) {
		t.Fatalf("Cycle: got %v, want 5.3", shape.Cycle())
	}

	traj := mustTrajectory(t, New(start()).MoveNervouslyToPoint(geom.Point4D{X: 0, Y: 0, Z: 3, Yaw: yaw}, shape, 4))
	if !floatEquals(traj.Duration(), 21.2) {
		t.Errorf("Duration: got %v, want 21.2", traj.Duration())
	}

	// Every beat boundary is back on the straight path.
	for _, ts := range []float64{0.3, 3.8, 5.3, 10.6} {
		p := traj.DesiredPosition(ts)
		if !floatEquals(p.X, 0) || !floatEquals(p.Y, 0) {
			t.Errorf("t=%v: expected no lateral deviation, got %v", ts, p)
		}
	}

	// Middle of the first beat twitches by its amplitude.
	p := traj.DesiredPosition(0.15)
	if dev := math.Hypot(p.X, p.Y); !floatEquals(dev, 0.19) {
		t.Errorf("beat peak: got deviation %v, want 0.19", dev)
	}
}

func TestRotateToAngle(t *testing.T) {
	traj := mustTrajectory(t, New(start()).RotateToAngle(0, 2))

	mid := traj.DesiredPosition(1)
	if !floatEquals(mid.Yaw, yaw/2) {
		t.Errorf("yaw at midpoint: got %v, want %v", mid.Yaw, yaw/2)
	}
	if mid.Position() != start().Position() {
		t.Errorf("rotation should not move: got %v", mid)
	}
}

func TestConfigurationErrors(t *testing.T) {
	target := geom.Point4D{X: 1, Y: 1, Z: 1}

	tests := []struct {
		name  string
		build func(*Particle) *Particle
		want  error
	}{
		{"negative hover", func(p *Particle) *Particle { return p.Hover(-1) }, ErrInvalidDuration},
		{"zero speed", func(p *Particle) *Particle { return p.MoveToPointWithVelocity(target, 0) }, ErrInvalidVelocity},
		{"negative speed", func(p *Particle) *Particle { return p.MoveToPointWithVelocity(target, -1) }, ErrInvalidVelocity},
		{"zero frequency", func(p *Particle) *Particle { return p.MoveTriangleToPoint(target, 1, 0) }, ErrInvalidFrequency},
		{"negative amplitude", func(p *Particle) *Particle { return p.MoveTriangleToPoint(target, -1, 1) }, ErrInvalidAmplitude},
		{"zero repeat", func(p *Particle) *Particle {
			return p.MoveNervouslyToPoint(target, NervousShape{Beats: []Beat{{1, 0.1}}}, 0)
		}, ErrInvalidRepeat},
		{"empty shape", func(p *Particle) *Particle { return p.MoveNervouslyToPoint(target, NervousShape{}, 1) }, ErrInvalidShape},
		{"instant rotation", func(p *Particle) *Particle { return p.RotateToAngle(1, 0) }, ErrZeroLengthRotation},
		{"nan target", func(p *Particle) *Particle {
			return p.MoveToPointWithVelocity(geom.Point4D{X: math.NaN()}, 1)
		}, ErrNonFinite},
		{"instant timed move", func(p *Particle) *Particle { return p.MoveToPointWithDuration(target, 0) }, ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.build(New(geom.Pose{}))

			if !errors.Is(p.Err(), tt.want) {
				t.Errorf("Err: got %v, want %v", p.Err(), tt.want)
			}
			if _, err := p.Trajectory(); !errors.Is(err, tt.want) {
				t.Errorf("Trajectory error: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRotateToAngle_ZeroDurationNoChange(t *testing.T) {
	p := New(start()).RotateToAngle(yaw, 0)
	if p.Err() != nil {
		t.Errorf("zero-length rotation to the current yaw should be allowed: %v", p.Err())
	}
}

func TestStickyError(t *testing.T) {
	p := New(geom.Pose{}).Hover(1).Hover(-1).Hover(2)

	if p.Len() != 1 {
		t.Errorf("appends after an error should be ignored, got %d segments", p.Len())
	}
	if !errors.Is(p.Err(), ErrInvalidDuration) {
		t.Errorf("Err: got %v", p.Err())
	}
}

func TestTrajectoryIsSnapshot(t *testing.T) {
	p := New(start()).Hover(2)
	traj := mustTrajectory(t, p)

	p.MoveToPointWithVelocity(geom.Point4D{X: 10, Z: 1, Yaw: yaw}, 1)

	if traj.Duration() != 2 {
		t.Errorf("snapshot duration changed: %v", traj.Duration())
	}
	if got := trajectory.EndPose(traj); got != start() {
		t.Errorf("snapshot end pose changed: %v", got)
	}
}

func TestEmptyParticle(t *testing.T) {
	traj := mustTrajectory(t, New(start()))

	if traj.Duration() != 0 {
		t.Errorf("Duration: got %v, want 0", traj.Duration())
	}
	if got := traj.DesiredPosition(3); got != start() {
		t.Errorf("got %v, want %v", got, start())
	}
}

func TestNervousShapeFromParams_Odd(t *testing.T) {
	if _, err := NervousShapeFromParams(0.3, 0.19, 1); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("odd parameter count: got %v", err)
	}
}

func BenchmarkDesiredPosition(b *testing.B) {
	p := New(start())
	for i := 0; i < 200; i++ {
		p.MoveToPointWithVelocity(geom.Point4D{X: float64(i % 7), Y: float64(i % 5), Z: 1 + float64(i%3), Yaw: yaw}, 1)
	}
	traj, err := p.Trajectory()
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = traj.DesiredPosition(float64(i%1000) / 3)
	}
}
