package particle

import (
	"math"
	"sort"

	"github.com/teslashibe/go-swarmshow/pkg/geom"
	"github.com/teslashibe/go-swarmshow/pkg/trajectory"
)

// segment is one primitive motion inside a particle. Every segment starts
// where the previous one ended; end reports where it leaves the drone.
type segment interface {
	trajectory.FiniteTrajectory
	end() geom.Point4D
}

// ============================================================
// linear - hover, straight moves and rotations
// ============================================================

// linear interpolates position and yaw from one point to another.
// Hover is a linear segment with from == to, a rotation keeps the position.
type linear struct {
	from, to geom.Point4D
	duration float64
}

func (s linear) Duration() float64 { return s.duration }

func (s linear) end() geom.Point4D { return s.to }

func (s linear) DesiredPosition(t float64) geom.Pose {
	if s.duration == 0 {
		return s.to.Pose()
	}
	t = trajectory.ClampTime(t, s.duration)
	if t == s.duration {
		return s.to.Pose()
	}
	return geom.Lerp(s.from, s.to, t/s.duration).Pose()
}

// ============================================================
// oscillating - straight progress plus a lateral wave
// ============================================================

// wave is a lateral deviation that is zero at t=0 and at the end of the
// segment it belongs to.
type wave interface {
	offset(t float64) float64
}

type oscillating struct {
	linear
	axis geom.Point3D // unit, horizontal
	wave wave
}

func (s oscillating) DesiredPosition(t float64) geom.Pose {
	if s.duration == 0 {
		return s.to.Pose()
	}
	t = trajectory.ClampTime(t, s.duration)
	if t == s.duration {
		return s.to.Pose()
	}

	p := geom.Lerp(s.from, s.to, t/s.duration)
	d := s.wave.offset(t)
	p.X += s.axis.X * d
	p.Y += s.axis.Y * d
	return p.Pose()
}

// lateralAxis returns the horizontal unit vector perpendicular to the
// direction of travel. A purely vertical leg uses the perpendicular of the
// starting heading instead.
func lateralAxis(from, to geom.Point4D) geom.Point3D {
	dx, dy := to.X-from.X, to.Y-from.Y
	if h := math.Hypot(dx, dy); h > 1e-9 {
		return geom.Point3D{X: -dy / h, Y: dx / h}
	}
	return geom.Point3D{X: -math.Sin(from.Yaw), Y: math.Cos(from.Yaw)}
}

// triangleWave is a symmetric triangle of the given amplitude:
// 0 -> +a -> 0 -> -a -> 0 over one period.
type triangleWave struct {
	amplitude float64
	frequency float64
}

func (w triangleWave) offset(t float64) float64 {
	cycles := w.frequency * t
	phase := cycles - math.Floor(cycles)
	switch {
	case phase < 0.25:
		return w.amplitude * 4 * phase
	case phase < 0.75:
		return w.amplitude * (2 - 4*phase)
	default:
		return w.amplitude * (4*phase - 4)
	}
}

// nervousWave plays the beats of a shape in a loop. Each beat is a half
// sine pulse, alternating sides, so the deviation is zero between beats.
type nervousWave struct {
	beats  []Beat
	starts []float64
	cycle  float64
}

func newNervousWave(shape NervousShape) nervousWave {
	w := nervousWave{
		beats:  make([]Beat, len(shape.Beats)),
		starts: make([]float64, len(shape.Beats)),
	}
	copy(w.beats, shape.Beats)
	for i, b := range w.beats {
		w.starts[i] = w.cycle
		w.cycle += b.Duration
	}
	return w
}

func (w nervousWave) offset(t float64) float64 {
	if w.cycle == 0 {
		return 0
	}
	local := math.Mod(t, w.cycle)

	idx := sort.Search(len(w.starts), func(i int) bool {
		return w.starts[i] > local
	}) - 1
	if idx < 0 {
		idx = 0
	}

	b := w.beats[idx]
	if b.Duration == 0 {
		return 0
	}
	pulse := b.Amplitude * math.Sin(math.Pi*(local-w.starts[idx])/b.Duration)
	if idx%2 == 1 {
		return -pulse
	}
	return pulse
}
