package trajectory

import (
	"sort"

	"github.com/teslashibe/go-swarmshow/pkg/geom"
)

// Sequence plays a list of trajectories back to back.
//
// Part i starts at the sum of the durations of parts 0..i-1. A time that
// falls exactly on a boundary belongs to the later part; the end of the
// last part is inclusive. Zero-length parts therefore only show up when
// they are last.
type Sequence struct {
	parts  []FiniteTrajectory
	starts []float64
	total  float64
}

// NewSequence builds a sequence from parts. The slice is copied, so the
// caller may reuse it.
func NewSequence(parts ...FiniteTrajectory) *Sequence {
	s := &Sequence{
		parts:  make([]FiniteTrajectory, len(parts)),
		starts: make([]float64, len(parts)),
	}
	copy(s.parts, parts)

	var offset float64
	for i, p := range s.parts {
		s.starts[i] = offset
		offset += p.Duration()
	}
	s.total = offset
	return s
}

// Duration returns the summed duration of all parts.
func (s *Sequence) Duration() float64 {
	return s.total
}

// Len returns the number of parts.
func (s *Sequence) Len() int {
	return len(s.parts)
}

// Part returns part i and its start offset.
func (s *Sequence) Part(i int) (FiniteTrajectory, float64) {
	return s.parts[i], s.starts[i]
}

// PartAt returns the index of the part playing at t (clamped), or -1 for an
// empty sequence.
func (s *Sequence) PartAt(t float64) int {
	if len(s.parts) == 0 {
		return -1
	}
	t = ClampTime(t, s.total)

	// First part starting strictly after t; the one before it is playing.
	idx := sort.Search(len(s.starts), func(i int) bool {
		return s.starts[i] > t
	})
	if idx == 0 {
		return 0
	}
	return idx - 1
}

// DesiredPosition evaluates the part playing at t at its local time.
// An empty sequence returns the zero pose.
func (s *Sequence) DesiredPosition(t float64) geom.Pose {
	idx := s.PartAt(t)
	if idx < 0 {
		return geom.Pose{}
	}
	t = ClampTime(t, s.total)
	return s.parts[idx].DesiredPosition(t - s.starts[idx])
}
