package choreo

import (
	"fmt"
	"sort"

	"github.com/teslashibe/go-swarmshow/pkg/geom"
	"github.com/teslashibe/go-swarmshow/pkg/trajectory"
)

// Choreography is an ordered list of acts over a fixed roster.
//
// Acts can be added until View is first called; from then on the
// choreography is closed and the view is the only way to read it.
type Choreography struct {
	roster []DroneName
	index  map[DroneName]int
	acts   []*LockedAct
	view   *View
}

// NewChoreography creates a choreography for roster, in that order.
func NewChoreography(roster ...DroneName) (*Choreography, error) {
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}

	c := &Choreography{
		roster: make([]DroneName, len(roster)),
		index:  make(map[DroneName]int, len(roster)),
	}
	for i, d := range roster {
		if d == "" {
			return nil, fmt.Errorf("%w: empty drone name in roster", ErrInvalidName)
		}
		if _, dup := c.index[d]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDrone, d)
		}
		c.index[d] = i
		c.roster[i] = d
	}
	return c, nil
}

// Roster returns the drones in roster order.
func (c *Choreography) Roster() []DroneName {
	out := make([]DroneName, len(c.roster))
	copy(out, c.roster)
	return out
}

// Len returns the number of acts added so far.
func (c *Choreography) Len() int {
	return len(c.acts)
}

// AddAct appends a locked act. The act must fly exactly the roster.
func (c *Choreography) AddAct(act *LockedAct) error {
	if c.view != nil {
		return ErrChoreographyClosed
	}
	if act == nil {
		return ErrNilAct
	}

	for _, d := range act.drones {
		if _, ok := c.index[d]; !ok {
			return fmt.Errorf("act %q: %w: %s", act.name, ErrUnknownDrone, d)
		}
	}
	for _, d := range c.roster {
		if !act.Has(d) {
			return fmt.Errorf("act %q: %w: %s", act.name, ErrMissingDrone, d)
		}
	}

	c.acts = append(c.acts, act)
	return nil
}

// View closes the choreography and returns its playback view. Every call
// returns the same view.
func (c *Choreography) View() *View {
	if c.view == nil {
		c.view = newView(c.roster, c.acts)
	}
	return c.view
}

// ActSpan locates an act on the show timeline.
type ActSpan struct {
	Name  string  `json:"name"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the span length.
func (s ActSpan) Duration() float64 {
	return s.End - s.Start
}

// Gap is a pose jump between two consecutive acts for one drone.
type Gap struct {
	Drone   DroneName `json:"drone"`
	FromAct string    `json:"from_act"`
	ToAct   string    `json:"to_act"`
	At      float64   `json:"at"`
	Delta   float64   `json:"delta"`
}

// View is the read-only playback form of a choreography: one concatenated
// trajectory per roster drone.
type View struct {
	roster   []DroneName
	index    map[DroneName]int
	timeline []*trajectory.Sequence
	acts     []*LockedAct
	spans    []ActSpan
	duration float64
}

func newView(roster []DroneName, acts []*LockedAct) *View {
	v := &View{
		roster:   make([]DroneName, len(roster)),
		index:    make(map[DroneName]int, len(roster)),
		timeline: make([]*trajectory.Sequence, len(roster)),
		acts:     make([]*LockedAct, len(acts)),
		spans:    make([]ActSpan, len(acts)),
	}
	copy(v.roster, roster)
	copy(v.acts, acts)

	var offset float64
	for i, a := range acts {
		v.spans[i] = ActSpan{Name: a.name, Start: offset, End: offset + a.duration}
		offset += a.duration
	}
	v.duration = offset

	parts := make([]trajectory.FiniteTrajectory, len(acts))
	for i, d := range roster {
		v.index[d] = i
		for j, a := range acts {
			parts[j] = a.trajectories[d]
		}
		v.timeline[i] = trajectory.NewSequence(parts...)
	}
	return v
}

// Drones returns the roster.
func (v *View) Drones() []DroneName {
	out := make([]DroneName, len(v.roster))
	copy(out, v.roster)
	return out
}

// Duration returns the length of the whole show.
func (v *View) Duration() float64 {
	return v.duration
}

// Trajectory returns the drone's full-show trajectory.
func (v *View) Trajectory(drone DroneName) (trajectory.FiniteTrajectory, bool) {
	i, ok := v.index[drone]
	if !ok {
		return nil, false
	}
	return v.timeline[i], true
}

// Acts returns the act spans in playing order.
func (v *View) Acts() []ActSpan {
	out := make([]ActSpan, len(v.spans))
	copy(out, v.spans)
	return out
}

// ActAt returns the index of the act playing at t (clamped), or -1 when
// there are no acts. A time on a boundary belongs to the later act.
func (v *View) ActAt(t float64) int {
	if len(v.spans) == 0 {
		return -1
	}
	t = trajectory.ClampTime(t, v.duration)
	idx := sort.Search(len(v.spans), func(i int) bool {
		return v.spans[i].Start > t
	})
	if idx == 0 {
		return 0
	}
	return idx - 1
}

// SampleInto evaluates every drone at t in roster order, reusing dst. It
// does not allocate when cap(dst) covers the roster.
func (v *View) SampleInto(t float64, dst []geom.Pose) []geom.Pose {
	dst = dst[:0]
	for _, traj := range v.timeline {
		dst = append(dst, traj.DesiredPosition(t))
	}
	return dst
}

// ContinuityGaps lists every act boundary where a drone's end pose of one
// act differs from its start pose in the next by more than eps.
func (v *View) ContinuityGaps(eps float64) []Gap {
	var gaps []Gap
	for i := 1; i < len(v.acts); i++ {
		prev, next := v.acts[i-1], v.acts[i]
		for _, d := range v.roster {
			end := trajectory.EndPose(prev.trajectories[d])
			start := trajectory.StartPose(next.trajectories[d])
			if delta := end.MaxDelta(start); delta > eps {
				gaps = append(gaps, Gap{
					Drone:   d,
					FromAct: prev.name,
					ToAct:   next.name,
					At:      v.spans[i].Start,
					Delta:   delta,
				})
			}
		}
	}
	return gaps
}
