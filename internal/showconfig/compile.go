package showconfig

import (
	"fmt"

	"github.com/teslashibe/go-swarmshow/pkg/choreo"
	"github.com/teslashibe/go-swarmshow/pkg/decorate"
	"github.com/teslashibe/go-swarmshow/pkg/geom"
	"github.com/teslashibe/go-swarmshow/pkg/particle"
	"github.com/teslashibe/go-swarmshow/pkg/trajectory"
)

// Build compiles every act, locks it and returns the show's playback view.
func (s *Show) Build() (*choreo.View, error) {
	c, err := s.Choreography()
	if err != nil {
		return nil, err
	}
	return c.View(), nil
}

// Choreography compiles the show into an open choreography, so that
// callers may append further acts before taking the view.
func (s *Show) Choreography() (*choreo.Choreography, error) {
	roster := make([]choreo.DroneName, len(s.Roster))
	for i, name := range s.Roster {
		roster[i] = choreo.DroneName(name)
	}

	c, err := choreo.NewChoreography(roster...)
	if err != nil {
		return nil, fmt.Errorf("show %q: %w", s.Name, err)
	}
	for _, a := range s.Acts {
		locked, err := a.Lock()
		if err != nil {
			return nil, fmt.Errorf("show %q: %w", s.Name, err)
		}
		if err := c.AddAct(locked); err != nil {
			return nil, fmt.Errorf("show %q: %w", s.Name, err)
		}
	}
	return c, nil
}

// Lock builds the act's trajectories.
func (a Act) Lock() (*choreo.LockedAct, error) {
	speed := a.Speed
	if speed == 0 {
		speed = DefaultSpeed
	}

	positions := make([]choreo.DronePositionConfiguration, len(a.Drones))
	scripts := make(choreo.Scripts, len(a.Drones))
	for i, d := range a.Drones {
		name := choreo.DroneName(d.Drone)
		positions[i] = choreo.DronePositionConfiguration{
			Drone:      name,
			Initial:    d.Initial,
			Final:      d.Final,
			StartDelay: d.StartDelay,
		}
		scripts[name] = script{drone: d, speed: speed}
	}

	cfg, err := choreo.NewActConfiguration(a.Name, positions...)
	if err != nil {
		return nil, err
	}
	act, err := choreo.NewActFromConfiguration(cfg, scripts)
	if err != nil {
		return nil, err
	}
	return act.LockAndBuild()
}

// script is the choreo.TrajectoryBuilder of one drone's YAML part.
type script struct {
	drone Drone
	speed float64
}

func (s script) Build(cfg choreo.DronePositionConfiguration) (trajectory.FiniteTrajectory, error) {
	final := geom.FromPose(cfg.Final)

	p := particle.New(cfg.Initial)
	for i, st := range s.drone.Script {
		if err := s.apply(p, st, final); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	if p.Err() == nil && p.Current() != final {
		p.MoveToPointWithVelocity(final, s.speed)
	}

	traj, err := p.Trajectory()
	if err != nil {
		return nil, err
	}

	for i, d := range s.drone.Decorators {
		traj, err = decorateWith(traj, d, final)
		if err != nil {
			return nil, fmt.Errorf("decorator %d: %w", i, err)
		}
	}
	return traj, nil
}

func (s script) apply(p *particle.Particle, st Step, final geom.Point4D) error {
	switch {
	case st.Hover != nil:
		p.Hover(*st.Hover)
	case st.Move != nil:
		p.MoveToPointWithVelocity(resolve(st.Move.To, p, final), st.Move.Speed)
	case st.MoveFor != nil:
		p.MoveToPointWithDuration(resolve(st.MoveFor.To, p, final), st.MoveFor.Duration)
	case st.Triangle != nil:
		p.MoveTriangleToPoint(resolve(st.Triangle.To, p, final), st.Triangle.Amplitude, st.Triangle.Frequency)
	case st.Nervous != nil:
		shape, err := particle.NervousShapeFromParams(st.Nervous.Shape...)
		if err != nil {
			return err
		}
		p.MoveNervouslyToPoint(resolve(st.Nervous.To, p, final), shape, st.Nervous.Repeat)
	case st.Rotate != nil:
		p.RotateToAngle(st.Rotate.Yaw, st.Rotate.Duration)
	}
	return nil
}

// resolve turns an optional step target into a point: the final mark when
// absent, the current heading when the target has no yaw.
func resolve(t *Target, p *particle.Particle, final geom.Point4D) geom.Point4D {
	if t == nil {
		return final
	}
	yaw := p.Current().Yaw
	if t.Yaw != nil {
		yaw = *t.Yaw
	}
	return geom.Point4D{X: t.X, Y: t.Y, Z: t.Z, Yaw: yaw}
}

func decorateWith(traj trajectory.FiniteTrajectory, d Decorator, final geom.Point4D) (trajectory.FiniteTrajectory, error) {
	switch {
	case d.Circle != nil:
		center := final.Position()
		if d.Circle.Center != nil {
			center = geom.Point3D{X: d.Circle.Center.X, Y: d.Circle.Center.Y}
		}
		c, err := decorate.NewHorizontalCircle(traj, center, d.Circle.Frequency)
		if err != nil {
			return nil, err
		}
		return c, nil
	case d.Delay != nil:
		dl, err := decorate.NewDelay(traj, *d.Delay)
		if err != nil {
			return nil, err
		}
		return dl, nil
	default:
		return nil, ErrInvalidDecorator
	}
}
