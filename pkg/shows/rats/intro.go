// Package rats is the built-in "rats" show: five drones named after
// famous rodents. It currently carries the introduction act.
package rats

import (
	"fmt"
	"math"

	"github.com/teslashibe/go-swarmshow/pkg/choreo"
	"github.com/teslashibe/go-swarmshow/pkg/decorate"
	"github.com/teslashibe/go-swarmshow/pkg/geom"
	"github.com/teslashibe/go-swarmshow/pkg/particle"
	"github.com/teslashibe/go-swarmshow/pkg/trajectory"
)

// Yaw is the heading every drone keeps at rest: facing the audience.
const Yaw = -math.Pi / 2

// IntroActName names the introduction act.
const IntroActName = "IntroAct"

// Roster members.
const (
	Nerve  choreo.DroneName = "Nerve"
	Romeo  choreo.DroneName = "Romeo"
	Juliet choreo.DroneName = "Juliet"
	Fievel choreo.DroneName = "Fievel"
	Dumbo  choreo.DroneName = "Dumbo"
)

// Roster returns the drones in show order.
func Roster() []choreo.DroneName {
	return []choreo.DroneName{Nerve, Romeo, Juliet, Fievel, Dumbo}
}

func at(x, y, z float64) geom.Pose {
	return geom.Pose{X: x, Y: y, Z: z, Yaw: Yaw}
}

func point(x, y, z float64) geom.Point4D {
	return geom.Point4D{X: x, Y: y, Z: z, Yaw: Yaw}
}

// IntroConfiguration returns where each drone starts and ends the
// introduction.
func IntroConfiguration() choreo.ActConfiguration {
	cfg, err := choreo.NewActConfiguration(IntroActName,
		choreo.DronePositionConfiguration{Drone: Nerve, Initial: at(6.7, 5.0, 1.0), Final: at(2.0, 0.0, 3.0)},
		choreo.DronePositionConfiguration{Drone: Romeo, Initial: at(0.0, 5.0, 1.0), Final: at(6.0, 5.0, 1.0)},
		choreo.DronePositionConfiguration{Drone: Juliet, Initial: at(0.0, 3.55, 1.0), Final: at(6.7, 5.0, 1.0)},
		choreo.DronePositionConfiguration{Drone: Fievel, Initial: at(0.0, 2.0, 1.0), Final: at(3.5, 0.0, 1.5)},
		choreo.DronePositionConfiguration{Drone: Dumbo, Initial: at(6.7, 1.0, 1.0), Final: at(4.0, 3.5, 2.5)},
	)
	if err != nil {
		panic(fmt.Sprintf("rats: intro configuration: %v", err))
	}
	return cfg
}

// IntroScripts returns the per-drone scripts of the introduction.
func IntroScripts() choreo.Scripts {
	return choreo.Scripts{
		Nerve:  choreo.BuilderFunc(nerveIntro),
		Romeo:  choreo.BuilderFunc(romeoIntro),
		Juliet: choreo.BuilderFunc(julietIntro),
		Fievel: choreo.BuilderFunc(fievelIntro),
		Dumbo:  choreo.BuilderFunc(dumboIntro),
	}
}

// IntroAct builds and locks the introduction act.
func IntroAct() (*choreo.LockedAct, error) {
	act, err := choreo.NewActFromConfiguration(IntroConfiguration(), IntroScripts())
	if err != nil {
		return nil, err
	}
	return act.LockAndBuild()
}

// IntroChoreography returns the playback view of a show made of the
// introduction act alone.
func IntroChoreography() (*choreo.View, error) {
	intro, err := IntroAct()
	if err != nil {
		return nil, err
	}

	c, err := choreo.NewChoreography(Roster()...)
	if err != nil {
		return nil, err
	}
	if err := c.AddAct(intro); err != nil {
		return nil, err
	}
	return c.View(), nil
}

// ============================================================
// Scripts
// ============================================================

// nerveShape is Nerve's twitch: a short jab, a snap to the other side and
// two slow sways.
var nerveShape = []float64{0.3, 0.19, 0.0, 1.0, 3.5, 0.19, 1.5, 0.19}

// nerveIntro bobs up and down, looks around, crosses the stage and climbs
// nervously before settling on its mark.
func nerveIntro(cfg choreo.DronePositionConfiguration) (trajectory.FiniteTrajectory, error) {
	shape, err := particle.NervousShapeFromParams(nerveShape...)
	if err != nil {
		return nil, err
	}

	p := particle.New(cfg.Initial)
	for _, z := range []float64{3.5, 1.0, 3.0, 1.5, 2.5, 2.0} {
		p.MoveToPointWithVelocity(point(5, 3, z), 1.0)
	}
	p.Hover(6)
	lookAround(p, []look{
		{0.13, 3}, {-0.17, 2}, {0.10, 2.5}, {-0.16, 1},
		{0.08, 2.5}, {-0.12, 3}, {0.17, 1}, {-0.15, 2},
	})

	p.MoveToPointWithVelocity(point(3.0, 3.55, 1.0), 1.0).
		MoveToPointWithVelocity(point(2, 1, 1.0), 1.0).
		MoveNervouslyToPoint(point(2, 1, 3.2), shape, 4)
	lookAround(p, []look{
		{0.13, 2}, {0.10, 3}, {-0.16, 4}, {0.08, 2}, {-0.12, 3}, {-0.15, 2.5},
	})

	return p.MoveToPointWithVelocity(geom.FromPose(cfg.Final), 0.5).Trajectory()
}

// look is a head turn: an offset from Yaw (scaled by 3) and how long the
// turn takes.
type look struct {
	offset   float64
	duration float64
}

func lookAround(p *particle.Particle, looks []look) {
	for _, l := range looks {
		p.RotateToAngle(Yaw+l.offset*3, l.duration)
	}
}

// fievelIntro zig-zags back and forth across the stage at 3 m.
func fievelIntro(cfg choreo.DronePositionConfiguration) (trajectory.FiniteTrajectory, error) {
	p := particle.New(cfg.Initial)
	for _, wp := range []geom.Point4D{
		point(5, 2, 3),
		point(2, 2.5, 3),
		point(5, 3, 3),
		point(2, 3, 3),
		point(3.5, 2.8, 3),
		point(2.0, 2.8, 3),
		geom.FromPose(cfg.Final),
	} {
		p.MoveTriangleToPoint(wp, 1, 1)
	}
	return p.Trajectory()
}

// romeoIntro circles around its final mark, spiralling in as the base
// path closes on it.
func romeoIntro(cfg choreo.DronePositionConfiguration) (trajectory.FiniteTrajectory, error) {
	mark := geom.FromPose(cfg.Final)
	mid := geom.Lerp(geom.FromPose(cfg.Initial), mark, 0.5)
	mid.Z = 2.5

	base, err := particle.New(cfg.Initial).
		Hover(2).
		MoveToPointWithDuration(mid, 10).
		Hover(4).
		MoveToPointWithDuration(mark, 12).
		Trajectory()
	if err != nil {
		return nil, err
	}
	return decorate.NewHorizontalCircle(base, mark.Position(), 0.1)
}

// julietIntro glides over the stage in wide arcs of straight legs.
func julietIntro(cfg choreo.DronePositionConfiguration) (trajectory.FiniteTrajectory, error) {
	return particle.New(cfg.Initial).
		Hover(4).
		MoveToPointWithVelocity(point(2.0, 4.5, 2.0), 0.6).
		MoveToPointWithVelocity(point(4.5, 4.5, 2.5), 0.6).
		Hover(3).
		MoveToPointWithVelocity(point(5.5, 2.0, 2.0), 0.6).
		MoveToPointWithVelocity(geom.FromPose(cfg.Final), 0.6).
		Trajectory()
}

// dumboIntro creeps in with a clumsy wobble and lifts off to its mark.
func dumboIntro(cfg choreo.DronePositionConfiguration) (trajectory.FiniteTrajectory, error) {
	shape, err := particle.NervousShapeFromParams(1.0, 0.3, 1.0, 0.3, 2.0, 0.1)
	if err != nil {
		return nil, err
	}
	return particle.New(cfg.Initial).
		Hover(8).
		MoveNervouslyToPoint(point(4.0, 3.5, 1.0), shape, 3).
		Hover(2).
		MoveToPointWithVelocity(geom.FromPose(cfg.Final), 0.5).
		Trajectory()
}
