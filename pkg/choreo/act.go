package choreo

import (
	"fmt"

	"github.com/teslashibe/go-swarmshow/pkg/decorate"
	"github.com/teslashibe/go-swarmshow/pkg/geom"
	"github.com/teslashibe/go-swarmshow/pkg/particle"
	"github.com/teslashibe/go-swarmshow/pkg/trajectory"
)

// TrajectoryBuilder turns a drone's act configuration into its motion.
// Each kind of act supplies its own builder.
type TrajectoryBuilder interface {
	Build(cfg DronePositionConfiguration) (trajectory.FiniteTrajectory, error)
}

// BuilderFunc adapts a function to TrajectoryBuilder.
type BuilderFunc func(cfg DronePositionConfiguration) (trajectory.FiniteTrajectory, error)

// Build calls f.
func (f BuilderFunc) Build(cfg DronePositionConfiguration) (trajectory.FiniteTrajectory, error) {
	return f(cfg)
}

// Scripts dispatches to a per-drone builder.
type Scripts map[DroneName]TrajectoryBuilder

// Build runs the script registered for cfg.Drone.
func (s Scripts) Build(cfg DronePositionConfiguration) (trajectory.FiniteTrajectory, error) {
	b, ok := s[cfg.Drone]
	if !ok || b == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoScript, cfg.Drone)
	}
	return b.Build(cfg)
}

// DirectFlight flies every drone straight from its initial to its final
// pose at speed m/s.
func DirectFlight(speed float64) TrajectoryBuilder {
	return BuilderFunc(func(cfg DronePositionConfiguration) (trajectory.FiniteTrajectory, error) {
		return particle.New(cfg.Initial).
			MoveToPointWithVelocity(geom.FromPose(cfg.Final), speed).
			Trajectory()
	})
}

// State is the lifecycle of an Act.
type State int

const (
	// StateUnlocked accepts drone configurations.
	StateUnlocked State = iota

	// StateLocked has built its trajectories and rejects changes.
	StateLocked
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUnlocked:
		return "unlocked"
	case StateLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Act collects drone configurations for one segment of a show. It is
// mutable until LockAndBuild, which produces the immutable LockedAct.
type Act struct {
	name    string
	builder TrajectoryBuilder
	state   State
	drones  []DroneName
	configs map[DroneName]DronePositionConfiguration
}

// NewAct creates an unlocked act whose trajectories come from builder.
func NewAct(name string, builder TrajectoryBuilder) *Act {
	return &Act{
		name:    name,
		builder: builder,
		configs: make(map[DroneName]DronePositionConfiguration),
	}
}

// NewActFromConfiguration creates an act and adds every configured drone.
func NewActFromConfiguration(cfg ActConfiguration, builder TrajectoryBuilder) (*Act, error) {
	a := NewAct(cfg.Name, builder)
	for _, p := range cfg.Positions {
		if err := a.AddDrone(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Name returns the act name.
func (a *Act) Name() string {
	return a.name
}

// State returns the lifecycle state.
func (a *Act) State() State {
	return a.state
}

// Drones returns the configured drones in insertion order.
func (a *Act) Drones() []DroneName {
	out := make([]DroneName, len(a.drones))
	copy(out, a.drones)
	return out
}

// AddDrone configures one more drone.
func (a *Act) AddDrone(cfg DronePositionConfiguration) error {
	if a.state == StateLocked {
		return fmt.Errorf("act %q: add %s: %w", a.name, cfg.Drone, ErrActLocked)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("act %q: %w", a.name, err)
	}
	if _, ok := a.configs[cfg.Drone]; ok {
		return fmt.Errorf("act %q: %w: %s", a.name, ErrDuplicateDrone, cfg.Drone)
	}

	a.drones = append(a.drones, cfg.Drone)
	a.configs[cfg.Drone] = cfg
	return nil
}

// LockAndBuild builds every drone's trajectory and locks the act. On a
// build error the act stays unlocked and nothing is returned.
//
// All trajectories of the locked act share the act's duration: drones that
// finish early hold their final pose until the slowest one is done.
func (a *Act) LockAndBuild() (*LockedAct, error) {
	if a.state == StateLocked {
		return nil, fmt.Errorf("act %q: %w", a.name, ErrActLocked)
	}
	if a.name == "" {
		return nil, fmt.Errorf("%w: empty act name", ErrInvalidName)
	}
	if a.builder == nil {
		return nil, fmt.Errorf("act %q: %w", a.name, ErrNoBuilder)
	}
	if len(a.drones) == 0 {
		return nil, fmt.Errorf("act %q: %w", a.name, ErrEmptyAct)
	}

	built := make(map[DroneName]trajectory.FiniteTrajectory, len(a.drones))
	var duration float64
	for _, d := range a.drones {
		traj, err := a.build(a.configs[d])
		if err != nil {
			return nil, fmt.Errorf("act %q: drone %s: %w", a.name, d, err)
		}
		built[d] = traj
		duration = max(duration, traj.Duration())
	}

	locked := &LockedAct{
		name:         a.name,
		drones:       make([]DroneName, len(a.drones)),
		trajectories: make(map[DroneName]trajectory.FiniteTrajectory, len(built)),
		configs:      make(map[DroneName]DronePositionConfiguration, len(a.configs)),
		duration:     duration,
	}
	copy(locked.drones, a.drones)
	for d, traj := range built {
		locked.trajectories[d] = trajectory.Padded(traj, duration)
		locked.configs[d] = a.configs[d]
	}

	a.state = StateLocked
	return locked, nil
}

func (a *Act) build(cfg DronePositionConfiguration) (trajectory.FiniteTrajectory, error) {
	traj, err := a.builder.Build(cfg)
	if err != nil {
		return nil, err
	}
	if traj == nil {
		return nil, ErrNilTrajectory
	}
	if cfg.StartDelay > 0 {
		return decorate.NewDelay(traj, cfg.StartDelay)
	}
	return traj, nil
}

// LockedAct is the built, immutable form of an Act.
type LockedAct struct {
	name         string
	drones       []DroneName
	trajectories map[DroneName]trajectory.FiniteTrajectory
	configs      map[DroneName]DronePositionConfiguration
	duration     float64
}

// Name returns the act name.
func (l *LockedAct) Name() string {
	return l.name
}

// Drones returns the drones of the act in insertion order.
func (l *LockedAct) Drones() []DroneName {
	out := make([]DroneName, len(l.drones))
	copy(out, l.drones)
	return out
}

// Has reports whether the act flies drone.
func (l *LockedAct) Has(drone DroneName) bool {
	_, ok := l.trajectories[drone]
	return ok
}

// Duration returns the act length: the longest drone trajectory.
func (l *LockedAct) Duration() float64 {
	return l.duration
}

// Trajectory returns the drone's trajectory. Repeated calls return the
// same value.
func (l *LockedAct) Trajectory(drone DroneName) (trajectory.FiniteTrajectory, bool) {
	traj, ok := l.trajectories[drone]
	return traj, ok
}

// Configuration returns the position configuration the drone was built from.
func (l *LockedAct) Configuration(drone DroneName) (DronePositionConfiguration, bool) {
	cfg, ok := l.configs[drone]
	return cfg, ok
}
