// Package choreo binds per-drone trajectories into acts and acts into a
// choreography.
//
// Building is single-threaded: configure an Act, lock it into a LockedAct,
// add locked acts to a Choreography, then take its View. Everything handed
// out after locking is immutable and may be sampled concurrently.
package choreo

import (
	"fmt"
	"math"

	"github.com/teslashibe/go-swarmshow/pkg/geom"
)

// DroneName identifies one swarm member within a show.
type DroneName string

// DronePositionConfiguration is where a drone starts and ends an act.
type DronePositionConfiguration struct {
	Drone   DroneName
	Initial geom.Pose
	Final   geom.Pose

	// StartDelay holds the drone at Initial for this many seconds before
	// its script starts.
	StartDelay float64
}

// Validate checks the configuration on its own.
func (c DronePositionConfiguration) Validate() error {
	if c.Drone == "" {
		return fmt.Errorf("%w: empty drone name", ErrInvalidName)
	}
	if math.IsNaN(c.StartDelay) || math.IsInf(c.StartDelay, 0) || c.StartDelay < 0 {
		return fmt.Errorf("%w: %s has %v", ErrInvalidStartDelay, c.Drone, c.StartDelay)
	}
	return nil
}

// ActConfiguration is the static input for one act.
type ActConfiguration struct {
	Name      string
	Positions []DronePositionConfiguration
}

// NewActConfiguration validates and groups positions under an act name.
func NewActConfiguration(name string, positions ...DronePositionConfiguration) (ActConfiguration, error) {
	if name == "" {
		return ActConfiguration{}, fmt.Errorf("%w: empty act name", ErrInvalidName)
	}

	seen := make(map[DroneName]bool, len(positions))
	for _, p := range positions {
		if err := p.Validate(); err != nil {
			return ActConfiguration{}, fmt.Errorf("act %q: %w", name, err)
		}
		if seen[p.Drone] {
			return ActConfiguration{}, fmt.Errorf("act %q: %w: %s", name, ErrDuplicateDrone, p.Drone)
		}
		seen[p.Drone] = true
	}

	cfg := ActConfiguration{Name: name, Positions: make([]DronePositionConfiguration, len(positions))}
	copy(cfg.Positions, positions)
	return cfg, nil
}

// Drones returns the configured drones in order.
func (c ActConfiguration) Drones() []DroneName {
	out := make([]DroneName, len(c.Positions))
	for i, p := range c.Positions {
		out[i] = p.Drone
	}
	return out
}
