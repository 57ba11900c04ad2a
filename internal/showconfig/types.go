// Package showconfig reads drone shows written in YAML and compiles them
// into choreographies.
//
// A show file names its roster and lists acts. Each act gives every drone
// its initial and final pose, an optional start delay, an optional script
// of particle steps and optional decorators:
//
//	name: demo
//	roster: [alpha, beta]
//	acts:
//	  - name: opening
//	    speed: 1.0
//	    drones:
//	      - drone: alpha
//	        initial: {x: 0, y: 0, z: 1}
//	        final:   {x: 4, y: 0, z: 2}
//	        script:
//	          - hover: 2
//	          - triangle: {amplitude: 0.5, frequency: 1}
//	        decorators:
//	          - circle: {frequency: 0.1}
//	      - drone: beta
//	        initial: {x: 0, y: 2, z: 1}
//	        final:   {x: 4, y: 2, z: 1}
//	        start_delay: 3
//
// A drone without a script flies straight to its final pose at the act's
// speed. A step without a target flies to the final pose, and every
// script ends with a straight move to the final pose if it is not already
// there, so scripts always end on the configured marks. Decorators are
// applied afterwards in order; a circle centred elsewhere than the final
// mark moves the end pose.
package showconfig

import "github.com/teslashibe/go-swarmshow/pkg/geom"

// Show is a parsed show file.
type Show struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Roster      []string `yaml:"roster"`
	Acts        []Act    `yaml:"acts"`
}

// Act is one act of a show.
type Act struct {
	Name string `yaml:"name"`

	// Speed is the direct-flight speed (m/s) for drones without a script
	// and for the closing move of scripted drones. Defaults to
	// DefaultSpeed.
	Speed  float64 `yaml:"speed,omitempty"`
	Drones []Drone `yaml:"drones"`
}

// Drone is one drone's part in an act.
type Drone struct {
	Drone      string      `yaml:"drone"`
	Initial    geom.Pose   `yaml:"initial"`
	Final      geom.Pose   `yaml:"final"`
	StartDelay float64     `yaml:"start_delay,omitempty"`
	Script     []Step      `yaml:"script,omitempty"`
	Decorators []Decorator `yaml:"decorators,omitempty"`
}

// Step is one particle instruction. Exactly one field must be set.
type Step struct {
	Hover    *float64      `yaml:"hover,omitempty"`
	Move     *MoveStep     `yaml:"move,omitempty"`
	MoveFor  *MoveForStep  `yaml:"move_for,omitempty"`
	Triangle *TriangleStep `yaml:"triangle,omitempty"`
	Nervous  *NervousStep  `yaml:"nervous,omitempty"`
	Rotate   *RotateStep   `yaml:"rotate,omitempty"`
}

// MoveStep flies straight to To at Speed m/s.
type MoveStep struct {
	To    *Target `yaml:"to,omitempty"`
	Speed float64 `yaml:"speed"`
}

// MoveForStep flies straight to To in Duration seconds.
type MoveForStep struct {
	To       *Target `yaml:"to,omitempty"`
	Duration float64 `yaml:"duration"`
}

// TriangleStep zig-zags to To.
type TriangleStep struct {
	To        *Target `yaml:"to,omitempty"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
}

// NervousStep twitches to To. Shape is a flat list of (duration,
// amplitude) pairs.
type NervousStep struct {
	To     *Target   `yaml:"to,omitempty"`
	Shape  []float64 `yaml:"shape"`
	Repeat int       `yaml:"repeat"`
}

// RotateStep turns in place to Yaw over Duration seconds.
type RotateStep struct {
	Yaw      float64 `yaml:"yaw"`
	Duration float64 `yaml:"duration"`
}

// Target is a step destination. A target without a yaw keeps the heading
// the drone has when the step starts.
type Target struct {
	X   float64  `yaml:"x"`
	Y   float64  `yaml:"y"`
	Z   float64  `yaml:"z"`
	Yaw *float64 `yaml:"yaw,omitempty"`
}

// Decorator wraps a drone's built trajectory. Exactly one field must be set.
type Decorator struct {
	Circle *CircleDecorator `yaml:"circle,omitempty"`
	Delay  *float64         `yaml:"delay,omitempty"`
}

// CircleDecorator sweeps around a vertical axis through Center, or through
// the drone's final position when Center is omitted.
type CircleDecorator struct {
	Center    *Center `yaml:"center,omitempty"`
	Frequency float64 `yaml:"frequency"`
}

// Center is a horizontal position.
type Center struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// kind names the field set on a step, for error messages.
func (s Step) kind() (string, int) {
	var name string
	n := 0
	set := func(ok bool, k string) {
		if ok {
			name = k
			n++
		}
	}
	set(s.Hover != nil, "hover")
	set(s.Move != nil, "move")
	set(s.MoveFor != nil, "move_for")
	set(s.Triangle != nil, "triangle")
	set(s.Nervous != nil, "nervous")
	set(s.Rotate != nil, "rotate")
	return name, n
}

func (d Decorator) kind() (string, int) {
	switch {
	case d.Circle != nil && d.Delay != nil:
		return "", 2
	case d.Circle != nil:
		return "circle", 1
	case d.Delay != nil:
		return "delay", 1
	default:
		return "", 0
	}
}
