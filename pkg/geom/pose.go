package geom

import "math"

// Pose is the position + yaw handed to the flight-control link.
type Pose struct {
	X   float64 `json:"x" yaml:"x"`
	Y   float64 `json:"y" yaml:"y"`
	Z   float64 `json:"z" yaml:"z"`
	Yaw float64 `json:"yaw" yaml:"yaw"`
}

// FromPose converts a boundary pose into a Point4D.
func FromPose(p Pose) Point4D {
	return Point4D{X: p.X, Y: p.Y, Z: p.Z, Yaw: p.Yaw}
}

// Pose converts p to the boundary representation.
func (p Point4D) Pose() Pose {
	return Pose{X: p.X, Y: p.Y, Z: p.Z, Yaw: p.Yaw}
}

// Position returns the position part of the pose.
func (p Pose) Position() Point3D {
	return Point3D{X: p.X, Y: p.Y, Z: p.Z}
}

// ApproxEqual reports whether every component of p and other differs by at
// most eps.
func (p Pose) ApproxEqual(other Pose, eps float64) bool {
	return math.Abs(p.X-other.X) <= eps &&
		math.Abs(p.Y-other.Y) <= eps &&
		math.Abs(p.Z-other.Z) <= eps &&
		math.Abs(p.Yaw-other.Yaw) <= eps
}

// MaxDelta returns the largest absolute component difference between p and
// other, yaw included.
func (p Pose) MaxDelta(other Pose) float64 {
	return math.Max(
		math.Max(math.Abs(p.X-other.X), math.Abs(p.Y-other.Y)),
		math.Max(math.Abs(p.Z-other.Z), math.Abs(p.Yaw-other.Yaw)),
	)
}
