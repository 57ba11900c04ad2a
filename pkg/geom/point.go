// Package geom provides the point and pose value types used by the
// choreography engine.
//
// All types are plain comparable values: equality is structural and copies
// are free. Coordinates are metres in the show's local frame (X east,
// Y north, Z up); yaw is in radians.
package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Point3D is a position in the show frame. Arithmetic is delegated to
// r3.Vector.
type Point3D struct {
	X, Y, Z float64
}

// FromVector converts an r3 vector to a Point3D.
func FromVector(v r3.Vector) Point3D {
	return Point3D{X: v.X, Y: v.Y, Z: v.Z}
}

// Vector returns p as an r3 vector.
func (p Point3D) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// Plus returns p + other.
func (p Point3D) Plus(other Point3D) Point3D {
	return FromVector(p.Vector().Add(other.Vector()))
}

// Minus returns p - other.
func (p Point3D) Minus(other Point3D) Point3D {
	return FromVector(p.Vector().Sub(other.Vector()))
}

// Scale returns p multiplied by k.
func (p Point3D) Scale(k float64) Point3D {
	return FromVector(p.Vector().Mul(k))
}

// Norm returns the Euclidean length of p.
func (p Point3D) Norm() float64 {
	return p.Vector().Norm()
}

// Horizontal returns p with Z set to zero.
func (p Point3D) Horizontal() Point3D {
	return Point3D{X: p.X, Y: p.Y}
}

// Distance returns the straight-line distance between a and b.
func Distance(a, b Point3D) float64 {
	return a.Vector().Distance(b.Vector())
}

// HorizontalDistance returns the distance between a and b projected on the
// XY plane.
func HorizontalDistance(a, b Point3D) float64 {
	return Distance(a.Horizontal(), b.Horizontal())
}

// Point4D is a position plus a yaw orientation.
type Point4D struct {
	X, Y, Z float64
	Yaw     float64
}

// NewPoint4D builds a Point4D from a position and a yaw angle.
func NewPoint4D(pos Point3D, yaw float64) Point4D {
	return Point4D{X: pos.X, Y: pos.Y, Z: pos.Z, Yaw: yaw}
}

// Position drops the yaw component.
func (p Point4D) Position() Point3D {
	return Point3D{X: p.X, Y: p.Y, Z: p.Z}
}

// Plus adds other component-wise, yaw included.
func (p Point4D) Plus(other Point4D) Point4D {
	return NewPoint4D(p.Position().Plus(other.Position()), p.Yaw+other.Yaw)
}

// Minus subtracts other component-wise, yaw included.
func (p Point4D) Minus(other Point4D) Point4D {
	return NewPoint4D(p.Position().Minus(other.Position()), p.Yaw-other.Yaw)
}

// Distance4D returns the Euclidean distance between the positions of a and
// b. Yaw does not contribute.
func Distance4D(a, b Point4D) float64 {
	return Distance(a.Position(), b.Position())
}

// PointAtAngle returns the point on the horizontal circle of the given
// radius around center, at angle measured from the +Y axis towards +X.
// Z and yaw are taken from center.
func PointAtAngle(center Point4D, radius, angle float64) Point4D {
	return Point4D{
		X:   center.X + radius*math.Sin(angle),
		Y:   center.Y + radius*math.Cos(angle),
		Z:   center.Z,
		Yaw: center.Yaw,
	}
}

// Lerp interpolates linearly between a and b. alpha is not clamped.
func Lerp(a, b Point4D, alpha float64) Point4D {
	return Point4D{
		X:   lerp(a.X, b.X, alpha),
		Y:   lerp(a.Y, b.Y, alpha),
		Z:   lerp(a.Z, b.Z, alpha),
		Yaw: lerp(a.Yaw, b.Yaw, alpha),
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
