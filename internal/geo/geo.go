// Package geo provides the 2D vector and angle primitives used by the
// arena simulation.
package geo

import "math"

const (
	// HalfPi is π/2.
	HalfPi = math.Pi / 2
	// TwoPi is 2π, the full circle used for absolute angle normalization.
	TwoPi = 2 * math.Pi
)

// Point is a 2D position or displacement in arena coordinates. The y
// axis grows downward, matching the renderer convention.
type Point struct {
	X float64 `json:"x" cbor:"1,keyasint"`
	Y float64 `json:"y" cbor:"2,keyasint"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the displacement from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Length returns the distance of p from the origin.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// IsZero reports whether p is the zero displacement.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// Clamp limits x to the inclusive range [lower, upper].
func Clamp(x, lower, upper float64) float64 {
	return math.Min(math.Max(lower, x), upper)
}

// NormalizeAbsoluteAngle maps an angle into [0, 2π).
func NormalizeAbsoluteAngle(angle float64) float64 {
	angle = math.Mod(angle, TwoPi)
	if angle < 0 {
		angle += TwoPi
	}
	return angle
}

// NormalizeRelativeAngle maps an angle into (-π, π].
func NormalizeRelativeAngle(angle float64) float64 {
	angle = NormalizeAbsoluteAngle(angle)
	if angle > math.Pi {
		angle -= TwoPi
	}
	return angle
}

// AngleBetween returns the heading from origin to target, where 0
// points up (negative y) and angles grow clockwise.
func AngleBetween(origin, target Point) float64 {
	d := target.Sub(origin)
	return math.Atan2(d.X, -d.Y)
}

// LineEndpoint returns the point reached by travelling length units
// from start along heading.
func LineEndpoint(start Point, length, heading float64) Point {
	return Point{
		X: start.X + math.Sin(heading)*length,
		Y: start.Y - math.Cos(heading)*length,
	}
}
