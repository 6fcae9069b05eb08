// Package entity defines the 2D geometric primitives used in kerf sketches.
// Entities hold their points by shared *Point reference, never by copy, so
// a point aliased across entities is a single object: mutating it is
// visible through every entity holding it. Entities carry geometric query
// methods only; constraint and solver logic live elsewhere.
package entity

import (
	"errors"
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// ErrInvalidGeometry reports a malformed construction or query, such as a
// spline with too few control points or the direction of a zero-length line.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Kind enumerates the entity kinds in a sketch.
type Kind int

const (
	KindPoint Kind = iota
	KindLine
	KindCircle
	KindArc
	KindSpline
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindLine:
		return "line"
	case KindCircle:
		return "circle"
	case KindArc:
		return "arc"
	case KindSpline:
		return "spline"
	default:
		return "unknown"
	}
}

// Entity is the closed set of sketch primitives.
type Entity interface {
	Kind() Kind
	sketchEntity() // marker method restricting implementations to this package
}

// ---------------------------------------------------------------------------
// Point
// ---------------------------------------------------------------------------

// Point is a 2D point in sketch space. Its coordinates are the only mutable
// scalar degrees of freedom in the system.
type Point struct {
	X, Y float64
}

// NewPoint creates a point at (x, y).
func NewPoint(x, y float64) *Point {
	return &Point{X: x, Y: y}
}

func (p *Point) Kind() Kind { return KindPoint }
func (*Point) sketchEntity() {}

// DistanceTo returns the Euclidean distance to another point.
func (p *Point) DistanceTo(q *Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Vec flattens the point to a vector for geometric math and solver interop.
func (p *Point) Vec() v2.Vec {
	return v2.Vec{X: p.X, Y: p.Y}
}

// ---------------------------------------------------------------------------
// Line
// ---------------------------------------------------------------------------

// Line is a line segment between two shared endpoints.
type Line struct {
	Start *Point
	End   *Point
}

// NewLine creates a line segment between the given endpoints. The points
// are held by reference so they may be shared with other entities.
func NewLine(start, end *Point) *Line {
	return &Line{Start: start, End: end}
}

func (l *Line) Kind() Kind { return KindLine }
func (*Line) sketchEntity() {}

// Length returns the distance between the endpoints.
func (l *Line) Length() float64 {
	return l.Start.DistanceTo(l.End)
}

// Direction returns the unit vector from Start to End. A zero-length line
// has no direction; the error wraps ErrInvalidGeometry rather than
// dividing by zero.
func (l *Line) Direction() (v2.Vec, error) {
	d := l.End.Vec().Sub(l.Start.Vec())
	if d.Length() == 0 {
		return v2.Vec{}, fmt.Errorf("line: zero-length line has no direction: %w", ErrInvalidGeometry)
	}
	return d.Normalize(), nil
}

// PointAtParameter returns the point at parameter t along the line.
// t is clamped to [0, 1].
func (l *Line) PointAtParameter(t float64) Point {
	t = clamp01(t)
	return Point{
		X: l.Start.X + t*(l.End.X-l.Start.X),
		Y: l.Start.Y + t*(l.End.Y-l.Start.Y),
	}
}

// ---------------------------------------------------------------------------
// Circle
// ---------------------------------------------------------------------------

// Circle is a full circle. The center is a shared point; the radius is a
// plain scalar and never a solver unknown.
type Circle struct {
	Center *Point
	Radius float64
}

// NewCircle creates a circle with the given center point and radius.
func NewCircle(center *Point, radius float64) *Circle {
	return &Circle{Center: center, Radius: radius}
}

func (c *Circle) Kind() Kind { return KindCircle }
func (*Circle) sketchEntity() {}

// PointAtAngle returns the point on the circle at the given angle (radians).
func (c *Circle) PointAtAngle(angle float64) Point {
	return Point{
		X: c.Center.X + c.Radius*math.Cos(angle),
		Y: c.Center.Y + c.Radius*math.Sin(angle),
	}
}

// Circumference returns 2πr.
func (c *Circle) Circumference() float64 {
	return 2 * math.Pi * c.Radius
}

// ---------------------------------------------------------------------------
// Arc
// ---------------------------------------------------------------------------

// Arc is a circular arc from StartAngle to EndAngle (radians, counter-
// clockwise). The center is a shared point; the radius is never a solver
// unknown.
type Arc struct {
	Center     *Point
	Radius     float64
	StartAngle float64
	EndAngle   float64
}

// NewArc creates an arc with the given center point, radius, and angles.
func NewArc(center *Point, radius, startAngle, endAngle float64) *Arc {
	return &Arc{Center: center, Radius: radius, StartAngle: startAngle, EndAngle: endAngle}
}

func (a *Arc) Kind() Kind { return KindArc }
func (*Arc) sketchEntity() {}

// sweep returns the positive angular span of the arc. A negative
// EndAngle-StartAngle difference is normalized by adding 2π so the arc
// always runs counter-clockwise from StartAngle.
func (a *Arc) sweep() float64 {
	d := a.EndAngle - a.StartAngle
	if d < 0 {
		d += 2 * math.Pi
	}
	return d
}

// Length returns the arc length, radius times the positive sweep.
func (a *Arc) Length() float64 {
	return a.Radius * a.sweep()
}

// PointAtParameter returns the point at parameter t along the arc,
// interpolating the angle across the same normalized sweep used by Length.
// t is clamped to [0, 1].
func (a *Arc) PointAtParameter(t float64) Point {
	t = clamp01(t)
	return a.PointAtAngle(a.StartAngle + t*a.sweep())
}

// PointAtAngle returns the point on the arc's circle at the given angle.
func (a *Arc) PointAtAngle(angle float64) Point {
	return Point{
		X: a.Center.X + a.Radius*math.Cos(angle),
		Y: a.Center.Y + a.Radius*math.Sin(angle),
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}
