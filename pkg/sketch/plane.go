// Package sketch provides the sketch manager: id-keyed entity storage, the
// active sketch plane, and constraint solving mediated by entity ids.
package sketch

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/kerf/pkg/entity"
)

// parallelEps is the threshold below which a candidate x axis is treated
// as parallel to the plane normal.
const parallelEps = 1e-9

// Plane is the 3D rigid frame onto which 2D sketch coordinates are
// embedded: an origin plus a right-handed orthonormal basis.
type Plane struct {
	Origin v3.Vec
	Normal v3.Vec // unit
	XAxis  v3.Vec // unit, orthogonal to Normal
	YAxis  v3.Vec // Normal x XAxis
}

// NewPlane builds a plane from an origin, a normal, and a candidate x
// axis. The normal is normalized and the x axis is orthonormalized against
// it via Gram-Schmidt; the y axis completes the right-handed basis.
func NewPlane(origin, normal, xAxis v3.Vec) (Plane, error) {
	if normal.Length() == 0 {
		return Plane{}, fmt.Errorf("plane: zero normal: %w", entity.ErrInvalidGeometry)
	}
	n := normal.Normalize()
	x := xAxis.Sub(n.MulScalar(xAxis.Dot(n)))
	if x.Length() < parallelEps {
		return Plane{}, fmt.Errorf("plane: x axis parallel to normal: %w", entity.ErrInvalidGeometry)
	}
	x = x.Normalize()
	return Plane{Origin: origin, Normal: n, XAxis: x, YAxis: n.Cross(x)}, nil
}

// PlaneFor builds a plane from an origin and normal, choosing a reasonable
// x axis: the world y axis crossed with the normal, falling back to world
// x when the normal is (anti)parallel to world y.
func PlaneFor(origin, normal v3.Vec) (Plane, error) {
	if normal.Length() == 0 {
		return Plane{}, fmt.Errorf("plane: zero normal: %w", entity.ErrInvalidGeometry)
	}
	worldY := v3.Vec{Y: 1}
	x := worldY.Cross(normal)
	if x.Length() < parallelEps {
		x = v3.Vec{X: 1}
	}
	return NewPlane(origin, normal, x)
}

// XY returns the default sketch plane: the world XY plane at the origin.
func XY() Plane {
	return Plane{
		Normal: v3.Vec{Z: 1},
		XAxis:  v3.Vec{X: 1},
		YAxis:  v3.Vec{Y: 1},
	}
}

// ToWorld embeds sketch coordinates (x, y) into 3D world space.
func (p Plane) ToWorld(x, y float64) v3.Vec {
	return p.Origin.Add(p.XAxis.MulScalar(x)).Add(p.YAxis.MulScalar(y))
}

// Transform is a rigid 4x4 row-major homogeneous transform.
type Transform [4][4]float64

// Transform composes the plane's basis columns (x, y, normal) and origin
// into the rigid transform mapping sketch-local coordinates to world.
func (p Plane) Transform() Transform {
	return Transform{
		{p.XAxis.X, p.YAxis.X, p.Normal.X, p.Origin.X},
		{p.XAxis.Y, p.YAxis.Y, p.Normal.Y, p.Origin.Y},
		{p.XAxis.Z, p.YAxis.Z, p.Normal.Z, p.Origin.Z},
		{0, 0, 0, 1},
	}
}

// Apply transforms a 3D point.
func (t Transform) Apply(v v3.Vec) v3.Vec {
	return v3.Vec{
		X: t[0][0]*v.X + t[0][1]*v.Y + t[0][2]*v.Z + t[0][3],
		Y: t[1][0]*v.X + t[1][1]*v.Y + t[1][2]*v.Z + t[1][3],
		Z: t[2][0]*v.X + t[2][1]*v.Y + t[2][2]*v.Z + t[2][3],
	}
}

// IsOrthonormal reports whether the plane basis is orthonormal within eps.
func (p Plane) IsOrthonormal(eps float64) bool {
	unit := func(v v3.Vec) bool { return math.Abs(v.Length()-1) < eps }
	perp := func(a, b v3.Vec) bool { return math.Abs(a.Dot(b)) < eps }
	return unit(p.Normal) && unit(p.XAxis) && unit(p.YAxis) &&
		perp(p.Normal, p.XAxis) && perp(p.Normal, p.YAxis) && perp(p.XAxis, p.YAxis)
}
