package entity

import "fmt"

// DefaultSplineDegree is the cubic degree used when callers do not ask for
// a specific one.
const DefaultSplineDegree = 3

// Spline is a clamped B-spline curve over shared control points. It is not
// a solver participant: its control points never enter the unknowns vector.
type Spline struct {
	ControlPoints []*Point
	Degree        int

	knots []float64
}

// NewSpline creates a B-spline of the given degree. Construction fails when
// fewer than degree+1 control points are supplied.
func NewSpline(controlPoints []*Point, degree int) (*Spline, error) {
	if degree < 1 {
		return nil, fmt.Errorf("spline: degree %d must be at least 1: %w", degree, ErrInvalidGeometry)
	}
	if len(controlPoints) < degree+1 {
		return nil, fmt.Errorf("spline: need at least %d control points for degree %d, got %d: %w",
			degree+1, degree, len(controlPoints), ErrInvalidGeometry)
	}
	return &Spline{
		ControlPoints: controlPoints,
		Degree:        degree,
		knots:         clampedKnots(len(controlPoints), degree),
	}, nil
}

func (s *Spline) Kind() Kind { return KindSpline }
func (*Spline) sketchEntity() {}

// Knots returns a copy of the knot vector (length n+degree+1).
func (s *Spline) Knots() []float64 {
	out := make([]float64, len(s.knots))
	copy(out, s.knots)
	return out
}

// PointAtParameter evaluates the spline at parameter t, clamped to [0, 1].
// The clamped knot vector makes the curve interpolate its first and last
// control points at t=0 and t=1.
func (s *Spline) PointAtParameter(t float64) Point {
	t = clamp01(t)
	p := s.Degree
	n := len(s.ControlPoints)

	span := findSpan(s.knots, n, p, t)
	basis := basisFuns(s.knots, span, p, t)

	var x, y float64
	for i := 0; i <= p; i++ {
		cp := s.ControlPoints[span-p+i]
		x += basis[i] * cp.X
		y += basis[i] * cp.Y
	}
	return Point{X: x, Y: y}
}

// Points samples the spline at n evenly spaced parameters across [0, 1].
func (s *Spline) Points(n int) []Point {
	if n <= 0 {
		return nil
	}
	out := make([]Point, n)
	if n == 1 {
		out[0] = s.PointAtParameter(0)
		return out
	}
	for i := 0; i < n; i++ {
		out[i] = s.PointAtParameter(float64(i) / float64(n-1))
	}
	return out
}

// clampedKnots builds the clamped, near-uniform knot vector: the first
// degree knots are 0, the last degree knots are 1, and the n-degree+1
// knots between run uniformly across [0, 1].
func clampedKnots(n, degree int) []float64 {
	knots := make([]float64, n+degree+1)
	interior := n - degree + 1
	for i := 0; i < interior; i++ {
		knots[degree+i] = float64(i) / float64(interior-1)
	}
	for i := n + 1; i < len(knots); i++ {
		knots[i] = 1
	}
	return knots
}

// findSpan locates the knot span index containing t, clamped so that the
// basis at t=1 is evaluated in the last non-degenerate span.
func findSpan(knots []float64, n, p int, t float64) int {
	if t >= knots[n] {
		return n - 1
	}
	lo, hi := p, n
	mid := (lo + hi) / 2
	for t < knots[mid] || t >= knots[mid+1] {
		if t < knots[mid] {
			hi = mid
		} else {
			lo = mid
		}
		mid = (lo + hi) / 2
	}
	return mid
}

// basisFuns computes the p+1 non-vanishing B-spline basis functions at t
// for the given span, by the Cox-de Boor recursion.
func basisFuns(knots []float64, span, p int, t float64) []float64 {
	basis := make([]float64, p+1)
	left := make([]float64, p+1)
	right := make([]float64, p+1)

	basis[0] = 1
	for j := 1; j <= p; j++ {
		left[j] = t - knots[span+1-j]
		right[j] = knots[span+j] - t
		saved := 0.0
		for r := 0; r < j; r++ {
			denom := right[r+1] + left[j-r]
			term := 0.0
			if denom != 0 {
				term = basis[r] / denom
			}
			basis[r] = saved + right[r+1]*term
			saved = left[j-r]*term
		}
		basis[j] = saved
	}
	return basis
}
