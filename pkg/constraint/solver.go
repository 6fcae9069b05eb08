package constraint

import (
	"fmt"
	"math"

	"github.com/chazu/kerf/pkg/entity"
	"github.com/chazu/kerf/pkg/logger"
	"github.com/chazu/kerf/pkg/optim"
	gonumopt "github.com/chazu/kerf/pkg/optim/gonum"
)

// DefaultTolerance is the convergence threshold on the solver objective.
const DefaultTolerance = 1e-6

// DefaultMaxIterations bounds the optimizer; exhausting the budget is
// reported as a convergence failure.
const DefaultMaxIterations = 10000

// ConvergenceError reports that the objective could not be satisfied
// within tolerance. No point coordinates were modified.
type ConvergenceError struct {
	Objective float64
	Tolerance float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("solve did not converge: objective %g above tolerance %g", e.Objective, e.Tolerance)
}

// Solver owns the list of accepted constraints and reconciles sketch
// points with them. It is not safe for concurrent use: Solve mutates the
// shared points the constraints reference.
type Solver struct {
	constraints []*Constraint
	tolerance   float64
	maxIter     int
	minimizer   optim.Minimizer
}

// NewSolver creates a solver with the default tolerance, iteration budget,
// and the gonum Nelder-Mead minimizer.
func NewSolver() *Solver {
	return &Solver{
		tolerance: DefaultTolerance,
		maxIter:   DefaultMaxIterations,
		minimizer: gonumopt.New(),
	}
}

// Tolerance returns the convergence threshold on the objective.
func (s *Solver) Tolerance() float64 { return s.tolerance }

// SetTolerance changes the convergence threshold. Non-positive values are
// ignored.
func (s *Solver) SetTolerance(tol float64) {
	if tol > 0 {
		s.tolerance = tol
	}
}

// SetMaxIterations changes the optimizer iteration budget. Non-positive
// values are ignored.
func (s *Solver) SetMaxIterations(n int) {
	if n > 0 {
		s.maxIter = n
	}
}

// SetMinimizer swaps the numerical backend.
func (s *Solver) SetMinimizer(m optim.Minimizer) {
	if m != nil {
		s.minimizer = m
	}
}

// Add stores a validated constraint. Use New to validate and construct.
func (s *Solver) Add(c *Constraint) {
	s.constraints = append(s.constraints, c)
}

// Constraints returns the stored constraints in insertion order.
func (s *Solver) Constraints() []*Constraint {
	out := make([]*Constraint, len(s.constraints))
	copy(out, s.constraints)
	return out
}

// Len returns the number of stored constraints.
func (s *Solver) Len() int { return len(s.constraints) }

// Clear removes all constraints.
func (s *Solver) Clear() {
	s.constraints = nil
}

// RemoveEntity removes every constraint whose entity list contains e, by
// reference identity. It returns the number of constraints removed.
func (s *Solver) RemoveEntity(e entity.Entity) int {
	kept := s.constraints[:0]
	removed := 0
	for _, c := range s.constraints {
		if constraintMentions(c, e) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.constraints = kept
	return removed
}

func constraintMentions(c *Constraint, e entity.Entity) bool {
	for _, ce := range c.Entities {
		if ce == e {
			return true
		}
	}
	return false
}

// Solve reconciles point coordinates with the stored constraints by
// minimizing the sum of squared residuals. On success the optimized
// coordinates are committed into the originating points; on any failure
// every point is left exactly as it was.
func (s *Solver) Solve() error {
	if len(s.constraints) == 0 {
		return nil
	}

	// Fail before touching anything if a stored constraint cannot be
	// scored against its entities (lenient validation lets some such
	// pairings through) or its geometry is degenerate.
	total := 0.0
	for _, c := range s.constraints {
		r, err := c.residual()
		if err != nil {
			return err
		}
		total += r * r
	}

	// An already-satisfied system is left exactly as it is. The simplex
	// search drifts coordinates along the objective's flat directions,
	// so it only runs when there is error to remove.
	if total <= s.tolerance {
		return nil
	}

	points := s.freePoints()
	saved := gather(points)

	// No free coordinates means nothing to optimize; the residuals at the
	// current state already failed the tolerance.
	if len(points) == 0 {
		return &ConvergenceError{Objective: total, Tolerance: s.tolerance}
	}

	log := logger.Logger()
	log.Debug().
		Int("constraints", len(s.constraints)).
		Int("dof", 2*len(points)).
		Msg("solving sketch constraints")

	objective := func(x []float64) float64 {
		scatter(points, x)
		total := 0.0
		for _, c := range s.constraints {
			r, err := c.residual()
			if err != nil {
				return math.Inf(1)
			}
			total += r * r
		}
		return total
	}

	res, err := s.minimizer.Minimize(objective, saved, optim.Options{
		Tolerance:     s.tolerance,
		MaxIterations: s.maxIter,
	})

	// The objective mutates points while probing; restore the pre-solve
	// state before deciding what to commit.
	scatter(points, saved)

	if err != nil {
		return fmt.Errorf("minimize: %w", err)
	}
	if !res.Converged || res.Objective > s.tolerance {
		return &ConvergenceError{Objective: res.Objective, Tolerance: s.tolerance}
	}

	scatter(points, res.X)
	log.Debug().Float64("objective", res.Objective).Msg("sketch constraints solved")
	return nil
}

// freePoints collects the distinct points reachable from the stored
// constraints, deduplicated by reference identity, in stable
// first-encounter order. A line contributes both endpoints, a circle or
// arc its center, a point itself.
func (s *Solver) freePoints() []*entity.Point {
	seen := make(map[*entity.Point]bool)
	var points []*entity.Point
	add := func(p *entity.Point) {
		if p != nil && !seen[p] {
			seen[p] = true
			points = append(points, p)
		}
	}
	for _, c := range s.constraints {
		for _, e := range c.Entities {
			switch v := e.(type) {
			case *entity.Point:
				add(v)
			case *entity.Line:
				add(v.Start)
				add(v.End)
			case *entity.Circle:
				add(v.Center)
			case *entity.Arc:
				add(v.Center)
			}
		}
	}
	return points
}

// gather flattens point coordinates into an interleaved (x, y) vector.
func gather(points []*entity.Point) []float64 {
	x := make([]float64, 2*len(points))
	for i, p := range points {
		x[2*i] = p.X
		x[2*i+1] = p.Y
	}
	return x
}

// scatter writes an interleaved (x, y) vector back into the points.
func scatter(points []*entity.Point, x []float64) {
	for i, p := range points {
		p.X = x[2*i]
		p.Y = x[2*i+1]
	}
}
