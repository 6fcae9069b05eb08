package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/kerf/pkg/entity"
	"github.com/chazu/kerf/pkg/sketch"
)

// evalScript runs a script and fails the test on any error.
func evalScript(t *testing.T, source string) *sketch.Manager {
	t.Helper()
	eng := NewEngine()
	mgr, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if mgr == nil {
		t.Fatal("expected non-nil manager")
	}
	return mgr
}

// evalExpectError runs a script and fails the test unless evaluation
// produces at least one eval error mentioning the given substring.
func evalExpectError(t *testing.T, source, substring string) {
	t.Helper()
	eng := NewEngine()
	mgr, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if mgr != nil {
		t.Fatal("expected nil manager on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	joined := ""
	for _, e := range evalErrs {
		joined += e.Error() + "\n"
	}
	if !strings.Contains(joined, substring) {
		t.Errorf("expected error mentioning %q, got: %s", substring, joined)
	}
}

// ---------------------------------------------------------------------------
// Entity builtins
// ---------------------------------------------------------------------------

func TestBuiltinPoint(t *testing.T) {
	mgr := evalScript(t, "(point 3 4)")
	if mgr.Len() != 1 {
		t.Fatalf("expected 1 entity, got %d", mgr.Len())
	}
	e, _ := mgr.Entity(mgr.EntityIDs()[0])
	p, ok := e.(*entity.Point)
	if !ok {
		t.Fatalf("expected *entity.Point, got %T", e)
	}
	if p.X != 3 || p.Y != 4 {
		t.Errorf("expected (3, 4), got (%g, %g)", p.X, p.Y)
	}
}

func TestBuiltinLine(t *testing.T) {
	mgr := evalScript(t, "(line 0 0 10 0)")
	e, _ := mgr.Entity(mgr.EntityIDs()[0])
	l, ok := e.(*entity.Line)
	if !ok {
		t.Fatalf("expected *entity.Line, got %T", e)
	}
	if l.Length() != 10 {
		t.Errorf("expected length 10, got %g", l.Length())
	}
}

func TestBuiltinCircleAndArc(t *testing.T) {
	mgr := evalScript(t, "(circle 5 5 2)\n(arc 0 0 3 0 1.5)")
	if mgr.Len() != 2 {
		t.Fatalf("expected 2 entities, got %d", mgr.Len())
	}
	for _, id := range mgr.EntityIDs() {
		e, _ := mgr.Entity(id)
		switch v := e.(type) {
		case *entity.Circle:
			if v.Radius != 2 {
				t.Errorf("expected circle radius 2, got %g", v.Radius)
			}
		case *entity.Arc:
			if v.Radius != 3 || v.EndAngle != 1.5 {
				t.Errorf("unexpected arc: %+v", v)
			}
		default:
			t.Errorf("unexpected entity %T", e)
		}
	}
}

func TestBuiltinSpline(t *testing.T) {
	mgr := evalScript(t, "(spline 3 [[0 0] [10 20] [30 20] [40 0]])")
	e, _ := mgr.Entity(mgr.EntityIDs()[0])
	s, ok := e.(*entity.Spline)
	if !ok {
		t.Fatalf("expected *entity.Spline, got %T", e)
	}
	if len(s.ControlPoints) != 4 || s.Degree != 3 {
		t.Errorf("unexpected spline: %d control points, degree %d", len(s.ControlPoints), s.Degree)
	}
}

func TestBuiltinSplineTooFewPoints(t *testing.T) {
	evalExpectError(t, "(spline 3 [[0 0] [1 1]])", "control points")
}

func TestBuiltinPointWrongArity(t *testing.T) {
	evalExpectError(t, "(point 1)", "point")
}

func TestBuiltinDelete(t *testing.T) {
	mgr := evalScript(t, `
(def l1 (line 0 0 10 0))
(delete l1)
`)
	if mgr.Len() != 0 {
		t.Fatalf("expected empty sketch after delete, got %d entities", mgr.Len())
	}
}

func TestBuiltinDeleteUnknown(t *testing.T) {
	evalExpectError(t, `(delete "L42")`, "L42")
}

// ---------------------------------------------------------------------------
// Constraints and solving
// ---------------------------------------------------------------------------

func TestBuiltinConstrainAndSolve(t *testing.T) {
	mgr := evalScript(t, `
(def l1 (line 0 0 3 4))
(constrain :horizontal l1)
(solve)
`)
	e, _ := mgr.Entity(mgr.EntityIDs()[0])
	l := e.(*entity.Line)
	if dy := math.Abs(l.End.Y - l.Start.Y); dy > 1e-6 {
		t.Errorf("expected horizontal line after solve, dy = %g", dy)
	}
}

func TestBuiltinConstrainWithValue(t *testing.T) {
	mgr := evalScript(t, `
(def p1 (point 0 0))
(def p2 (point 3 4))
(constrain :distance p1 p2 :value 10)
(solve)
`)
	ids := mgr.EntityIDs()
	a, _ := mgr.Entity(ids[0])
	b, _ := mgr.Entity(ids[1])
	d := a.(*entity.Point).DistanceTo(b.(*entity.Point))
	if math.Abs(d-10) > 1e-3 {
		t.Errorf("expected distance 10 after solve, got %g", d)
	}
}

func TestBuiltinConstrainTypeAsKeyword(t *testing.T) {
	// A leading :keyword type must not swallow the first entity id
	// during keyword-argument parsing.
	mgr := evalScript(t, `
(def l1 (line 0 0 3 4))
(def l2 (line 0 1 4 4))
(constrain :parallel l1 l2)
`)
	if mgr.Solver().Len() != 1 {
		t.Fatalf("expected 1 constraint, got %d", mgr.Solver().Len())
	}
	if got := mgr.Solver().Constraints()[0]; len(got.Entities) != 2 {
		t.Errorf("expected 2 entities on the constraint, got %d", len(got.Entities))
	}
}

func TestBuiltinConstrainTypeAsString(t *testing.T) {
	// The constraint type may be a plain string instead of a keyword.
	mgr := evalScript(t, `
(def l1 (line 0 0 3 4))
(constrain "horizontal" l1)
(solve)
`)
	if mgr.Solver().Len() != 1 {
		t.Errorf("expected 1 constraint, got %d", mgr.Solver().Len())
	}
}

func TestBuiltinConstrainUnknownType(t *testing.T) {
	evalExpectError(t, `
(def l1 (line 0 0 1 0))
(constrain :symmetric l1)
`, "symmetric")
}

func TestBuiltinConstrainValidationFailure(t *testing.T) {
	evalExpectError(t, `
(def c1 (circle 0 0 5))
(constrain :horizontal c1)
`, "horizontal")
}

func TestBuiltinSolveReturnsFalseOnFailure(t *testing.T) {
	// An unsatisfiable system: solve reports failure but evaluation
	// continues, leaving the sketch at its pre-solve state.
	mgr := evalScript(t, `
(def p1 (point 0 0))
(def p2 (point 3 4))
(constrain :coincident p1 p2)
(constrain :distance p1 p2 :value 10)
(solve)
`)
	ids := mgr.EntityIDs()
	a, _ := mgr.Entity(ids[0])
	p := a.(*entity.Point)
	if p.X != 0 || p.Y != 0 {
		t.Errorf("expected point untouched after failed solve, got (%g, %g)", p.X, p.Y)
	}
}

// ---------------------------------------------------------------------------
// Sketch plane
// ---------------------------------------------------------------------------

func TestBuiltinSketchPlane(t *testing.T) {
	mgr := evalScript(t, `
(sketch :origin (vec3 0 0 10) :normal (vec3 0 0 1) :x (vec3 1 0 0))
(point 1 2)
`)
	if mgr.Plane().Origin.Z != 10 {
		t.Errorf("expected plane origin z 10, got %+v", mgr.Plane().Origin)
	}
	if mgr.Len() != 1 {
		t.Errorf("expected 1 entity on the new sketch, got %d", mgr.Len())
	}
	w := mgr.Plane().ToWorld(1, 2)
	if w.X != 1 || w.Y != 2 || w.Z != 10 {
		t.Errorf("expected world point (1, 2, 10), got %+v", w)
	}
}

func TestBuiltinSketchDefaultXAxis(t *testing.T) {
	mgr := evalScript(t, "(sketch :normal (vec3 1 0 0))")
	if !mgr.Plane().IsOrthonormal(1e-9) {
		t.Error("expected orthonormal plane from normal-only sketch")
	}
}

func TestBuiltinSketchZeroNormal(t *testing.T) {
	evalExpectError(t, "(sketch :normal (vec3 0 0 0))", "normal")
}

func TestBuiltinSketchClearsEntities(t *testing.T) {
	mgr := evalScript(t, `
(point 1 1)
(sketch :normal (vec3 0 0 1))
(point 2 2)
`)
	if mgr.Len() != 1 {
		t.Errorf("expected 1 entity after re-sketch, got %d", mgr.Len())
	}
}

func TestBuiltinVec3WrongArity(t *testing.T) {
	evalExpectError(t, "(vec3 1 2)", "vec3")
}
