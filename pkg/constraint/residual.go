package constraint

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/kerf/pkg/entity"
)

// residualFunc computes the scalar violation of one constraint against the
// current entity state. A non-nil error marks the constraint structurally
// inapplicable to its entities (a pairing the lenient validation table let
// through); the solver treats that as unsatisfiable, never as zero error.
type residualFunc func(c *Constraint) (float64, error)

// residuals maps every constraint type to its residual. The table is
// exhaustive over Type; solve fails up front on a constraint with no entry.
var residuals = map[Type]residualFunc{
	Coincident:    residualCoincident,
	Parallel:      residualParallel,
	Perpendicular: residualPerpendicular,
	Horizontal:    residualHorizontal,
	Vertical:      residualVertical,
	Distance:      residualDistance,
	Angle:         residualAngle,
	Equal:         residualEqual,
	Tangent:       residualTangent,
	Radius:        residualRadius,
	Concentric:    residualConcentric,
}

// residual evaluates the constraint's violation against live entity state.
func (c *Constraint) residual() (float64, error) {
	f, ok := residuals[c.Type]
	if !ok {
		return 0, fmt.Errorf("constraint %s: no residual", c.Type)
	}
	return f(c)
}

func residualCoincident(c *Constraint) (float64, error) {
	p1, ok1 := c.Entities[0].(*entity.Point)
	p2, ok2 := c.Entities[1].(*entity.Point)
	if !ok1 || !ok2 {
		return 0, inapplicable(c, "requires two points")
	}
	return p1.DistanceTo(p2), nil
}

func residualParallel(c *Constraint) (float64, error) {
	d1, d2, err := twoDirections(c)
	if err != nil {
		return 0, err
	}
	return math.Abs(d1.Dot(d2) - 1), nil
}

func residualPerpendicular(c *Constraint) (float64, error) {
	d1, d2, err := twoDirections(c)
	if err != nil {
		return 0, err
	}
	return math.Abs(d1.Dot(d2)), nil
}

func residualHorizontal(c *Constraint) (float64, error) {
	l, ok := c.Entities[0].(*entity.Line)
	if !ok {
		return 0, inapplicable(c, "requires a line")
	}
	return math.Abs(l.End.Y - l.Start.Y), nil
}

func residualVertical(c *Constraint) (float64, error) {
	l, ok := c.Entities[0].(*entity.Line)
	if !ok {
		return 0, inapplicable(c, "requires a line")
	}
	return math.Abs(l.End.X - l.Start.X), nil
}

// residualDistance measures point-to-point distance when both entities are
// points; otherwise the length of the first entity, which must be a line.
// A missing value scores zero.
func residualDistance(c *Constraint) (float64, error) {
	if c.Value == nil {
		return 0, nil
	}
	var actual float64
	p1, ok1 := c.Entities[0].(*entity.Point)
	p2, ok2 := c.Entities[1].(*entity.Point)
	switch {
	case ok1 && ok2:
		actual = p1.DistanceTo(p2)
	default:
		l, ok := c.Entities[0].(*entity.Line)
		if !ok {
			return 0, inapplicable(c, "requires two points or a leading line")
		}
		actual = l.Length()
	}
	return math.Abs(actual - *c.Value), nil
}

func residualAngle(c *Constraint) (float64, error) {
	if c.Value == nil {
		return 0, nil
	}
	d1, d2, err := twoDirections(c)
	if err != nil {
		return 0, err
	}
	angle := math.Acos(clip(d1.Dot(d2), -1, 1))
	return math.Abs(angle - *c.Value), nil
}

// residualEqual compares lengths for a pair of lines and radii for a pair
// of circles/arcs. A mixed line-circle pair passes validation but has no
// meaningful equality; it is inapplicable.
func residualEqual(c *Constraint) (float64, error) {
	l1, lok1 := c.Entities[0].(*entity.Line)
	l2, lok2 := c.Entities[1].(*entity.Line)
	if lok1 && lok2 {
		return math.Abs(l1.Length() - l2.Length()), nil
	}
	r1, rok1 := radiusOf(c.Entities[0])
	r2, rok2 := radiusOf(c.Entities[1])
	if rok1 && rok2 {
		return math.Abs(r1 - r2), nil
	}
	return 0, inapplicable(c, "requires two lines or two circles/arcs")
}

// residualTangent contributes no error term: tangent constraints validate
// and are stored, but are intentionally inert in the objective.
func residualTangent(c *Constraint) (float64, error) {
	for _, e := range c.Entities {
		switch e.Kind() {
		case entity.KindLine, entity.KindCircle, entity.KindArc:
		default:
			return 0, inapplicable(c, "requires lines, circles, or arcs")
		}
	}
	return 0, nil
}

func residualRadius(c *Constraint) (float64, error) {
	r, ok := radiusOf(c.Entities[0])
	if !ok {
		return 0, inapplicable(c, "requires a circle or arc")
	}
	if c.Value == nil {
		return 0, inapplicable(c, "requires a value")
	}
	return math.Abs(r - *c.Value), nil
}

func residualConcentric(c *Constraint) (float64, error) {
	c1, ok1 := centerOf(c.Entities[0])
	c2, ok2 := centerOf(c.Entities[1])
	if !ok1 || !ok2 {
		return 0, inapplicable(c, "requires two circles/arcs")
	}
	return c1.DistanceTo(c2), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func inapplicable(c *Constraint, reason string) error {
	return fmt.Errorf("constraint %s: %s", c.Type, reason)
}

// twoDirections extracts the unit directions of two line entities. A
// degenerate (zero-length) line propagates its invalid-geometry error.
func twoDirections(c *Constraint) (d1, d2 v2.Vec, err error) {
	l1, ok1 := c.Entities[0].(*entity.Line)
	l2, ok2 := c.Entities[1].(*entity.Line)
	if !ok1 || !ok2 {
		return d1, d2, inapplicable(c, "requires two lines")
	}
	if d1, err = l1.Direction(); err != nil {
		return d1, d2, err
	}
	if d2, err = l2.Direction(); err != nil {
		return d1, d2, err
	}
	return d1, d2, nil
}

func radiusOf(e entity.Entity) (float64, bool) {
	switch v := e.(type) {
	case *entity.Circle:
		return v.Radius, true
	case *entity.Arc:
		return v.Radius, true
	}
	return 0, false
}

func centerOf(e entity.Entity) (*entity.Point, bool) {
	switch v := e.(type) {
	case *entity.Circle:
		return v.Center, true
	case *entity.Arc:
		return v.Center, true
	}
	return nil, false
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
