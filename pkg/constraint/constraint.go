// Package constraint implements geometric constraint validation and the
// least-squares solver for kerf sketches.
//
// A constraint is a typed relation over live entity references plus an
// optional scalar value. Validation at creation time checks arity and
// entity kinds against a fixed table. The solver owns the accepted
// constraints and reconciles point coordinates by minimizing the sum of
// squared residuals.
package constraint

import (
	"fmt"

	"github.com/chazu/kerf/pkg/entity"
)

// Type enumerates the supported constraint types.
type Type int

const (
	Coincident Type = iota
	Parallel
	Perpendicular
	Horizontal
	Vertical
	Distance
	Angle
	Equal
	Tangent
	Radius
	Concentric
)

func (t Type) String() string {
	switch t {
	case Coincident:
		return "coincident"
	case Parallel:
		return "parallel"
	case Perpendicular:
		return "perpendicular"
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Distance:
		return "distance"
	case Angle:
		return "angle"
	case Equal:
		return "equal"
	case Tangent:
		return "tangent"
	case Radius:
		return "radius"
	case Concentric:
		return "concentric"
	default:
		return "unknown"
	}
}

// ParseType converts a constraint type name to its Type.
func ParseType(name string) (Type, error) {
	for t := Coincident; t <= Concentric; t++ {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown constraint type %q", name)
}

// rule describes the required entity count and the permitted entity kinds
// for one constraint type.
type rule struct {
	arity int
	kinds map[entity.Kind]bool
}

func kinds(ks ...entity.Kind) map[entity.Kind]bool {
	m := make(map[entity.Kind]bool, len(ks))
	for _, k := range ks {
		m[k] = true
	}
	return m
}

// rules is the fixed validation table. The kind check is a symmetric
// membership test, not a positional one: tangent permits line, circle and
// arc in any slot, so a line-line pair validates even though no tangency
// residual exists for it.
var rules = map[Type]rule{
	Coincident:    {2, kinds(entity.KindPoint)},
	Parallel:      {2, kinds(entity.KindLine)},
	Perpendicular: {2, kinds(entity.KindLine)},
	Horizontal:    {1, kinds(entity.KindLine)},
	Vertical:      {1, kinds(entity.KindLine)},
	Distance:      {2, kinds(entity.KindPoint, entity.KindLine)},
	Angle:         {2, kinds(entity.KindLine)},
	Equal:         {2, kinds(entity.KindLine, entity.KindCircle, entity.KindArc)},
	Tangent:       {2, kinds(entity.KindLine, entity.KindCircle, entity.KindArc)},
	Radius:        {1, kinds(entity.KindCircle, entity.KindArc)},
	Concentric:    {2, kinds(entity.KindCircle, entity.KindArc)},
}

// ValidationError reports an arity or kind mismatch at constraint creation.
type ValidationError struct {
	Type    Type
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("constraint %s: %s", e.Type, e.Message)
}

// Constraint is a typed relation over entity references. It is never
// mutated after creation; removal is the only lifecycle event.
type Constraint struct {
	Type     Type
	Entities []entity.Entity
	Value    *float64
}

// New validates and constructs a constraint. Validation failure means the
// constraint must not be stored; the returned error carries the reason.
func New(t Type, entities []entity.Entity, value *float64) (*Constraint, error) {
	r, ok := rules[t]
	if !ok {
		return nil, &ValidationError{Type: t, Message: "no validation rule"}
	}
	if len(entities) != r.arity {
		return nil, &ValidationError{
			Type:    t,
			Message: fmt.Sprintf("requires %d entities, got %d", r.arity, len(entities)),
		}
	}
	for i, e := range entities {
		if e == nil {
			return nil, &ValidationError{Type: t, Message: fmt.Sprintf("entity %d is nil", i)}
		}
		if !r.kinds[e.Kind()] {
			return nil, &ValidationError{
				Type:    t,
				Message: fmt.Sprintf("entity %d has kind %s, not permitted", i, e.Kind()),
			}
		}
	}
	return &Constraint{Type: t, Entities: entities, Value: value}, nil
}

// Float is a convenience for building the optional constraint value.
func Float(v float64) *float64 {
	return &v
}
