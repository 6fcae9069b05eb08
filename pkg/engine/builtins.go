package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/kerf/pkg/constraint"
	"github.com/chazu/kerf/pkg/sketch"
)

// ---------------------------------------------------------------------------
// Sexp wrapper types
// ---------------------------------------------------------------------------

// sexpVec3 wraps a 3D vector for plane specifications.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string. Returns the
// keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. Keywords
// are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp. Preprocessed keywords are
// accepted with their prefix stripped, so (constrain :horizontal "L1")
// and (constrain "horizontal" "L1") are equivalent.
func toString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// floatArgs extracts exactly n numeric arguments for the named builtin.
func floatArgs(name string, args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires exactly %d arguments, got %d", name, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", name, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all kerf DSL builtins into a zygomys
// environment. The builtins operate on the provided manager, populating it
// during evaluation. Entity builtins return the allocated id as a string so
// scripts can bind and pass it to constrain and delete.
//
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, mgr *sketch.Manager) {

	// -----------------------------------------------------------------------
	// (sketch :origin (vec3 0 0 0) :normal (vec3 0 0 1) :x (vec3 1 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("sketch", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		origin := v3.Vec{}
		normal := v3.Vec{Z: 1}

		if v, ok := pa.kw["origin"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sketch: origin: %w", err)
			}
			origin = vec
		}
		if v, ok := pa.kw["normal"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sketch: normal: %w", err)
			}
			normal = vec
		}

		var plane sketch.Plane
		var err error
		if v, ok := pa.kw["x"]; ok {
			xAxis, xerr := toVec3(v)
			if xerr != nil {
				return zygo.SexpNull, fmt.Errorf("sketch: x: %w", xerr)
			}
			plane, err = sketch.NewPlane(origin, normal, xAxis)
		} else {
			plane, err = sketch.PlaneFor(origin, normal)
		}
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sketch: %w", err)
		}

		mgr.StartSketch(&plane)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := floatArgs("vec3", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: v3.Vec{X: f[0], Y: f[1], Z: f[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (point 10 20)
	// -----------------------------------------------------------------------
	env.AddFunction("point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := floatArgs("point", args, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpStr{S: mgr.AddPoint(f[0], f[1])}, nil
	})

	// -----------------------------------------------------------------------
	// (line 0 0 100 0)
	// -----------------------------------------------------------------------
	env.AddFunction("line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := floatArgs("line", args, 4)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpStr{S: mgr.AddLine(f[0], f[1], f[2], f[3])}, nil
	})

	// -----------------------------------------------------------------------
	// (circle 50 50 25)
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := floatArgs("circle", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpStr{S: mgr.AddCircle(f[0], f[1], f[2])}, nil
	})

	// -----------------------------------------------------------------------
	// (arc 0 0 10 0 1.5708)   ; center, radius, start and end angle (radians)
	// -----------------------------------------------------------------------
	env.AddFunction("arc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := floatArgs("arc", args, 5)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpStr{S: mgr.AddArc(f[0], f[1], f[2], f[3], f[4])}, nil
	})

	// -----------------------------------------------------------------------
	// (spline 3 [[0 0] [10 20] [30 20] [40 0]])
	// -----------------------------------------------------------------------
	env.AddFunction("spline", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("spline requires a degree and a control point list, got %d arguments", len(args))
		}
		degree, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("spline: degree: %w", err)
		}

		items, err := sexpListToSlice(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("spline: control points: %w", err)
		}
		points := make([][2]float64, len(items))
		for i, item := range items {
			pair, err := sexpListToSlice(item)
			if err != nil || len(pair) != 2 {
				return zygo.SexpNull, fmt.Errorf("spline: control point %d: expected [x y] pair", i+1)
			}
			x, err := toFloat64(pair[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("spline: control point %d: %w", i+1, err)
			}
			y, err := toFloat64(pair[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("spline: control point %d: %w", i+1, err)
			}
			points[i] = [2]float64{x, y}
		}

		id, err := mgr.AddSpline(points, int(degree))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("spline: %w", err)
		}
		return &zygo.SexpStr{S: id}, nil
	})

	// -----------------------------------------------------------------------
	// (constrain :horizontal l1)
	// (constrain :distance p1 p2 :value 50)
	// -----------------------------------------------------------------------
	env.AddFunction("constrain", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("constrain requires a constraint type and at least one entity id")
		}

		// The type comes first, as a keyword or a plain string. It must be
		// taken before keyword parsing, which would otherwise pair a
		// leading :horizontal with the first entity id.
		typeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("constrain: type: %w", err)
		}
		ct, err := constraint.ParseType(typeName)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("constrain: %w", err)
		}

		pa := parseArgs(args[1:])
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("constrain requires at least one entity id")
		}

		ids := make([]string, len(pa.positional))
		for i, p := range pa.positional {
			id, err := toString(p)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("constrain: entity %d: %w", i+1, err)
			}
			ids[i] = id
		}

		var value *float64
		if v, ok := pa.kw["value"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("constrain: value: %w", err)
			}
			value = &f
		}

		if err := mgr.AddConstraint(ct, ids, value); err != nil {
			return zygo.SexpNull, fmt.Errorf("constrain: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (solve)   ; returns true on convergence, false otherwise
	// -----------------------------------------------------------------------
	env.AddFunction("solve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := mgr.SolveConstraints(); err != nil {
			return &zygo.SexpBool{Val: false}, nil
		}
		return &zygo.SexpBool{Val: true}, nil
	})

	// -----------------------------------------------------------------------
	// (delete l1)
	// -----------------------------------------------------------------------
	env.AddFunction("delete", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("delete requires exactly 1 argument, got %d", len(args))
		}
		id, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("delete: %w", err)
		}
		if err := mgr.DeleteEntity(id); err != nil {
			return zygo.SexpNull, fmt.Errorf("delete: %w", err)
		}
		return zygo.SexpNull, nil
	})
}
