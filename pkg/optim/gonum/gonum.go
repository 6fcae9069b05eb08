// Package gonum implements the optim.Minimizer interface using the
// gonum.org/v1/gonum/optimize library. The Nelder-Mead simplex method is
// used because constraint residuals contain abs/sqrt terms that are not
// everywhere differentiable.
package gonum

import (
	"gonum.org/v1/gonum/optimize"

	"github.com/chazu/kerf/pkg/optim"
)

// Compile-time interface check.
var _ optim.Minimizer = (*NelderMead)(nil)

// defaultMaxIterations bounds a run when the caller does not supply a budget.
const defaultMaxIterations = 10000

// convergePatience is the window, in iterations, over which the simplex
// function values must stop improving before the run is declared converged.
const convergePatience = 100

// NelderMead minimizes with the gonum derivative-free simplex method.
type NelderMead struct{}

// New returns a new NelderMead minimizer.
func New() *NelderMead {
	return &NelderMead{}
}

// Minimize runs Nelder-Mead from x0. The simplex convergence threshold is
// set well below opts.Tolerance so that committed coordinates are accurate
// to roughly the square root of the objective tolerance.
func (n *NelderMead) Minimize(objective func([]float64) float64, x0 []float64, opts optim.Options) (optim.Result, error) {
	absTol := 1e-14
	if opts.Tolerance > 0 {
		absTol = opts.Tolerance * 1e-8
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   absTol,
			Iterations: convergePatience,
		},
		MajorIterations: maxIter,
	}

	guess := make([]float64, len(x0))
	copy(guess, x0)

	res, err := optimize.Minimize(problem, guess, settings, &optimize.NelderMead{})
	if err != nil {
		return optim.Result{}, err
	}

	converged := res.Status != optimize.IterationLimit &&
		res.Status != optimize.RuntimeLimit &&
		res.Status != optimize.Failure

	return optim.Result{
		X:         res.X,
		Objective: res.F,
		Converged: converged,
	}, nil
}
