// Package optim defines the abstract minimizer contract used by the
// constraint solver. Implementations provide derivative-free or
// quasi-Newton minimization behind this interface, so the numerical
// backend can be swapped without changing the solver.
package optim

// Options configures a minimization run.
type Options struct {
	// Tolerance is the convergence threshold on the objective value.
	// Zero keeps the backend default.
	Tolerance float64

	// MaxIterations bounds the number of major iterations. Exhausting the
	// budget is reported as non-convergence. Zero keeps the backend default.
	MaxIterations int
}

// Result is the outcome of a minimization.
type Result struct {
	// X is the best parameter vector found.
	X []float64

	// Objective is the objective value at X.
	Objective float64

	// Converged reports whether the backend terminated because its
	// convergence criterion was met, as opposed to running out of budget.
	Converged bool
}

// Minimizer minimizes a scalar objective over a parameter vector starting
// from an initial guess. The objective may return +Inf to mark a region
// infeasible; implementations must tolerate non-smooth objectives.
type Minimizer interface {
	Minimize(objective func([]float64) float64, x0 []float64, opts Options) (Result, error)
}
