// Package polish implements the local-optimizer wrapper and the
// deduplication pass that convert topological basins into the final
// minimum points of a Result.
package polish

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Objective is the minimal capability LocalSolver needs: a scalar value
// and a gradient at an arbitrary continuous point (not necessarily a grid
// vertex).
type Objective interface {
	F(x []float64) float64
	Grad(x []float64) []float64
}

// PolishedPoint is the outcome of one local-solver invocation.
type PolishedPoint struct {
	X []float64
	F float64
}

// LocalSolver is the external local-optimization collaborator: a black box
// exposing solve(x0, lb, ub, max_iters) -> (x*, f*). The polisher never
// re-enters the Kuhn or clustering stages once it has called this.
type LocalSolver interface {
	Solve(obj Objective, x0, lb, ub []float64, maxIters int) (PolishedPoint, error)
}

// Failure reports that every fallback in a LocalSolver gave up, including
// the raw starting point (which only happens if the starting point itself
// is non-finite, since the raw fallback otherwise always succeeds).
type Failure struct {
	Reason string
}

func (e *Failure) Error() string { return "polish: local solver failed: " + e.Reason }

// GonumSolver is the default LocalSolver, backed by gonum/optimize. Box
// bounds are enforced by clamping every evaluated point into [lb, ub]
// before calling the objective (a simple projected-point technique; BFGS
// and friends have no native box-constraint support in gonum/optimize).
// Both methods are run from x0 in a fixed order, quasi-Newton (BFGS, whose
// internal line search covers the line-search step) then derivative-free
// (Nelder-Mead), and the lowest finite result is kept, so Nelder-Mead
// covers a failed BFGS run. If neither improves on the raw, clamped
// starting point, that point is returned.
type GonumSolver struct{}

// NewGonumSolver constructs the default solver.
func NewGonumSolver() *GonumSolver { return &GonumSolver{} }

func clampInto(x, lb, ub []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		switch {
		case v < lb[i]:
			out[i] = lb[i]
		case v > ub[i]:
			out[i] = ub[i]
		default:
			out[i] = v
		}
	}
	return out
}

// Solve implements LocalSolver.
func (s *GonumSolver) Solve(obj Objective, x0, lb, ub []float64, maxIters int) (PolishedPoint, error) {
	clamp := func(x []float64) []float64 { return clampInto(x, lb, ub) }

	x0c := clamp(x0)
	f0 := obj.F(x0c)
	if math.IsNaN(f0) || math.IsInf(f0, 0) {
		return PolishedPoint{}, &Failure{Reason: "starting point is non-finite"}
	}
	best := PolishedPoint{X: x0c, F: f0}

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return obj.F(clamp(x)) },
		Grad: func(grad, x []float64) {
			copy(grad, obj.Grad(clamp(x)))
		},
	}
	settings := &optimize.Settings{MajorIterations: maxIters}

	for _, method := range []optimize.Method{&optimize.BFGS{}, &optimize.NelderMead{}} {
		result, err := optimize.Minimize(problem, append([]float64{}, x0...), settings, method)
		if err != nil || result == nil {
			continue
		}
		x := clamp(result.X)
		f := obj.F(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		if f < best.F {
			best = PolishedPoint{X: x, F: f}
		}
	}

	return best, nil
}
