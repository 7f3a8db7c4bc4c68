// Package shgo implements a global landscape analyzer for continuous,
// box-bounded, differentiable scalar objectives: rather than stopping at
// the first minimum found, it enumerates every local-minimum basin within
// the domain and returns one representative minimizer per basin.
//
// The engine is Simplicial Homology Global Optimization (SHGO): Kuhn
// triangulation of the box into a simplicial complex, topological
// candidate-minimum detection, basin clustering, and a refinement loop
// that stops once the basin count — the 0th Betti number of the
// sublevel-set complex — stabilizes across increasingly fine grids.
package shgo

import (
	"context"
	"fmt"

	"github.com/cwbudde/shgo/internal/cluster"
	"github.com/cwbudde/shgo/internal/grid"
	"github.com/cwbudde/shgo/internal/polish"
	"github.com/cwbudde/shgo/internal/refine"
)

// Objective is the capability set the engine needs from the function under
// analysis: a scalar value, a gradient, and box bounds. Implementations
// need not be safe for arbitrary concurrent Grad/F calls on the SAME point
// object, but must tolerate concurrent calls at DIFFERENT points, since the
// point cache evaluates distinct indices concurrently.
type Objective interface {
	F(x []float64) float64
	Grad(x []float64) []float64
	LB() []float64
	UB() []float64
}

// MinimumPoint is one basin's representative minimizer after local
// polishing.
type MinimumPoint struct {
	Minimizer []float64
	Objective float64
}

// Result is the outcome of Analyze.
type Result struct {
	LocalMinima     []MinimumPoint // sorted by Objective ascending
	NumBasins       int
	Iterations      int
	Converged       bool
	EvaluationCount int64
}

// Analyze runs the engine to completion with a background context. See
// AnalyzeContext for the cancellable variant.
func Analyze(obj Objective, opts ...Option) (Result, error) {
	return AnalyzeContext(context.Background(), obj, opts...)
}

// AnalyzeContext is the cancellable form of the engine's public API:
// analyze(objective) -> Result, with named options. ctx is checked for
// cancellation between refinement iterations only; once the refinement
// loop has finished, basin polishing runs to completion without consulting
// ctx. An in-flight objective evaluation always runs to completion.
func AnalyzeContext(ctx context.Context, obj Objective, opts ...Option) (Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := validate(obj, o); err != nil {
		return Result{}, err
	}

	box, err := grid.NewBox(obj.LB(), obj.UB())
	if err != nil {
		return Result{}, &InvalidInputError{Reason: err.Error()}
	}

	refineOpts := refine.Options{
		NDivInitial:        o.NDivInitial,
		NDivMax:            o.NDivMax,
		StabilityCount:     o.StabilityCount,
		ThresholdRatio:     o.ThresholdRatio,
		RelTolStar:         o.RelTolStar,
		UseGradientPruning: o.UseGradientPruning,
		Workers:            o.Workers,
		Progress:           progressAdapter(o),
	}

	rr, err := refine.Run(ctx, box, obj, refineOpts)
	if err != nil {
		partial := assembleResult(rr, nil)
		if ctx.Err() != nil {
			return partial, &CancelledError{}
		}
		return partial, err
	}

	solver := o.LocalSolver
	if solver == nil {
		solver = polish.NewGonumSolver()
	}

	workers := o.Workers
	if workers < 1 {
		workers = cluster.DefaultWorkers(int64(len(rr.Final.Basins)))
	}

	polished := polish.PolishBasins(rr.Final.Cache, obj, rr.Final.Basins, solver, o.LocalMaxIters, workers)
	deduped := polish.Deduplicate(polished, polish.DedupOptions{
		DistanceTolerance: o.MinDistanceTolerance,
		ValueGate:         o.ValueGateDedup,
	})

	return assembleResult(rr, deduped), nil
}

func assembleResult(rr refine.Result, polished []polish.PolishedPoint) Result {
	minima := make([]MinimumPoint, len(polished))
	for i, p := range polished {
		minima[i] = MinimumPoint{Minimizer: p.X, Objective: p.F}
	}
	return Result{
		LocalMinima:     minima,
		NumBasins:       len(rr.Final.Basins),
		Iterations:      rr.Iterations,
		Converged:       rr.Converged,
		EvaluationCount: rr.TotalEvaluations,
	}
}

func progressAdapter(o Options) func(refine.IterationReport) {
	if o.Progress == nil {
		return nil
	}
	iteration := 0
	return func(r refine.IterationReport) {
		iteration++
		o.Progress(IterationProgress{
			Iteration:       iteration,
			Divisions:       r.K,
			NumBasins:       len(r.Basins),
			EvaluationCount: r.EvaluationCount,
		})
	}
}

func validate(obj Objective, o Options) error {
	if obj == nil {
		return &InvalidInputError{Reason: "objective is nil"}
	}
	lb, ub := obj.LB(), obj.UB()
	if len(lb) == 0 {
		return &InvalidInputError{Reason: "bounds are empty"}
	}
	if len(lb) != len(ub) {
		return &InvalidInputError{Reason: fmt.Sprintf("lb/ub dimension mismatch: %d vs %d", len(lb), len(ub))}
	}
	for i := range lb {
		if !(lb[i] < ub[i]) {
			return &InvalidInputError{Reason: fmt.Sprintf("axis %d: lb (%g) must be < ub (%g)", i, lb[i], ub[i])}
		}
	}
	if o.NDivInitial < 1 {
		return &InvalidInputError{Reason: "n_div_initial must be >= 1"}
	}
	if o.NDivMax < o.NDivInitial {
		return &InvalidInputError{Reason: "n_div_max must be >= n_div_initial"}
	}
	if o.StabilityCount < 1 {
		return &InvalidInputError{Reason: "stability_count must be >= 1"}
	}
	if o.ThresholdRatio < 0 {
		return &InvalidInputError{Reason: "threshold_ratio must be >= 0"}
	}
	if o.MinDistanceTolerance < 0 {
		return &InvalidInputError{Reason: "min_distance_tolerance must be >= 0"}
	}
	if o.LocalMaxIters < 1 {
		return &InvalidInputError{Reason: "local_maxiters must be >= 1"}
	}
	return nil
}
