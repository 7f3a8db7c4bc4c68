// Package refine implements the outer Betti-stability refinement loop: it
// re-runs the grid/cache/Kuhn/prune/cluster pipeline on progressively finer
// grids until the basin count stabilizes.
package refine

import (
	"context"
	"log/slog"

	"github.com/cwbudde/shgo/internal/cluster"
	"github.com/cwbudde/shgo/internal/grid"
	"github.com/cwbudde/shgo/internal/kuhn"
	"github.com/cwbudde/shgo/internal/prune"
)

// Options configures one refinement run. It mirrors the subset of the
// public shgo.Options the core pipeline needs; the root package is
// responsible for translating its own Options into this struct.
type Options struct {
	NDivInitial       int
	NDivMax           int
	StabilityCount    int
	ThresholdRatio    float64
	RelTolStar        float64
	UseGradientPruning bool
	Workers           int
	// Progress, if non-nil, is called once per completed iteration. It
	// must not block or retain the slice arguments.
	Progress func(iteration IterationReport)
}

// IterationReport summarizes one completed refinement iteration, used both
// for the Progress callback and as the Driver's final return value.
type IterationReport struct {
	K              int
	Cache          *grid.Cache
	Basins         []cluster.Basin
	EvaluationCount int64
}

// Result is the outcome of a full refinement run.
type Result struct {
	Final           IterationReport
	Iterations      int
	Converged       bool
	TotalEvaluations int64 // summed across every iteration's (non-reused) cache
}

// Run iterates the pipeline on grids of increasing resolution k =
// NDivInitial, NDivInitial+2, ... until the basin count is stable for
// StabilityCount consecutive iterations (CONVERGED), k would exceed
// NDivMax (EXHAUSTED), or ctx is cancelled (partial result, ctx.Err()
// returned). The final basins and cache are returned regardless of which
// terminal state was reached; Converged reports which one it was.
func Run(ctx context.Context, box grid.Box, eval grid.Evaluator, opts Options) (Result, error) {
	k := opts.NDivInitial
	var prevCount, streak int
	var last IterationReport
	iterations := 0
	var totalEvals int64

	for {
		select {
		case <-ctx.Done():
			return Result{Final: last, Iterations: iterations, Converged: false, TotalEvaluations: totalEvals}, ctx.Err()
		default:
		}

		report, err := runOne(box, eval, k, opts)
		if err != nil {
			return Result{Final: last, Iterations: iterations, Converged: false, TotalEvaluations: totalEvals}, err
		}
		iterations++
		totalEvals += report.EvaluationCount
		last = report
		if opts.Progress != nil {
			opts.Progress(report)
		}

		count := len(report.Basins)
		if count == prevCount && count > 0 {
			streak++
		} else {
			streak = 0
		}
		slog.Debug("refine: iteration complete", "k", k, "basins", count, "streak", streak)

		if streak >= opts.StabilityCount {
			return Result{Final: last, Iterations: iterations, Converged: true, TotalEvaluations: totalEvals}, nil
		}

		prevCount = count
		nextK := k + 2
		if nextK > opts.NDivMax {
			return Result{Final: last, Iterations: iterations, Converged: false, TotalEvaluations: totalEvals}, nil
		}
		k = nextK
	}
}

// runOne builds a fresh grid and cache at resolution k and runs star
// detection + basin clustering, optionally narrowed by gradient-hull
// pruning.
func runOne(box grid.Box, eval grid.Evaluator, k int, opts Options) (IterationReport, error) {
	divisions := make([]int, box.Dim())
	for i := range divisions {
		divisions[i] = k
	}
	g, err := grid.NewGrid(box, divisions)
	if err != nil {
		return IterationReport{}, err
	}
	cache := grid.NewCache(g, eval)

	workers := opts.Workers
	if workers < 1 {
		workers = cluster.DefaultWorkers(g.NumVertices())
	}

	var candidates []cluster.Candidate
	if opts.UseGradientPruning {
		retained := prunedVertexFlats(cache, divisions)
		candidates = cluster.DetectSubset(cache, opts.RelTolStar, retained, workers)
	} else {
		candidates = cluster.Detect(cache, opts.RelTolStar, workers)
	}

	basins := cluster.Cluster(cache, candidates, opts.ThresholdRatio)

	return IterationReport{
		K:               k,
		Cache:           cache,
		Basins:          basins,
		EvaluationCount: cache.EvaluationCount(),
	}, nil
}

// prunedVertexFlats enumerates every Kuhn simplex of the grid, keeps those
// whose gradient hull contains zero, and returns the flat-index set of
// vertices touched by any surviving simplex. This is a performance-only
// narrowing of the star-detection scan, never relied upon for correctness.
func prunedVertexFlats(cache *grid.Cache, divisions []int) []int64 {
	g := cache.Grid()
	enum := kuhn.NewEnumerator(divisions)
	retained := make(map[int64]struct{})
	for {
		s, ok := enum.Next()
		if !ok {
			break
		}
		if !prune.KeepSimplex(cache, s, prune.DefaultInflation) {
			continue
		}
		for _, v := range s.VertexIndices() {
			retained[g.FlatIndex(v)] = struct{}{}
		}
	}
	flats := make([]int64, 0, len(retained))
	for f := range retained {
		flats = append(flats, f)
	}
	return flats
}
