package polish

import (
	"log/slog"
	"sync"

	"github.com/cwbudde/shgo/internal/cluster"
	"github.com/cwbudde/shgo/internal/grid"
)

// margin holds the per-axis safety bounds a basin representative is pulled
// inside before being handed to the external local optimizer.
type margin struct {
	lo, hi []float64
}

// computeMargin builds the per-axis safety margin eps = max(1e-10, range *
// 1e-6) used to pull a basin representative off the box boundary before
// handing it to the external local optimizer.
func computeMargin(box grid.Box) margin {
	n := box.Dim()
	lo := make([]float64, n)
	hi := make([]float64, n)
	for i := 0; i < n; i++ {
		span := box.Upper[i] - box.Lower[i]
		eps := 1e-10
		if span*1e-6 > eps {
			eps = span * 1e-6
		}
		lo[i] = box.Lower[i] + eps
		hi[i] = box.Upper[i] - eps
	}
	return margin{lo: lo, hi: hi}
}

func pullInside(pos []float64, m margin) []float64 {
	out := make([]float64, len(pos))
	for i, v := range pos {
		switch {
		case v < m.lo[i]:
			out[i] = m.lo[i]
		case v > m.hi[i]:
			out[i] = m.hi[i]
		default:
			out[i] = v
		}
	}
	return out
}

// PolishBasins computes one polished minimum per basin, starting from each
// basin's lowest-valued candidate pulled epsilon inside the box. Basins are
// processed independently and embarrassingly parallel; a failure in one
// basin is logged and contributes no minimum, but never prevents the
// others from completing.
func PolishBasins(cache *grid.Cache, obj Objective, basins []cluster.Basin, solver LocalSolver, maxIters int, workers int) []PolishedPoint {
	if len(basins) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	box := cache.Grid().Box()
	m := computeMargin(box)

	results := make([]*PolishedPoint, len(basins))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, b := range basins {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, b cluster.Basin) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = polishOne(cache, obj, b, solver, maxIters, m)
		}(i, b)
	}
	wg.Wait()

	out := make([]PolishedPoint, 0, len(basins))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func polishOne(cache *grid.Cache, obj Objective, b cluster.Basin, solver LocalSolver, maxIters int, m margin) *PolishedPoint {
	best := b.Best()
	pos := cache.Position(best.Idx)
	x0 := pullInside(pos, m)

	box := cache.Grid().Box()
	result, err := solver.Solve(obj, x0, box.Lower, box.Upper, maxIters)
	if err != nil {
		slog.Warn("polish: basin polishing failed, dropping basin", "starting_value", best.Value, "error", err)
		return nil
	}
	return &result
}
