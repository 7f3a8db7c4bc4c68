package cluster

import (
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/cwbudde/shgo/internal/grid"
)

// MinEps is the floor that prevents zero-tolerance degeneracy on flat
// landscapes, shared by both the star-minimum comparison and the basin
// merge threshold.
const MinEps = 1e-12

// Candidate is a grid vertex whose value is <= every one of its 3^N-1
// axis-and-diagonal neighbors within tolerance.
type Candidate struct {
	Idx   []int
	Flat  int64
	Value float64
}

// Detect scans the cache for star-minimum candidates using relTol as the
// relative comparison tolerance (spec default 1e-10). workers controls the
// degree of parallelism; the detector only reads the cache, so disjoint
// flat-index shards may be scanned concurrently. workers <= 1 runs serially.
// The returned candidates are sorted by flat index, i.e. lexicographic
// index order, regardless of how many workers were used.
func Detect(cache *grid.Cache, relTol float64, workers int) []Candidate {
	g := cache.Grid()
	deltas := neighborDeltas(g.Dim())
	total := g.NumVertices()

	if workers < 1 {
		workers = 1
	}
	if int64(workers) > total {
		workers = int(total)
	}
	if workers <= 1 {
		return scanRange(cache, deltas, relTol, 0, total)
	}

	chunk := (total + int64(workers) - 1) / int64(workers)
	results := make([][]Candidate, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := int64(w) * chunk
		end := start + chunk
		if end > total {
			end = total
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(w int, start, end int64) {
			defer wg.Done()
			results[w] = scanRange(cache, deltas, relTol, start, end)
		}(w, start, end)
	}
	wg.Wait()

	var out []Candidate
	for _, r := range results {
		out = append(out, r...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Flat < out[j].Flat })
	return out
}

// DefaultWorkers returns a sensible worker count for Detect: the number of
// CPUs, capped so tiny grids don't oversubscribe.
func DefaultWorkers(numVertices int64) int {
	n := runtime.GOMAXPROCS(0)
	if int64(n) > numVertices {
		n = int(numVertices)
	}
	if n < 1 {
		n = 1
	}
	return n
}

// DetectSubset runs star-minimum detection restricted to the given flat
// indices, e.g. the vertex set surviving gradient-hull pruning. Results are
// sorted by flat index.
func DetectSubset(cache *grid.Cache, relTol float64, flats []int64, workers int) []Candidate {
	if len(flats) == 0 {
		return nil
	}
	sorted := append([]int64{}, flats...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if workers < 1 {
		workers = 1
	}
	if workers > len(sorted) {
		workers = len(sorted)
	}

	g := cache.Grid()
	deltas := neighborDeltas(g.Dim())
	chunk := (len(sorted) + workers - 1) / workers
	results := make([][]Candidate, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(sorted) {
			end = len(sorted)
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(w int, flats []int64) {
			defer wg.Done()
			results[w] = scanFlats(cache, deltas, relTol, flats)
		}(w, sorted[start:end])
	}
	wg.Wait()

	var out []Candidate
	for _, r := range results {
		out = append(out, r...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Flat < out[j].Flat })
	return out
}

func scanFlats(cache *grid.Cache, deltas [][]int, relTol float64, flats []int64) []Candidate {
	g := cache.Grid()
	var out []Candidate
	neighbor := make([]int, g.Dim())
	for _, flat := range flats {
		idx := g.IndexFromFlat(flat)
		if c, ok := starCheck(cache, deltas, relTol, idx, flat, neighbor); ok {
			out = append(out, c)
		}
	}
	return out
}

func scanRange(cache *grid.Cache, deltas [][]int, relTol float64, start, end int64) []Candidate {
	g := cache.Grid()
	var out []Candidate
	neighbor := make([]int, g.Dim())
	for flat := start; flat < end; flat++ {
		idx := g.IndexFromFlat(flat)
		if c, ok := starCheck(cache, deltas, relTol, idx, flat, neighbor); ok {
			out = append(out, c)
		}
	}
	return out
}

// starCheck tests whether idx (with the given flat key and cached value)
// is a star-minimum candidate. neighbor is caller-owned scratch space of
// length len(idx), reused across calls to avoid per-vertex allocation.
func starCheck(cache *grid.Cache, deltas [][]int, relTol float64, idx []int, flat int64, neighbor []int) (Candidate, bool) {
	val := cache.Value(idx)
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return Candidate{}, false
	}
	tol := math.Max(MinEps, math.Abs(val)*relTol)
	for _, d := range deltas {
		for i := range idx {
			neighbor[i] = idx[i] + d[i]
		}
		if cache.Value(neighbor) < val-tol {
			return Candidate{}, false
		}
	}
	return Candidate{Idx: append([]int{}, idx...), Flat: flat, Value: val}, true
}

// neighborDeltas returns every delta in {-1,0,+1}^n except the all-zero
// vector: the 3^n - 1 star neighborhood.
func neighborDeltas(n int) [][]int {
	if n == 0 {
		return nil
	}
	total := 1
	for i := 0; i < n; i++ {
		total *= 3
	}
	deltas := make([][]int, 0, total-1)
	d := make([]int, n)
	for i := range d {
		d[i] = -1
	}
	for {
		allZero := true
		for _, v := range d {
			if v != 0 {
				allZero = false
				break
			}
		}
		if !allZero {
			deltas = append(deltas, append([]int{}, d...))
		}
		axis := n - 1
		for axis >= 0 {
			d[axis]++
			if d[axis] <= 1 {
				break
			}
			d[axis] = -1
			axis--
		}
		if axis < 0 {
			break
		}
	}
	return deltas
}
