package cluster

import (
	"math"

	"github.com/cwbudde/shgo/internal/grid"
)

// DefaultThresholdRatio is the spec default fraction of the cached value
// range used as the basin-merge tolerance.
const DefaultThresholdRatio = 0.1

// Basin is one equivalence class of star-minimum candidates.
type Basin struct {
	Members []Candidate
}

// Best returns the lowest-valued candidate in the basin, which is the
// representative the polisher starts from.
func (b Basin) Best() Candidate {
	best := b.Members[0]
	for _, m := range b.Members[1:] {
		if m.Value < best.Value {
			best = m
		}
	}
	return best
}

// Cluster partitions candidates into basins: two candidates are in the same
// basin iff they are connected by an edge in the 3^N-1 neighborhood graph
// restricted to candidates, where an edge requires
// |val(m)-val(n)| < value_range * thresholdRatio. value_range is taken over
// every value memoized in cache, not just the candidates. The procedure
// never builds an O(K^2) pairwise graph: it unions along the sparse
// 3^N-1 neighbor graph only.
func Cluster(cache *grid.Cache, candidates []Candidate, thresholdRatio float64) []Basin {
	if len(candidates) == 0 {
		return nil
	}

	min, max, ok := cache.ValueRange()
	var valueRange float64
	if !ok {
		valueRange = MinEps
	} else {
		valueRange = math.Max(max-min, MinEps)
	}
	threshold := valueRange * thresholdRatio

	index := make(map[int64]int, len(candidates))
	for i, c := range candidates {
		index[c.Flat] = i
	}

	g := cache.Grid()
	deltas := neighborDeltas(g.Dim())
	uf := newUnionFind(len(candidates))

	neighbor := make([]int, g.Dim())
	for i, c := range candidates {
		for _, d := range deltas {
			for k := range c.Idx {
				neighbor[k] = c.Idx[k] + d[k]
			}
			if !g.Valid(neighbor) {
				continue
			}
			flat := g.FlatIndex(neighbor)
			j, isCandidate := index[flat]
			if !isCandidate || j == i {
				continue
			}
			if math.Abs(c.Value-candidates[j].Value) < threshold {
				uf.union(i, j)
			}
		}
	}

	groups := uf.groups()
	basins := make([]Basin, len(groups))
	for i, members := range groups {
		mc := make([]Candidate, len(members))
		for k, m := range members {
			mc[k] = candidates[m]
		}
		basins[i] = Basin{Members: mc}
	}
	return basins
}
