package cluster

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/shgo/internal/grid"
)

// basinPartitionKey canonicalizes Cluster's output into an order-independent
// shape: each basin's member flat indices sorted, then basins sorted by
// their smallest member, so two runs that discover the same equivalence
// classes in a different order compare equal.
func basinPartitionKey(basins []Basin) [][]int64 {
	out := make([][]int64, len(basins))
	for i, b := range basins {
		flats := make([]int64, len(b.Members))
		for j, m := range b.Members {
			flats[j] = m.Flat
		}
		sort.Slice(flats, func(a, c int) bool { return flats[a] < flats[c] })
		out[i] = flats
	}
	sort.Slice(out, func(a, c int) bool { return out[a][0] < out[c][0] })
	return out
}

type stepEval struct{ vals map[int]float64 }

func (s stepEval) F(x []float64) float64 {
	return s.vals[int(x[0]+0.5)]
}

func (s stepEval) Grad(x []float64) []float64 {
	return []float64{0}
}

func TestBasin_Best(t *testing.T) {
	b := Basin{Members: []Candidate{
		{Idx: []int{0}, Value: 3},
		{Idx: []int{1}, Value: -1},
		{Idx: []int{2}, Value: 2},
	}}
	assert.Equal(t, -1.0, b.Best().Value)
}

func TestCluster_EmptyCandidates(t *testing.T) {
	box, err := grid.NewBox([]float64{0}, []float64{4})
	require.NoError(t, err)
	g, err := grid.NewGrid(box, []int{4})
	require.NoError(t, err)
	cache := grid.NewCache(g, stepEval{vals: map[int]float64{}})
	assert.Nil(t, Cluster(cache, nil, DefaultThresholdRatio))
}

func TestCluster_MergesAdjacentCandidatesWithinThreshold(t *testing.T) {
	// One-dimensional grid with vertices at integer positions 0..4. Two
	// candidates at indices 0 and 1 are close in value (merge expected);
	// two more at indices 3 and 4 are far apart in value (no merge).
	vals := map[int]float64{0: 0, 1: 0.05, 2: 10, 3: 10.05, 4: 20}
	box, err := grid.NewBox([]float64{0}, []float64{4})
	require.NoError(t, err)
	g, err := grid.NewGrid(box, []int{4})
	require.NoError(t, err)
	cache := grid.NewCache(g, stepEval{vals: vals})

	candIdx := []int{0, 1, 3, 4}
	candidates := make([]Candidate, len(candIdx))
	for i, idx := range candIdx {
		cache.Value([]int{idx}) // populate the cache's value range
		candidates[i] = Candidate{
			Idx:   []int{idx},
			Flat:  g.FlatIndex([]int{idx}),
			Value: vals[idx],
		}
	}

	basins := Cluster(cache, candidates, DefaultThresholdRatio)
	require.Len(t, basins, 3)

	var sizes []int
	for _, b := range basins {
		sizes = append(sizes, len(b.Members))
	}
	assert.ElementsMatch(t, []int{2, 1, 1}, sizes)

	for _, b := range basins {
		if len(b.Members) == 2 {
			assert.Equal(t, 0.0, b.Best().Value)
		}
	}
}

// TestCluster_InvariantUnderCandidateOrder proves the §8 property that
// clustering does not depend on the order candidates are supplied: since
// the neighbor graph is built purely from grid adjacency and value
// thresholds, permuting the input must never change which candidates end
// up in the same basin.
func TestCluster_InvariantUnderCandidateOrder(t *testing.T) {
	vals := map[int]float64{0: 0, 1: 0.05, 2: 10, 3: 10.05, 4: 20, 5: 20.02}
	box, err := grid.NewBox([]float64{0}, []float64{5})
	require.NoError(t, err)
	g, err := grid.NewGrid(box, []int{5})
	require.NoError(t, err)
	cache := grid.NewCache(g, stepEval{vals: vals})

	candIdx := []int{0, 1, 2, 3, 4, 5}
	base := make([]Candidate, len(candIdx))
	for i, idx := range candIdx {
		cache.Value([]int{idx})
		base[i] = Candidate{Idx: []int{idx}, Flat: g.FlatIndex([]int{idx}), Value: vals[idx]}
	}

	orders := [][]int{
		{0, 1, 2, 3, 4, 5},
		{5, 4, 3, 2, 1, 0},
		{2, 4, 0, 5, 1, 3},
		{3, 0, 5, 1, 4, 2},
	}

	var want [][]int64
	for oi, order := range orders {
		candidates := make([]Candidate, len(order))
		for i, idx := range order {
			candidates[i] = base[idx]
		}
		got := basinPartitionKey(Cluster(cache, candidates, DefaultThresholdRatio))
		if oi == 0 {
			want = got
			continue
		}
		assert.Equal(t, want, got, "order=%v", order)
	}
}

func TestCluster_NonAdjacentCandidatesNeverMerge(t *testing.T) {
	// Two candidates with nearly identical value but separated by more
	// than one grid step never share an edge in the neighbor graph.
	vals := map[int]float64{0: 0, 1: 5, 2: 0.001, 3: 5, 4: 0}
	box, err := grid.NewBox([]float64{0}, []float64{4})
	require.NoError(t, err)
	g, err := grid.NewGrid(box, []int{4})
	require.NoError(t, err)
	cache := grid.NewCache(g, stepEval{vals: vals})

	candIdx := []int{0, 2, 4}
	candidates := make([]Candidate, len(candIdx))
	for i, idx := range candIdx {
		cache.Value([]int{idx})
		candidates[i] = Candidate{Idx: []int{idx}, Flat: g.FlatIndex([]int{idx}), Value: vals[idx]}
	}

	basins := Cluster(cache, candidates, DefaultThresholdRatio)
	assert.Len(t, basins, 3)
}
