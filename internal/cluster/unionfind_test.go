package cluster

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

// partitionKey turns a set of groups into a canonical, order-independent
// representation: each group's members sorted, then groups sorted by their
// first (smallest) member.
func partitionKey(groups [][]int) [][]int {
	out := make([][]int, len(groups))
	for i, g := range groups {
		out[i] = append([]int{}, g...)
		sort.Ints(out[i])
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// TestUnionFind_PartitionInvariantUnderUnionOrder proves that the same set
// of union operations, applied in different orders, produces the same
// partition into equivalence classes — the union-find output does not
// depend on the order edges are discovered, only on which edges exist.
func TestUnionFind_PartitionInvariantUnderUnionOrder(t *testing.T) {
	n := 8
	pairs := [][2]int{{0, 1}, {1, 2}, {3, 4}, {5, 6}, {6, 7}, {2, 3}}

	orders := [][]int{
		{0, 1, 2, 3, 4, 5},
		{5, 4, 3, 2, 1, 0},
		{2, 0, 4, 1, 5, 3},
		{3, 1, 5, 0, 2, 4},
	}

	var want [][]int
	for oi, order := range orders {
		uf := newUnionFind(n)
		for _, pi := range order {
			uf.union(pairs[pi][0], pairs[pi][1])
		}
		got := partitionKey(uf.groups())
		if oi == 0 {
			want = got
			continue
		}
		assert.Equal(t, want, got, "order=%v", order)
	}
}

func TestUnionFind_SingletonsAreOwnGroups(t *testing.T) {
	uf := newUnionFind(4)
	groups := uf.groups()
	assert.Len(t, groups, 4)
	for i, g := range groups {
		assert.Equal(t, []int{i}, g)
	}
}

func TestUnionFind_UnionMergesGroups(t *testing.T) {
	uf := newUnionFind(5)
	uf.union(0, 1)
	uf.union(1, 2)
	uf.union(3, 4)

	assert.Equal(t, uf.find(0), uf.find(2))
	assert.Equal(t, uf.find(3), uf.find(4))
	assert.NotEqual(t, uf.find(0), uf.find(3))

	groups := uf.groups()
	require := assert.New(t)
	require.Len(groups, 2)

	var sizes []int
	for _, g := range groups {
		sizes = append(sizes, len(g))
	}
	assert.ElementsMatch(t, []int{3, 2}, sizes)
}

func TestUnionFind_UnionIsIdempotent(t *testing.T) {
	uf := newUnionFind(3)
	uf.union(0, 1)
	uf.union(1, 0)
	uf.union(0, 1)
	assert.Len(t, uf.groups(), 2)
}

func TestUnionFind_GroupsOrderedByFirstSeenRoot(t *testing.T) {
	uf := newUnionFind(6)
	uf.union(4, 1)
	uf.union(5, 2)

	groups := uf.groups()
	// Walking i = 0..5: 0 is its own root first; 1 joins whatever root 4
	// resolves to but is discovered at i=1 before i=4; likewise 2/5.
	// The group order reflects first index encountered per root, not the
	// union call order.
	assert.Len(t, groups, 4)
	firstMembers := make([]int, len(groups))
	for i, g := range groups {
		firstMembers[i] = g[0]
	}
	assert.Equal(t, []int{0, 1, 2, 3}, firstMembers)
}

func TestUnionFind_FindCompressesPath(t *testing.T) {
	uf := newUnionFind(4)
	uf.union(0, 1)
	uf.union(1, 2)
	uf.union(2, 3)

	root := uf.find(3)
	for i := 0; i < 4; i++ {
		assert.Equal(t, root, uf.find(i))
	}
}
