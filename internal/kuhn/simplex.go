package kuhn

import (
	"fmt"
	"sort"
	"strings"
)

// Simplex identifies one Kuhn simplex by its cell origin and the axis
// permutation that builds the monotone path through it. Two Simplex values
// are semantically equal iff Key() matches, i.e. their vertex index
// multisets are equal.
type Simplex struct {
	CellOrigin []int
	Perm       []int // permutation of {1,...,N}, 1-indexed axis numbers
}

// VertexIndices returns the N+1 ordered grid-index vertices of the simplex:
// idx0, idx0+e_perm[0], idx0+e_perm[0]+e_perm[1], ...
func (s Simplex) VertexIndices() [][]int {
	n := len(s.CellOrigin)
	verts := make([][]int, n+1)
	cur := append([]int{}, s.CellOrigin...)
	verts[0] = append([]int{}, cur...)
	for i, axis := range s.Perm {
		cur[axis-1]++
		verts[i+1] = append([]int{}, cur...)
	}
	return verts
}

// Key returns a canonical string representation of the simplex's vertex
// index multiset, suitable for equality and set-membership checks.
func (s Simplex) Key() string {
	verts := s.VertexIndices()
	strs := make([]string, len(verts))
	for i, v := range verts {
		strs[i] = fmt.Sprint(v)
	}
	sort.Strings(strs)
	return strings.Join(strs, "|")
}

// Enumerator streams every Kuhn simplex of a grid with the given per-axis
// division counts, in the disjoint union over all cells and all
// permutations of S_N. It never materializes the full simplex set.
type Enumerator struct {
	divisions []int
	cell      []int
	perm      *PermIter
	done      bool
}

// NewEnumerator builds a streaming enumerator for the given division
// counts. divisions must all be >= 1 (the grid invariant enforced by
// grid.NewGrid).
func NewEnumerator(divisions []int) *Enumerator {
	n := len(divisions)
	e := &Enumerator{
		divisions: append([]int{}, divisions...),
		cell:      make([]int, n),
		perm:      NewPermIter(n),
	}
	if n == 0 {
		e.done = true
	}
	return e
}

// Next produces the next simplex in enumeration order, or false when
// exhausted.
func (e *Enumerator) Next() (Simplex, bool) {
	if e.done {
		return Simplex{}, false
	}
	for {
		if e.perm.Next() {
			return Simplex{
				CellOrigin: append([]int{}, e.cell...),
				Perm:       append([]int{}, e.perm.Current()...),
			}, true
		}
		if !e.advanceCell() {
			e.done = true
			return Simplex{}, false
		}
		e.perm.Reset()
	}
}

// advanceCell moves to the next cell origin in lexicographic order over
// 0 <= idx0[i] <= divisions[i]-1, returning false once all cells are
// exhausted.
func (e *Enumerator) advanceCell() bool {
	for axis := len(e.cell) - 1; axis >= 0; axis-- {
		e.cell[axis]++
		if e.cell[axis] <= e.divisions[axis]-1 {
			return true
		}
		e.cell[axis] = 0
	}
	return false
}
