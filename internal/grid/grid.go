// Package grid implements the uniform rectilinear lattice over a box-bounded
// domain and the memoized, concurrency-safe evaluation cache built on top of
// it.
package grid

import "fmt"

// Box is an immutable N-dimensional axis-aligned domain, lb[i] < ub[i] for
// every axis.
type Box struct {
	Lower []float64
	Upper []float64
}

// NewBox validates and constructs a Box.
func NewBox(lower, upper []float64) (Box, error) {
	if len(lower) == 0 || len(lower) != len(upper) {
		return Box{}, fmt.Errorf("grid: lower/upper bound length mismatch (%d vs %d)", len(lower), len(upper))
	}
	for i := range lower {
		if !(lower[i] < upper[i]) {
			return Box{}, fmt.Errorf("grid: bound %d is empty or inverted (lb=%g, ub=%g)", i, lower[i], upper[i])
		}
	}
	return Box{Lower: append([]float64{}, lower...), Upper: append([]float64{}, upper...)}, nil
}

// Dim returns the number of dimensions N.
func (b Box) Dim() int { return len(b.Lower) }

// Grid is a uniform lattice over a Box with k[i] divisions per axis, giving
// k[i]+1 vertices along axis i. Grids are immutable once built.
type Grid struct {
	box       Box
	divisions []int
	strides   []int64 // mixed-radix strides for FlatIndex, strides[N-1] = 1
	total     int64
}

// NewGrid builds a Grid for the given box and per-axis division counts.
// Every division count must be >= 1.
func NewGrid(box Box, divisions []int) (*Grid, error) {
	if len(divisions) != box.Dim() {
		return nil, fmt.Errorf("grid: divisions length %d does not match box dimension %d", len(divisions), box.Dim())
	}
	for i, k := range divisions {
		if k < 1 {
			return nil, fmt.Errorf("grid: division count for axis %d must be >= 1, got %d", i, k)
		}
	}
	n := box.Dim()
	strides := make([]int64, n)
	total := int64(1)
	for i := n - 1; i >= 0; i-- {
		strides[i] = total
		total *= int64(divisions[i] + 1)
	}
	return &Grid{
		box:       box,
		divisions: append([]int{}, divisions...),
		strides:   strides,
		total:     total,
	}, nil
}

// Dim returns the dimensionality N.
func (g *Grid) Dim() int { return g.box.Dim() }

// Box returns the underlying domain box.
func (g *Grid) Box() Box { return g.box }

// Divisions returns the per-axis division counts k.
func (g *Grid) Divisions() []int { return append([]int{}, g.divisions...) }

// NumVertices returns the total vertex count, product(k[i]+1).
func (g *Grid) NumVertices() int64 { return g.total }

// Valid reports whether idx lies within [0, k[i]] on every axis.
func (g *Grid) Valid(idx []int) bool {
	for i, v := range idx {
		if v < 0 || v > g.divisions[i] {
			return false
		}
	}
	return true
}

// Position computes the physical coordinates of idx using the direct
// formula pos[i] = lb[i] + idx[i]*(ub[i]-lb[i])/k[i], never by cumulative
// addition, so floating point error stays O(1) regardless of idx magnitude.
func (g *Grid) Position(idx []int) []float64 {
	pos := make([]float64, len(idx))
	for i, v := range idx {
		span := g.box.Upper[i] - g.box.Lower[i]
		pos[i] = g.box.Lower[i] + float64(v)*span/float64(g.divisions[i])
	}
	return pos
}

// FlatIndex maps a valid idx to a unique dense int64 key in
// [0, NumVertices()) using mixed-radix encoding. The caller must ensure
// Valid(idx) first; FlatIndex does not range-check.
func (g *Grid) FlatIndex(idx []int) int64 {
	var flat int64
	for i, v := range idx {
		flat += int64(v) * g.strides[i]
	}
	return flat
}

// IndexFromFlat decodes a dense flat key produced by FlatIndex back into
// grid-index form. It is the inverse of FlatIndex and is used to partition
// the vertex space into contiguous ranges for parallel enumeration without
// materializing the index list.
func (g *Grid) IndexFromFlat(flat int64) []int {
	idx := make([]int, g.Dim())
	for i := range idx {
		idx[i] = int(flat / g.strides[i])
		flat -= int64(idx[i]) * g.strides[i]
	}
	return idx
}

// EachIndex calls visit for every index in the closed box in lexicographic
// order, i.e. the last axis varies fastest. visit must not retain idx; the
// backing slice is reused between calls.
func (g *Grid) EachIndex(visit func(idx []int)) {
	n := g.Dim()
	idx := make([]int, n)
	for {
		visit(idx)
		axis := n - 1
		for axis >= 0 {
			idx[axis]++
			if idx[axis] <= g.divisions[axis] {
				break
			}
			idx[axis] = 0
			axis--
		}
		if axis < 0 {
			return
		}
	}
}
