// Package prune implements the optional gradient-hull pruning filter: a
// simplex is discarded when the zero vector provably does not lie in the
// convex hull of its vertex gradients, since no first-order critical point
// can then lie inside it.
package prune

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultInflation is the L-infinity style slack added to the barycentric
// feasibility bounds to tolerate roundoff in the hull membership test.
const DefaultInflation = 1e-9

// Keep reports whether the simplex with the given vertex gradients should
// be retained. It returns true (retain, cannot safely prune) whenever any
// gradient component is non-finite or the barycentric system is singular.
// Otherwise it solves the square system
//
//	[ g_0 g_1 ... g_N ]   [ lambda_0 ]   [ 0 ]
//	[  1   1  ...  1  ] * [   ...    ] = [ ... ]
//	                      [ lambda_N ]   [ 1 ]
//
// for the unique barycentric coordinates of 0 with respect to the simplex
// and reports true iff every lambda_i lies in [-tol, 1+tol], i.e. 0 is in
// the (slightly inflated) convex hull of the gradients.
func Keep(gradients [][]float64, tol float64) bool {
	size := len(gradients)
	if size == 0 {
		return true
	}
	dim := size - 1

	for _, g := range gradients {
		if len(g) != dim {
			return true
		}
		for _, v := range g {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}

	if dim == 0 {
		// A single gradient vector in a 0-dimensional space: the sole
		// candidate critical point is the point itself.
		return true
	}

	a := mat.NewDense(size, size, nil)
	for j, g := range gradients {
		for i := 0; i < dim; i++ {
			a.Set(i, j, g[i])
		}
		a.Set(dim, j, 1)
	}
	b := mat.NewVecDense(size, nil)
	b.SetVec(dim, 1)

	var lambda mat.VecDense
	if err := lambda.SolveVec(a, b); err != nil {
		return true // singular simplex: cannot safely prune
	}

	for i := 0; i < size; i++ {
		v := lambda.AtVec(i)
		if v < -tol || v > 1+tol {
			return false
		}
	}
	return true
}
