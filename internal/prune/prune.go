package prune

import (
	"github.com/cwbudde/shgo/internal/grid"
	"github.com/cwbudde/shgo/internal/kuhn"
)

// KeepSimplex gathers the gradients at a simplex's vertices from the cache
// and applies the gradient-hull membership test. It is the wiring between
// the pure hull math in hull.go and the grid/kuhn packages; pruning itself stays
// disabled by default (internal/refine only calls this when
// Options.UseGradientPruning is set).
func KeepSimplex(cache *grid.Cache, s kuhn.Simplex, inflation float64) bool {
	verts := s.VertexIndices()
	gradients := make([][]float64, len(verts))
	for i, idx := range verts {
		_, g := cache.Vertex(idx)
		gradients[i] = g
	}
	return Keep(gradients, inflation)
}
