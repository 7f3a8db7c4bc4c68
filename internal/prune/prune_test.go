package prune

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/shgo/internal/grid"
	"github.com/cwbudde/shgo/internal/kuhn"
)

type sphereEval struct{}

func (sphereEval) F(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return s
}

func (sphereEval) Grad(x []float64) []float64 {
	g := make([]float64, len(x))
	for i, v := range x {
		g[i] = 2 * v
	}
	return g
}

func TestKeepSimplex_RetainsCellContainingMinimum(t *testing.T) {
	box, err := grid.NewBox([]float64{-1, -1}, []float64{1, 1})
	require.NoError(t, err)
	g, err := grid.NewGrid(box, []int{4, 4})
	require.NoError(t, err)
	cache := grid.NewCache(g, sphereEval{})

	// The simplex spanning the cell adjacent to the center vertex (2,2),
	// where the sphere's gradient changes sign, must be retained.
	s := kuhn.Simplex{CellOrigin: []int{1, 1}, Perm: []int{1, 2}}
	assert.True(t, KeepSimplex(cache, s, DefaultInflation))
}

func TestKeepSimplex_DropsCellFarFromMinimum(t *testing.T) {
	box, err := grid.NewBox([]float64{-1, -1}, []float64{1, 1})
	require.NoError(t, err)
	g, err := grid.NewGrid(box, []int{4, 4})
	require.NoError(t, err)
	cache := grid.NewCache(g, sphereEval{})

	// The simplex in the corner cell (far from the single minimum at the
	// center) has gradients that all point away from the origin in the
	// same half-plane, so its hull excludes zero.
	s := kuhn.Simplex{CellOrigin: []int{3, 3}, Perm: []int{1, 2}}
	assert.False(t, KeepSimplex(cache, s, DefaultInflation))
}
