package prune

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeep_OneDimensional(t *testing.T) {
	tests := []struct {
		name string
		grad [][]float64
		want bool
	}{
		{"zero straddled", [][]float64{{-1}, {1}}, true},
		{"zero straddled reversed order", [][]float64{{1}, {-1}}, true},
		{"both positive", [][]float64{{1}, {2}}, false},
		{"both negative", [][]float64{{-2}, {-1}}, false},
		{"zero exactly at vertex", [][]float64{{0}, {1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Keep(tt.grad, DefaultInflation))
		})
	}
}

func TestKeep_TwoDimensional_ContainsOrigin(t *testing.T) {
	// An equilateral triangle centered exactly on the origin.
	grad := [][]float64{
		{1, 0},
		{-0.5, 0.8660254},
		{-0.5, -0.8660254},
	}
	assert.True(t, Keep(grad, DefaultInflation))
}

func TestKeep_TwoDimensional_ExcludesOrigin(t *testing.T) {
	// A triangle entirely in the positive-x half-plane cannot contain the
	// origin in its convex hull.
	grad := [][]float64{
		{2, 0},
		{3, 1},
		{3, -1},
	}
	assert.False(t, Keep(grad, DefaultInflation))
}

func TestKeep_NonFiniteGradientRetains(t *testing.T) {
	grad := [][]float64{
		{math.NaN()},
		{1},
	}
	assert.True(t, Keep(grad, DefaultInflation), "non-finite gradients must never be pruned away")
}

func TestKeep_DimensionMismatchRetains(t *testing.T) {
	grad := [][]float64{
		{1, 2},
		{3},
	}
	assert.True(t, Keep(grad, DefaultInflation))
}

func TestKeep_SingularSystemRetains(t *testing.T) {
	grad := [][]float64{
		{1},
		{1},
	}
	assert.True(t, Keep(grad, DefaultInflation), "a singular barycentric system can't be safely pruned")
}

func TestKeep_EmptyRetains(t *testing.T) {
	assert.True(t, Keep(nil, DefaultInflation))
}
