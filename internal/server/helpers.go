package server

import (
	"fmt"

	"github.com/cwbudde/shgo/internal/objective"
)

// resolveObjective looks up a JobConfig's objective name against the
// engine's built-in benchmark set.
func resolveObjective(name string) (shgoObjective, error) {
	obj, ok := objective.ByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown objective %q (have: %v)", name, objective.Names())
	}
	return obj, nil
}

// shgoObjective is the capability set runJob needs; it matches
// shgo.Objective structurally without importing the root package into this
// helper, keeping the dependency direction the same as internal/objective.
type shgoObjective interface {
	F(x []float64) float64
	Grad(x []float64) []float64
	LB() []float64
	UB() []float64
}

// applyDefaults fills zero-valued JobConfig fields with the engine's
// defaults, the way handleCreateJob's teacher equivalent defaulted
// Circles/Iters/PopSize before starting a run.
func applyDefaults(c JobConfig) JobConfig {
	if c.NDivInitial <= 0 {
		c.NDivInitial = 8
	}
	if c.NDivMax <= 0 {
		c.NDivMax = 25
	}
	if c.StabilityCount <= 0 {
		c.StabilityCount = 2
	}
	if c.ThresholdRatio <= 0 {
		c.ThresholdRatio = 0.1
	}
	if c.MinDistanceTolerance <= 0 {
		c.MinDistanceTolerance = 0.05
	}
	if c.LocalMaxIters <= 0 {
		c.LocalMaxIters = 500
	}
	return c
}
