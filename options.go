package shgo

import "github.com/cwbudde/shgo/internal/polish"

// Options holds every tunable knob of the engine. Construct via
// DefaultOptions and override with the With* functional options.
type Options struct {
	NDivInitial          int
	NDivMax              int
	StabilityCount       int
	ThresholdRatio       float64
	MinDistanceTolerance float64
	LocalMaxIters        int
	UseGradientPruning   bool
	RelTolStar           float64
	Verbose              bool

	// Workers caps goroutine fan-out inside star detection and basin
	// polishing. Zero means "pick automatically" (GOMAXPROCS, capped to
	// the work available).
	Workers int

	// LocalSolver overrides the default gonum/optimize-backed LocalSolver.
	// Exposed for tests and for harnesses that already own a local
	// optimizer; nil selects polish.NewGonumSolver().
	LocalSolver polish.LocalSolver

	// ValueGateDedup additionally requires value proximity before merging
	// two geometrically close minima, as an optional secondary test on
	// top of the distance check.
	ValueGateDedup bool

	// Progress, if non-nil, is invoked once per completed refinement
	// iteration. It must not block or retain the Result's slices.
	Progress func(IterationProgress)
}

// IterationProgress summarizes one completed refinement iteration for the
// Progress hook.
type IterationProgress struct {
	Iteration       int
	Divisions       int
	NumBasins       int
	EvaluationCount int64
}

// DefaultOptions returns the engine's default tuning parameters.
func DefaultOptions() Options {
	return Options{
		NDivInitial:          8,
		NDivMax:              25,
		StabilityCount:       2,
		ThresholdRatio:       0.1,
		MinDistanceTolerance: 0.05,
		LocalMaxIters:        500,
		UseGradientPruning:   false,
		RelTolStar:           1e-10,
		Verbose:              false,
	}
}

// Option mutates an Options in place.
type Option func(*Options)

func WithInitialDivisions(n int) Option          { return func(o *Options) { o.NDivInitial = n } }
func WithMaxDivisions(n int) Option              { return func(o *Options) { o.NDivMax = n } }
func WithStabilityCount(n int) Option            { return func(o *Options) { o.StabilityCount = n } }
func WithThresholdRatio(r float64) Option        { return func(o *Options) { o.ThresholdRatio = r } }
func WithMinDistanceTolerance(d float64) Option  { return func(o *Options) { o.MinDistanceTolerance = d } }
func WithLocalMaxIters(n int) Option             { return func(o *Options) { o.LocalMaxIters = n } }
func WithGradientPruning(enabled bool) Option    { return func(o *Options) { o.UseGradientPruning = enabled } }
func WithRelTolStar(t float64) Option            { return func(o *Options) { o.RelTolStar = t } }
func WithVerbose(v bool) Option                  { return func(o *Options) { o.Verbose = v } }
func WithWorkers(n int) Option                   { return func(o *Options) { o.Workers = n } }
func WithLocalSolver(s polish.LocalSolver) Option { return func(o *Options) { o.LocalSolver = s } }
func WithValueGateDedup(v bool) Option            { return func(o *Options) { o.ValueGateDedup = v } }
func WithProgress(f func(IterationProgress)) Option {
	return func(o *Options) { o.Progress = f }
}
