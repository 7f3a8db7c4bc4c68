package polish

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DefaultDistanceTolerance is the spec default minimum L2 distance between
// distinct minima.
const DefaultDistanceTolerance = 0.05

// DedupOptions configures Deduplicate.
type DedupOptions struct {
	DistanceTolerance float64
	// ValueGate, when true, additionally requires |f-u.f| < max(1e-6,
	// |u.f|*1e-4) to merge two points, conjunctively with the distance
	// test, so two geometrically close minima with genuinely different
	// values are not merged.
	ValueGate bool
}

// Deduplicate sorts points by objective ascending and greedily accepts
// each one iff it is at least DistanceTolerance away (L2) from every
// already-accepted point. If ValueGate is set, a point closer than
// DistanceTolerance to an accepted point is still accepted unless their
// values also pass the value proximity test. The result is idempotent:
// Deduplicate(Deduplicate(xs)) == Deduplicate(xs), since the accepted
// points come back in the same order and each one is tested against the
// same earlier accepted points as before.
func Deduplicate(points []PolishedPoint, opts DedupOptions) []PolishedPoint {
	if len(points) == 0 {
		return nil
	}
	tol := opts.DistanceTolerance
	if tol <= 0 {
		tol = DefaultDistanceTolerance
	}

	sorted := append([]PolishedPoint{}, points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].F < sorted[j].F })

	var accepted []PolishedPoint
	for _, p := range sorted {
		if accepts(p, accepted, tol, opts.ValueGate) {
			accepted = append(accepted, p)
		}
	}
	return accepted
}

func accepts(p PolishedPoint, accepted []PolishedPoint, tol float64, valueGate bool) bool {
	for _, u := range accepted {
		d := floats.Distance(p.X, u.X, 2)
		if d < tol {
			if !valueGate {
				return false
			}
			valueClose := math.Abs(p.F-u.F) < math.Max(1e-6, math.Abs(u.F)*1e-4)
			if valueClose {
				return false
			}
		}
	}
	return true
}
