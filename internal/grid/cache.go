package grid

import (
	"hash/maphash"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
)

// Evaluator is the capability the cache needs from an objective: a scalar
// value and a gradient at a physical point. shgo.Objective satisfies this
// structurally.
type Evaluator interface {
	F(x []float64) float64
	Grad(x []float64) []float64
}

// numShards controls lock granularity for the point cache. A single global
// mutex would be a correctness-preserving but contention-prone alternative;
// sharding keeps misses at distinct indices from serializing on each other.
const numShards = 64

type entry struct {
	ready    chan struct{}
	value    float64
	gradient []float64
	failed   bool
}

// Cache memoizes (value, gradient) pairs at grid vertices under concurrent
// access. It guarantees at most one objective evaluation per index for
// every index that has ever succeeded. A failed evaluation (NaN/Inf result,
// or a recovered panic) is never retained: the poisoned entry is removed as
// soon as it is observed, so the next access to that index re-invokes the
// objective rather than replaying a cached failure. Out-of-range indices
// never touch the shards or the evaluation counter: they return the +Inf
// sentinel directly, per the infinity-padding convention.
type Cache struct {
	grid  *Grid
	eval  Evaluator
	seed  maphash.Seed
	shard [numShards]shardState
	count atomic.Int64
}

type shardState struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// NewCache builds a point cache over grid, backed by eval.
func NewCache(g *Grid, eval Evaluator) *Cache {
	c := &Cache{grid: g, eval: eval, seed: maphash.MakeSeed()}
	for i := range c.shard {
		c.shard[i].entries = make(map[int64]*entry)
	}
	return c
}

func (c *Cache) shardFor(flat int64) *shardState {
	var h maphash.Hash
	h.SetSeed(c.seed)
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(flat >> (8 * i))
	}
	h.Write(buf[:])
	return &c.shard[h.Sum64()%uint64(numShards)]
}

// EvaluationCount returns the number of distinct indices successfully
// charged to the cache so far (misses only; a failed attempt invokes the
// objective but is never retained, so it is not charged, and a later
// retry that succeeds at the same index is charged then).
func (c *Cache) EvaluationCount() int64 { return c.count.Load() }

// get returns the entry for idx, computing it on first demand. It returns
// nil, false for out-of-range idx (caller must apply infinity padding). If
// the evaluation at idx fails, the poisoned entry is removed before get
// returns, so the next call to get for the same idx retries the objective
// rather than replaying the failure; the returned entry for this call
// still has e.failed set so the caller can apply the +Inf/NaN-gradient
// disqualification sentinel for this access.
func (c *Cache) get(idx []int) (*entry, bool) {
	if !c.grid.Valid(idx) {
		return nil, false
	}
	flat := c.grid.FlatIndex(idx)
	shard := c.shardFor(flat)

	shard.mu.Lock()
	e, exists := shard.entries[flat]
	if !exists {
		e = &entry{ready: make(chan struct{})}
		shard.entries[flat] = e
		shard.mu.Unlock()
		c.compute(idx, e)
	} else {
		shard.mu.Unlock()
	}
	<-e.ready

	if e.failed {
		shard.mu.Lock()
		if cur, ok := shard.entries[flat]; ok && cur == e {
			delete(shard.entries, flat)
		}
		shard.mu.Unlock()
	}
	return e, true
}

// compute evaluates the objective at idx outside any shard lock, so
// concurrent misses at other indices are never blocked by this call, then
// publishes the result.
func (c *Cache) compute(idx []int, e *entry) {
	pos := c.grid.Position(idx)
	value := safeCall(func() float64 { return c.eval.F(pos) })
	gradient := safeGrad(func() []float64 { return c.eval.Grad(pos) }, len(idx))

	if math.IsNaN(value) || math.IsInf(value, 0) {
		slog.Debug("grid: objective failure at interior vertex", "idx", idx, "value", value)
		e.failed = true
		close(e.ready)
		return
	}

	e.value = value
	e.gradient = gradient
	c.count.Add(1)
	close(e.ready)
}

// safeCall recovers from a panicking objective and converts it into a NaN
// so the failure propagates through the normal ObjectiveFailure path
// instead of crashing the analysis.
func safeCall(f func() float64) (v float64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("grid: objective panicked", "recover", r)
			v = math.NaN()
		}
	}()
	return f()
}

func safeGrad(f func() []float64, n int) (g []float64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("grid: gradient panicked", "recover", r)
			g = nanVector(n)
		}
	}()
	g = f()
	if g == nil || len(g) != n {
		return nanVector(n)
	}
	for _, gi := range g {
		if math.IsNaN(gi) || math.IsInf(gi, 0) {
			return nanVector(n)
		}
	}
	return g
}

func nanVector(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.NaN()
	}
	return v
}

// Position delegates to the underlying grid.
func (c *Cache) Position(idx []int) []float64 { return c.grid.Position(idx) }

// Grid returns the underlying grid.
func (c *Cache) Grid() *Grid { return c.grid }

// Value returns the cached objective value at idx, or +Inf if idx is
// out of range or the objective failed at idx (both cases make idx
// disqualifying as a minimum by construction).
func (c *Cache) Value(idx []int) float64 {
	e, ok := c.get(idx)
	if !ok || e.failed {
		return math.Inf(1)
	}
	return e.value
}

// ValueRange returns (min, max) over every value currently memoized in the
// cache (finite values only), and false if nothing has been cached yet.
func (c *Cache) ValueRange() (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for i := range c.shard {
		shard := &c.shard[i]
		shard.mu.Lock()
		for _, e := range shard.entries {
			select {
			case <-e.ready:
			default:
				continue // still computing; skip rather than block
			}
			if e.failed || math.IsNaN(e.value) || math.IsInf(e.value, 0) {
				continue
			}
			ok = true
			if e.value < min {
				min = e.value
			}
			if e.value > max {
				max = e.value
			}
		}
		shard.mu.Unlock()
	}
	return min, max, ok
}

// Vertex returns (value, gradient) at idx. Out-of-range or failed vertices
// report +Inf and an all-NaN gradient so gradient-hull pruning retains
// them rather than mis-pruning on unusable data.
func (c *Cache) Vertex(idx []int) (float64, []float64) {
	e, ok := c.get(idx)
	if !ok || e.failed {
		return math.Inf(1), nanVector(c.grid.Dim())
	}
	return e.value, e.gradient
}
