// Package aggregate accumulates weighted points per competitor under
// concurrent writers and recomputes window-capped competitors afterwards.
package aggregate

import (
	"sort"
	"sync"

	"github.com/rollrank/rollrank/internal/domain/model"
)

// Default aggregator configuration constants.
const (
	defaultShardCount = 8
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithShardCount sets the number of lock shards.
func WithShardCount(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.shardCount = n
		}
	}
}

// shard holds a slice of the competitor table under its own lock.
type shard struct {
	mu   sync.Mutex
	rows map[int]*model.Aggregate
}

// Aggregator owns the per-competitor totals of one ranking run. Writers from
// any number of goroutines may call Add concurrently; each competitor's
// read-modify-write happens under its shard lock, so weighted sums are exact
// regardless of interleaving.
type Aggregator struct {
	shardCount int
	shards     []*shard
}

// New creates an empty Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{shardCount: defaultShardCount}
	for _, opt := range opts {
		opt(a)
	}
	a.shards = make([]*shard, a.shardCount)
	for i := range a.shards {
		a.shards[i] = &shard{rows: make(map[int]*model.Aggregate)}
	}
	return a
}

func (a *Aggregator) shardFor(competitorID int) *shard {
	return a.shards[uint(competitorID)%uint(a.shardCount)]
}

// Add applies one contribution: weighted sum grows by points x weight, the
// event count by one, and the display name is upserted. Contributions with
// weight zero are dropped by the analyzer and never reach this point, but a
// stray one is ignored rather than counted.
func (a *Aggregator) Add(c model.Contribution) {
	if c.Weight == 0 {
		return
	}

	sh := a.shardFor(c.CompetitorID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	row, ok := sh.rows[c.CompetitorID]
	if !ok {
		row = &model.Aggregate{CompetitorID: c.CompetitorID}
		sh.rows[c.CompetitorID] = row
	}
	row.Weighted += c.Points * int64(c.Weight)
	row.Count++
	if c.Name != "" {
		row.Name = c.Name
	}
}

// SetWeighted replaces a competitor's weighted sum. Used by the overflow
// stage after the analysis barrier; the event count keeps its true value.
func (a *Aggregator) SetWeighted(competitorID int, weighted int64) {
	sh := a.shardFor(competitorID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if row, ok := sh.rows[competitorID]; ok {
		row.Weighted = weighted
	}
}

// Get returns a copy of one competitor's aggregate.
func (a *Aggregator) Get(competitorID int) (model.Aggregate, bool) {
	sh := a.shardFor(competitorID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	row, ok := sh.rows[competitorID]
	if !ok {
		return model.Aggregate{}, false
	}
	return *row, true
}

// Len returns the number of competitors tracked.
func (a *Aggregator) Len() int {
	n := 0
	for _, sh := range a.shards {
		sh.mu.Lock()
		n += len(sh.rows)
		sh.mu.Unlock()
	}
	return n
}

// Snapshot returns a copy of every aggregate, ordered by competitor id for
// deterministic iteration.
func (a *Aggregator) Snapshot() []model.Aggregate {
	out := make([]model.Aggregate, 0, a.Len())
	for _, sh := range a.shards {
		sh.mu.Lock()
		for _, row := range sh.rows {
			out = append(out, *row)
		}
		sh.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompetitorID < out[j].CompetitorID
	})
	return out
}
