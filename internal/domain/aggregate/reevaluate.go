package aggregate

import (
	"context"
	"fmt"

	"github.com/rollrank/rollrank/internal/domain/model"
	"github.com/rollrank/rollrank/internal/domain/schedule"
	"github.com/rollrank/rollrank/pkg/logger"
	"github.com/rollrank/rollrank/pkg/metrics"
)

// DefaultWindowCap is how many of a competitor's most recent events count.
const DefaultWindowCap = 52

// RecentScoreStore is the slice of the persistent store the reevaluator
// needs: a competitor's score records ordered by recency.
type RecentScoreStore interface {
	RecentScores(ctx context.Context, competitorID, limit int) ([]model.DatedScore, error)
}

// ReevalOption applies a configuration option to the Reevaluator.
type ReevalOption func(*Reevaluator)

// WithWindowCap overrides the window cap.
func WithWindowCap(n int) ReevalOption {
	return func(r *Reevaluator) {
		if n > 0 {
			r.cap = n
		}
	}
}

// WithReevalLogger sets a custom logger for the reevaluator.
func WithReevalLogger(l logger.Logger) ReevalOption {
	return func(r *Reevaluator) {
		if l != nil {
			r.logger = l
		}
	}
}

// Reevaluator rebuilds the weighted sum of competitors whose event count
// exceeds the window cap, using only their most recent capped subset. It
// must run strictly after every analysis worker has committed its
// contributions; it is a post-barrier stage, not a pipeline stage.
type Reevaluator struct {
	store   RecentScoreStore
	sched   *schedule.Schedule
	endYear int
	cap     int
	logger  logger.Logger
}

// NewReevaluator creates a Reevaluator for one ranking run.
func NewReevaluator(store RecentScoreStore, sched *schedule.Schedule, endYear int, opts ...ReevalOption) *Reevaluator {
	r := &Reevaluator{
		store:   store,
		sched:   sched,
		endYear: endYear,
		cap:     DefaultWindowCap,
		logger:  logger.Get().Named("reeval"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run recomputes every over-cap competitor in agg and returns how many were
// recomputed. The event count keeps its true uncapped value; only the
// weighted sum is window-capped.
func (r *Reevaluator) Run(ctx context.Context, agg *Aggregator) (int, error) {
	recomputed := 0
	for _, row := range agg.Snapshot() {
		if row.Count <= r.cap {
			continue
		}
		if err := ctx.Err(); err != nil {
			return recomputed, err
		}

		recent, err := r.store.RecentScores(ctx, row.CompetitorID, r.cap)
		if err != nil {
			return recomputed, fmt.Errorf("reevaluate competitor %d: %w", row.CompetitorID, err)
		}

		var sum int64
		for _, ds := range recent {
			weight := r.sched.WeightFor(ds.Year, ds.Week, r.endYear)
			sum += ds.Points * int64(weight)
		}
		agg.SetWeighted(row.CompetitorID, sum)
		recomputed++
		metrics.RecordReevaluated()

		r.logger.Debug(ctx, "window-capped competitor recomputed",
			logger.Int("competitor", row.CompetitorID),
			logger.Int("events", row.Count),
			logger.Int64("weighted", sum),
		)
	}
	return recomputed, nil
}
