// Package analyzer turns one event into weighted contributions.
//
// For each event the analyzer decides between two branches behind one
// interface: reuse the score records already cached in the store, or fetch
// the result sheet from the provider, normalize the textual scores into
// fixed-point integers, and persist them. Both branches emit the same
// contribution stream, so re-running an event never changes its aggregate
// effect.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/rollrank/rollrank/internal/adapters/provider"
	"github.com/rollrank/rollrank/internal/domain/model"
	"github.com/rollrank/rollrank/pkg/logger"
	"github.com/rollrank/rollrank/pkg/metrics"
)

// Outcome describes which branch an analysis took.
type Outcome int

const (
	// OutcomeSkipped means the event resolves to weight zero and was not
	// touched at all.
	OutcomeSkipped Outcome = iota
	// OutcomeCached means the store already held the event's records.
	OutcomeCached
	// OutcomeFetched means the result sheet was fetched, parsed and
	// persisted.
	OutcomeFetched
)

// ScoreStore is the slice of the persistent store the analyzer needs.
type ScoreStore interface {
	EventScores(ctx context.Context, eventID int) ([]model.ScoreRecord, error)
	InsertScore(ctx context.Context, rec model.ScoreRecord) error
}

// ResultSource fetches result sheets; failures wrap provider.ErrRetrieval.
type ResultSource interface {
	EventResults(ctx context.Context, eventID int) (provider.Results, error)
}

// Sink receives the contributions of an analyzed event.
type Sink interface {
	Add(c model.Contribution)
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithLogger sets a custom logger for the analyzer.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// Analyzer analyzes events against a store and a result source.
type Analyzer struct {
	store  ScoreStore
	source ResultSource
	logger logger.Logger
}

// New creates an Analyzer.
func New(store ScoreStore, source ResultSource, opts ...Option) *Analyzer {
	a := &Analyzer{
		store:  store,
		source: source,
		logger: logger.Get().Named("analyzer"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze processes one event at the given weight and feeds the sink.
//
// Weight zero skips the event entirely, including the cache probe. A failed
// event emits nothing: contributions only flow once every record of the
// event parsed and persisted cleanly.
func (a *Analyzer) Analyze(ctx context.Context, ev model.Event, weight int, sink Sink) (Outcome, error) {
	if weight == 0 {
		metrics.RecordEventAnalyzed("skipped")
		return OutcomeSkipped, nil
	}

	start := time.Now()
	defer func() {
		metrics.ObserveEventAnalysis(time.Since(start).Seconds())
	}()

	cached, err := a.store.EventScores(ctx, ev.ID)
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("event %d: %w", ev.ID, err)
	}
	if len(cached) > 0 {
		a.emit(cached, weight, sink)
		metrics.RecordEventAnalyzed("cached")
		a.logger.Debug(ctx, "event served from cache",
			logger.Int("event", ev.ID),
			logger.Int("records", len(cached)),
		)
		return OutcomeCached, nil
	}

	recs, err := a.fetch(ctx, ev)
	if err != nil {
		return OutcomeSkipped, err
	}
	for _, rec := range recs {
		if err := a.store.InsertScore(ctx, rec); err != nil {
			return OutcomeSkipped, fmt.Errorf("event %d: %w", ev.ID, err)
		}
		metrics.RecordScoreInserted()
	}
	a.emit(recs, weight, sink)
	metrics.RecordEventAnalyzed("fetched")
	a.logger.Debug(ctx, "event fetched and persisted",
		logger.Int("event", ev.ID),
		logger.Int("records", len(recs)),
	)
	return OutcomeFetched, nil
}

// fetch retrieves and normalizes an event's result sheet. Nothing is
// persisted until the whole sheet parsed.
func (a *Analyzer) fetch(ctx context.Context, ev model.Event) ([]model.ScoreRecord, error) {
	res, err := a.source.EventResults(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	if len(res.Players) != len(res.Scores) {
		return nil, &DataShapeError{
			EventID:   ev.ID,
			EventName: ev.Name,
			Players:   len(res.Players),
			Scores:    len(res.Scores),
		}
	}

	recs := make([]model.ScoreRecord, len(res.Players))
	for i, p := range res.Players {
		points, err := ParsePoints(res.Scores[i])
		if err != nil {
			return nil, fmt.Errorf("%w: event %d: score %q for competitor %d: %v",
				provider.ErrRetrieval, ev.ID, res.Scores[i], p.ID, err)
		}
		recs[i] = model.ScoreRecord{
			EventID:      ev.ID,
			CompetitorID: p.ID,
			Name:         p.Name,
			Points:       points,
		}
	}
	return recs, nil
}

func (a *Analyzer) emit(recs []model.ScoreRecord, weight int, sink Sink) {
	for _, rec := range recs {
		sink.Add(model.Contribution{
			EventID:      rec.EventID,
			CompetitorID: rec.CompetitorID,
			Name:         rec.Name,
			Points:       rec.Points,
			Weight:       weight,
		})
		metrics.RecordContribution()
	}
}
