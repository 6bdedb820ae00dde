// Package service orchestrates one ranking run end to end: catalog load,
// sharded analysis, the overflow barrier stage, persistence and rendering.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rollrank/rollrank/internal/adapters/provider"
	"github.com/rollrank/rollrank/internal/adapters/store"
	"github.com/rollrank/rollrank/internal/domain/aggregate"
	"github.com/rollrank/rollrank/internal/domain/analyzer"
	"github.com/rollrank/rollrank/internal/domain/model"
	"github.com/rollrank/rollrank/internal/domain/rank"
	"github.com/rollrank/rollrank/internal/domain/schedule"
	"github.com/rollrank/rollrank/pkg/logger"
	"github.com/rollrank/rollrank/pkg/metrics"
)

// coveredYears is how many calendar years of events feed one window.
const coveredYears = 3

// FailureKind classifies why an event (or the run itself) degraded.
type FailureKind string

const (
	FailureRetrieval   FailureKind = "retrieval"
	FailureDataShape   FailureKind = "data_shape"
	FailurePersistence FailureKind = "persistence"
)

// Failure records one degraded event. EventID 0 marks a run-level failure.
type Failure struct {
	EventID int
	Kind    FailureKind
	Err     error
}

// Report summarizes one completed run.
type Report struct {
	RunID       string
	EndWeek     int
	EndYear     int
	Events      int
	Skipped     int
	CacheHits   int
	Fetched     int
	Reevaluated int
	Ranked      int
	Failures    []Failure
	Duration    time.Duration
}

// Degraded reports whether anything failed during the run. The table is
// still produced from whatever succeeded; callers should surface a non-zero
// status for degraded runs.
func (r *Report) Degraded() bool {
	return len(r.Failures) > 0
}

// Service wires the run's collaborators together.
type Service struct {
	st   store.Store
	prov provider.Provider
	out  io.Writer

	endWeek     int
	endYear     int
	workerCount int
	shardCount  int
	windowCap   int

	logger    logger.Logger
	failureMu sync.Mutex
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEndDate pins the right edge of the ranking window.
func WithEndDate(week, year int) Option {
	return func(s *Service) {
		s.endWeek = week
		s.endYear = year
	}
}

// WithWorkerCount sets the number of analysis workers.
func WithWorkerCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithShardCount sets the number of aggregator lock shards.
func WithShardCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithWindowCap overrides the per-competitor event cap.
func WithWindowCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.windowCap = n
		}
	}
}

// WithStore sets the persistent store.
func WithStore(st store.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.st = st
		}
	}
}

// WithProvider sets the event/result provider.
func WithProvider(p provider.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.prov = p
		}
	}
}

// WithOutput sets the sink the rendered table is written to.
func WithOutput(w io.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.out = w
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with defaults: in-memory store, stdout output,
// one worker per two CPUs and the standard 52-event window cap.
func New(opts ...Option) *Service {
	now := time.Now()
	year, week := now.ISOWeek()
	if week > 52 {
		week = 52
	}
	s := &Service{
		st:          store.NewMemory(),
		out:         os.Stdout,
		endWeek:     week,
		endYear:     year,
		workerCount: runtime.NumCPU() * 2,
		shardCount:  8,
		windowCap:   aggregate.DefaultWindowCap,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("run")
	}
	return s
}

// Run executes one ranking run and renders the table. The returned Report
// is non-nil whenever the run got far enough to analyze anything; a non-nil
// error means the run could not complete at all.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	rep := &Report{
		RunID:   uuid.NewString(),
		EndWeek: s.endWeek,
		EndYear: s.endYear,
	}

	sched, err := schedule.New(s.endWeek)
	if err != nil {
		return nil, err
	}
	if s.prov == nil {
		return nil, errors.New("no provider configured")
	}

	s.logger.Info(ctx, "ranking run starting",
		logger.String("run", rep.RunID),
		logger.Int("endWeek", s.endWeek),
		logger.Int("endYear", s.endYear),
		logger.Int("workers", s.workerCount),
	)

	events, err := s.loadCatalog(ctx, rep)
	if err != nil {
		return nil, err
	}
	rep.Events = len(events)

	agg := aggregate.New(aggregate.WithShardCount(s.shardCount))
	s.analyzeAll(ctx, events, sched, agg, rep)
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	// Barrier passed: every contribution is committed, the window cap may
	// now recompute prolific competitors.
	reev := aggregate.NewReevaluator(s.st, sched, s.endYear,
		aggregate.WithWindowCap(s.windowCap),
		aggregate.WithReevalLogger(s.logger.Named("reeval")),
	)
	n, err := reev.Run(ctx, agg)
	if err != nil {
		return rep, err
	}
	rep.Reevaluated = n

	final := agg.Snapshot()
	metrics.UpdateCompetitorTotal(len(final))
	if err := s.st.SaveAggregates(ctx, s.endWeek, s.endYear, final); err != nil {
		s.record(rep, Failure{Kind: FailurePersistence, Err: err})
		s.logger.Error(ctx, "saving aggregates failed", logger.Error(err))
	}

	rows := rank.Build(final)
	rep.Ranked = len(rows)
	if err := rank.Render(s.out, rows); err != nil {
		return rep, fmt.Errorf("render table: %w", err)
	}

	rep.Duration = time.Since(start)
	metrics.ObserveRunDuration(rep.Duration.Seconds())
	s.logger.Info(ctx, "ranking run finished",
		logger.String("run", rep.RunID),
		logger.Int("events", rep.Events),
		logger.Int("cacheHits", rep.CacheHits),
		logger.Int("fetched", rep.Fetched),
		logger.Int("skipped", rep.Skipped),
		logger.Int("reevaluated", rep.Reevaluated),
		logger.Int("ranked", rep.Ranked),
		logger.Int("failures", len(rep.Failures)),
	)
	return rep, nil
}

// loadCatalog pulls the event lists for the three covered years and records
// them in the store. Events with malformed weeks are dropped here; they
// could never resolve to a weight anyway.
func (s *Service) loadCatalog(ctx context.Context, rep *Report) ([]model.Event, error) {
	var events []model.Event
	for offset := 0; offset < coveredYears; offset++ {
		year := s.endYear - offset
		list, err := s.prov.EventsForYear(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("load catalog year %d: %w", year, err)
		}
		for _, ev := range list {
			if ev.Week < 1 || ev.Week > schedule.WeeksPerYear {
				s.logger.Warn(ctx, "dropping event with malformed week",
					logger.Int("event", ev.ID),
					logger.Int("week", ev.Week),
				)
				continue
			}
			if err := s.st.UpsertEvent(ctx, ev); err != nil {
				s.record(rep, Failure{EventID: ev.ID, Kind: FailurePersistence, Err: err})
				continue
			}
			events = append(events, ev)
		}
	}
	return events, nil
}

// analyzeAll fans the event list out over round-robin worker shards and
// joins on completion. A failed event is recorded and skipped; sibling
// workers keep running. Only context cancellation aborts the stage.
func (s *Service) analyzeAll(ctx context.Context, events []model.Event, sched *schedule.Schedule, agg *aggregate.Aggregator, rep *Report) {
	anl := analyzer.New(s.st, s.prov, analyzer.WithLogger(s.logger.Named("analyzer")))

	var mu sync.Mutex
	var skipped, cached, fetched int

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < s.workerCount; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < len(events); i += s.workerCount {
				if err := gctx.Err(); err != nil {
					return err
				}
				ev := events[i]
				weight := sched.WeightFor(ev.Year, ev.Week, s.endYear)
				outcome, err := anl.Analyze(gctx, ev, weight, agg)
				if err != nil {
					s.record(rep, classify(ev.ID, err))
					s.logger.Error(gctx, "event analysis failed",
						logger.Int("event", ev.ID),
						logger.Error(err),
					)
					continue
				}
				mu.Lock()
				switch outcome {
				case analyzer.OutcomeSkipped:
					skipped++
				case analyzer.OutcomeCached:
					cached++
				case analyzer.OutcomeFetched:
					fetched++
				}
				mu.Unlock()
			}
			return nil
		})
	}
	// Wait can only surface context cancellation here; the caller checks
	// ctx afterwards.
	_ = g.Wait()

	rep.Skipped = skipped
	rep.CacheHits = cached
	rep.Fetched = fetched
}

func (s *Service) record(rep *Report, f Failure) {
	s.failureMu.Lock()
	rep.Failures = append(rep.Failures, f)
	s.failureMu.Unlock()
	metrics.RecordEventFailure(string(f.Kind))
}

// classify maps an analysis error onto the failure taxonomy.
func classify(eventID int, err error) Failure {
	var shape *analyzer.DataShapeError
	switch {
	case errors.As(err, &shape):
		return Failure{EventID: eventID, Kind: FailureDataShape, Err: err}
	case errors.Is(err, provider.ErrRetrieval):
		return Failure{EventID: eventID, Kind: FailureRetrieval, Err: err}
	default:
		return Failure{EventID: eventID, Kind: FailurePersistence, Err: err}
	}
}
