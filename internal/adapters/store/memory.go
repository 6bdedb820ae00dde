package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rollrank/rollrank/internal/domain/model"
)

// Memory is a mutex-guarded in-memory Store. It is the default store for
// runs without a database and the fixture store for tests.
type Memory struct {
	mu sync.RWMutex

	events map[int]model.Event
	names  map[int]string

	// scores by event id; seen guards insert idempotence per
	// (event, competitor) key.
	scores map[int][]model.ScoreRecord
	seen   map[scoreKey]struct{}

	// byCompetitor indexes event ids per competitor for recency queries.
	byCompetitor map[int][]int

	saved map[runKey][]model.Aggregate
}

type scoreKey struct {
	eventID      int
	competitorID int
}

type runKey struct {
	week int
	year int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		events:       make(map[int]model.Event),
		names:        make(map[int]string),
		scores:       make(map[int][]model.ScoreRecord),
		seen:         make(map[scoreKey]struct{}),
		byCompetitor: make(map[int][]int),
		saved:        make(map[runKey][]model.Aggregate),
	}
}

// UpsertEvent records an event from the catalog.
func (m *Memory) UpsertEvent(_ context.Context, ev model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[ev.ID]; ok {
		return nil
	}
	m.events[ev.ID] = ev
	return nil
}

// EventScores returns the cached score records for an event.
func (m *Memory) EventScores(_ context.Context, eventID int) ([]model.ScoreRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.scores[eventID]
	out := make([]model.ScoreRecord, len(recs))
	for i, rec := range recs {
		rec.Name = m.names[rec.CompetitorID]
		out[i] = rec
	}
	return out, nil
}

// InsertScore persists one score record; duplicate (event, competitor) keys
// are no-ops after the first write.
func (m *Memory) InsertScore(_ context.Context, rec model.ScoreRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.Name != "" {
		m.names[rec.CompetitorID] = rec.Name
	}
	key := scoreKey{eventID: rec.EventID, competitorID: rec.CompetitorID}
	if _, ok := m.seen[key]; ok {
		return nil
	}
	m.seen[key] = struct{}{}
	m.scores[rec.EventID] = append(m.scores[rec.EventID], rec)
	m.byCompetitor[rec.CompetitorID] = append(m.byCompetitor[rec.CompetitorID], rec.EventID)
	return nil
}

// RecentScores returns up to limit records for a competitor ordered by event
// year desc, week desc, event id desc.
func (m *Memory) RecentScores(_ context.Context, competitorID, limit int) ([]model.DatedScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	eventIDs := m.byCompetitor[competitorID]
	out := make([]model.DatedScore, 0, len(eventIDs))
	for _, eventID := range eventIDs {
		ev, ok := m.events[eventID]
		if !ok {
			continue
		}
		for _, rec := range m.scores[eventID] {
			if rec.CompetitorID != competitorID {
				continue
			}
			out = append(out, model.DatedScore{
				EventID:      eventID,
				CompetitorID: competitorID,
				Points:       rec.Points,
				Week:         ev.Week,
				Year:         ev.Year,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		if out[i].Week != out[j].Week {
			return out[i].Week > out[j].Week
		}
		return out[i].EventID > out[j].EventID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SaveAggregates stores the final aggregates of a run.
func (m *Memory) SaveAggregates(_ context.Context, week, year int, aggs []model.Aggregate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]model.Aggregate, len(aggs))
	copy(cp, aggs)
	m.saved[runKey{week: week, year: year}] = cp
	return nil
}

// SavedAggregates returns the aggregates persisted for a run, if any.
func (m *Memory) SavedAggregates(week, year int) []model.Aggregate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saved[runKey{week: week, year: year}]
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}
