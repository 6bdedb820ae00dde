// Package model contains domain models passed between layers.
package model

// Event is one dated scoring event from the catalog. Events are immutable
// once observed; an event older than the 104-week window simply resolves to
// weight zero.
type Event struct {
	ID   int    // unique, externally assigned
	Name string // display name from the catalog
	Week int    // calendar week, 1..52
	Year int    // calendar year
}

// ScoreRecord is the immutable unweighted result of one competitor at one
// event. Points carry two implied decimal digits (scale x100, truncated from
// the source text). Name is the display name resolved from the competitor
// table; it rides along so the cache path can emit contributions without a
// second lookup.
type ScoreRecord struct {
	EventID      int
	CompetitorID int
	Name         string
	Points       int64
}

// DatedScore joins a score record with its event's calendar coordinates.
// Used by recency-ordered queries during overflow reevaluation.
type DatedScore struct {
	EventID      int
	CompetitorID int
	Points       int64
	Week         int
	Year         int
}

// Contribution is the unit of work flowing from the analyzer into the
// aggregator: one competitor's unweighted points at one event plus the
// weight the event resolves to.
type Contribution struct {
	EventID      int
	CompetitorID int
	Name         string
	Points       int64 // scale x100
	Weight       int   // scale x10000, 0..10000
}

// Aggregate is one competitor's accumulated state for a ranking run.
// Weighted carries scale x1_000_000 (points x100 times weight x10000).
// Count is the true, uncapped number of contributing events.
type Aggregate struct {
	CompetitorID int
	Name         string
	Weighted     int64
	Count        int
}
