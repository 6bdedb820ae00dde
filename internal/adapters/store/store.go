// Package store defines the persistent boundary for events, score records
// and competitor aggregates.
package store

import (
	"context"

	"github.com/rollrank/rollrank/internal/domain/model"
)

// Store provides idempotent persistence for one ranking run.
//
// Score records are append-only: InsertScore must be a no-op after the first
// write for a given (event, competitor) key, so duplicate event analyses can
// never double a competitor's totals.
type Store interface {
	// UpsertEvent records an event from the catalog. Safe to call again for
	// a known event id.
	UpsertEvent(ctx context.Context, ev model.Event) error

	// EventScores returns all score records cached for an event, with
	// display names resolved. Empty result means the event has never been
	// analyzed.
	EventScores(ctx context.Context, eventID int) ([]model.ScoreRecord, error)

	// InsertScore persists one freshly parsed score record (idempotent).
	InsertScore(ctx context.Context, rec model.ScoreRecord) error

	// RecentScores returns up to limit of a competitor's score records
	// ordered by event year desc, week desc, then event id desc.
	RecentScores(ctx context.Context, competitorID, limit int) ([]model.DatedScore, error)

	// SaveAggregates upserts the final aggregates of the run keyed by
	// (competitor, week, year).
	SaveAggregates(ctx context.Context, week, year int, aggs []model.Aggregate) error

	// Close releases the underlying resources.
	Close() error
}
