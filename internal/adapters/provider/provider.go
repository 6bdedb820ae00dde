// Package provider defines the boundary to the external event/result source.
//
// The engine never talks to the remote site directly; it consumes an event
// catalog per year and, per event, parallel player and score lists. How
// those documents are retrieved and parsed is the scraper's business.
package provider

import (
	"context"

	"github.com/rollrank/rollrank/internal/domain/model"
)

// Player identifies one competitor in an event's result sheet.
type Player struct {
	ID   int
	Name string
}

// Results carries an event's result sheet as parallel lists: Scores[i] is
// the textual score of Players[i]. The lists come from independent columns
// of the source document, so their lengths can disagree on a malformed page;
// the analyzer treats that as a data-shape failure.
type Results struct {
	Players []Player
	Scores  []string
}

// Provider supplies the event catalog and per-event result sheets.
type Provider interface {
	// EventsForYear lists the events of one calendar year. A year the
	// source knows nothing about yields an empty list, not an error.
	EventsForYear(ctx context.Context, year int) ([]model.Event, error)

	// EventResults fetches the result sheet for one event. Failures wrap
	// ErrRetrieval.
	EventResults(ctx context.Context, eventID int) (Results, error)
}
