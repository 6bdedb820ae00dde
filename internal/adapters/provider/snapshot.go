package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rollrank/rollrank/internal/domain/model"
)

// Snapshot reads the catalog and result sheets from a directory of JSON
// documents written by the scraper:
//
//	events_<year>.json   [{"id":..,"name":..,"week":..,"year":..}, ...]
//	results_<event>.json {"players":[{"id":..,"name":..},...],"scores":["12.34",...]}
//
// A missing year file means the source has no events for that year. A
// missing result file is a retrieval failure: the catalog promised an event
// the snapshot cannot back.
type Snapshot struct {
	dir string
}

// NewSnapshot creates a snapshot provider rooted at dir.
func NewSnapshot(dir string) *Snapshot {
	return &Snapshot{dir: dir}
}

type eventDoc struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Week int    `json:"week"`
	Year int    `json:"year"`
}

type resultsDoc struct {
	Players []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"players"`
	Scores []string `json:"scores"`
}

// EventsForYear lists the snapshot's events for one calendar year.
func (s *Snapshot) EventsForYear(_ context.Context, year int) ([]model.Event, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, fmt.Sprintf("events_%d.json", year)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: events for %d: %v", ErrRetrieval, year, err)
	}

	var docs []eventDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("%w: events for %d: %v", ErrRetrieval, year, err)
	}

	events := make([]model.Event, len(docs))
	for i, d := range docs {
		events[i] = model.Event{ID: d.ID, Name: d.Name, Week: d.Week, Year: d.Year}
	}
	return events, nil
}

// EventResults reads the result sheet for one event.
func (s *Snapshot) EventResults(_ context.Context, eventID int) (Results, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, fmt.Sprintf("results_%d.json", eventID)))
	if err != nil {
		return Results{}, fmt.Errorf("%w: event %d: %v", ErrRetrieval, eventID, err)
	}

	var doc resultsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Results{}, fmt.Errorf("%w: event %d: %v", ErrRetrieval, eventID, err)
	}

	res := Results{
		Players: make([]Player, len(doc.Players)),
		Scores:  doc.Scores,
	}
	for i, p := range doc.Players {
		res.Players[i] = Player{ID: p.ID, Name: p.Name}
	}
	return res, nil
}
