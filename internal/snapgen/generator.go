// Package snapgen generates synthetic snapshot directories for exercising
// the ranking pipeline: three years of event catalogs plus a result sheet
// per event, in the layout the snapshot provider reads.
package snapgen

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/rollrank/rollrank/internal/domain/schedule"
	"github.com/rollrank/rollrank/pkg/logger"
)

// coveredYears matches the ranking window's calendar span.
const coveredYears = 3

const filePermission = 0o644

// Point tiers. Most fields are mid-pack; strong and elite results are rarer.
const (
	tierCount      = 8
	tierMidMin     = 3.0
	tierMidRange   = 4.0
	tierHighMin    = 7.0
	tierHighRange  = 2.0
	tierLowMin     = 0.1
	tierLowRange   = 2.9
	tierEliteMin   = 9.0
	tierEliteRange = 1.0
	tierFullMin    = 0.1
	tierFullRange  = 9.9
)

type eventDoc struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Week int    `json:"week"`
	Year int    `json:"year"`
}

type playerDoc struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type resultsDoc struct {
	Players []playerDoc `json:"players"`
	Scores  []string    `json:"scores"`
}

// Generate writes a full snapshot directory described by cfg.
func Generate(ctx context.Context, cfg *Config) (*Stats, error) {
	cfg.normalize()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	log := logger.Get().Named("snapgen")
	log.Info(ctx, "generating snapshot",
		logger.String("dir", cfg.Dir),
		logger.Int("eventsPerYear", cfg.EventsPerYear),
		logger.Int("competitors", cfg.Competitors),
		logger.Int64("seed", seed),
	)

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	roster := make([]playerDoc, cfg.Competitors)
	for i := range roster {
		roster[i] = playerDoc{ID: i + 1, Name: fmt.Sprintf("Competitor %04d", i+1)}
	}

	stats := &Stats{
		Seed:      seed,
		FirstYear: cfg.EndYear - coveredYears + 1,
		LastYear:  cfg.EndYear,
	}

	nextEventID := 1
	for year := stats.FirstYear; year <= stats.LastYear; year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		events := make([]eventDoc, cfg.EventsPerYear)
		for i := range events {
			events[i] = eventDoc{
				ID:   nextEventID,
				Name: fmt.Sprintf("Event %d/%d", year, i+1),
				Week: 1 + rng.Intn(schedule.WeeksPerYear),
				Year: year,
			}
			nextEventID++
		}
		if err := writeJSON(filepath.Join(cfg.Dir, fmt.Sprintf("events_%d.json", year)), events); err != nil {
			return nil, err
		}
		stats.Events += len(events)

		for _, ev := range events {
			sheet := buildSheet(rng, roster, cfg.Participation)
			if err := writeJSON(filepath.Join(cfg.Dir, fmt.Sprintf("results_%d.json", ev.ID)), sheet); err != nil {
				return nil, err
			}
			stats.Sheets++
			stats.Scores += len(sheet.Scores)
		}
	}

	log.Info(ctx, "snapshot generated",
		logger.Int("events", stats.Events),
		logger.Int("sheets", stats.Sheets),
		logger.Int("scores", stats.Scores),
	)
	return stats, nil
}

// buildSheet draws a field from the roster and assigns tiered points.
// Every sheet gets at least one entrant so no event is an empty shell.
func buildSheet(rng *rand.Rand, roster []playerDoc, participation int) resultsDoc {
	var sheet resultsDoc
	for _, p := range roster {
		if rng.Intn(100) >= participation {
			continue
		}
		sheet.Players = append(sheet.Players, p)
		sheet.Scores = append(sheet.Scores, fmt.Sprintf("%.2f", tieredPoints(rng)))
	}
	if len(sheet.Players) == 0 {
		p := roster[rng.Intn(len(roster))]
		sheet.Players = append(sheet.Players, p)
		sheet.Scores = append(sheet.Scores, fmt.Sprintf("%.2f", tieredPoints(rng)))
	}
	return sheet
}

// tieredPoints spreads results over performance tiers so the ranking has
// texture: a mid-pack bulk, occasional strong fields and rare elite runs.
func tieredPoints(rng *rand.Rand) float64 {
	switch rng.Intn(tierCount) {
	case 0, 1, 2:
		return tierMidMin + rng.Float64()*tierMidRange
	case 3, 4:
		return tierLowMin + rng.Float64()*tierLowRange
	case 5:
		return tierHighMin + rng.Float64()*tierHighRange
	case 6:
		return tierEliteMin + rng.Float64()*tierEliteRange
	default:
		return tierFullMin + rng.Float64()*tierFullRange
	}
}

func writeJSON(path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, raw, filePermission); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
