// Command rollrank-gen writes a synthetic snapshot directory that the
// ranking pipeline can consume, for local runs and load experiments.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rollrank/rollrank/internal/snapgen"
	"github.com/rollrank/rollrank/pkg/logger"
)

func main() {
	var (
		dir           = flag.String("dir", "snapshots", "Directory to write the snapshot into")
		endYear       = flag.Int("year", time.Now().Year(), "Most recent calendar year to cover")
		eventsPerYear = flag.Int("events", 40, "Events to generate per covered year")
		competitors   = flag.Int("competitors", 200, "Roster size")
		participation = flag.Int("participation", 35, "Percent of the roster entering each event")
		seed          = flag.Int64("seed", 0, "Random seed (0 picks a time-based seed)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg := &snapgen.Config{
		Dir:           *dir,
		EndYear:       *endYear,
		EventsPerYear: *eventsPerYear,
		Competitors:   *competitors,
		Participation: *participation,
		Seed:          *seed,
	}

	if _, err := snapgen.Generate(context.Background(), cfg); err != nil {
		os.Stderr.WriteString("snapshot generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
