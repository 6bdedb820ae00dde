// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration for one ranking run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// EndWeek and EndYear define the right edge of the 104-week trailing
	// window. Both default to the ISO week of the Sunday closing the
	// current week.
	EndWeek int `koanf:"end_week"`
	EndYear int `koanf:"end_year"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// ShardCount configures the number of shards in the aggregator map.
	ShardCount int `koanf:"shard_count"`

	// WindowCap bounds how many of a competitor's most recent events count.
	WindowCap int `koanf:"window_cap"`

	// SnapshotDir points at the provider snapshot directory holding the
	// event catalog and result documents.
	SnapshotDir string `koanf:"snapshot_dir"`

	// DatabaseURL selects the Postgres store when set; the in-memory store
	// is used otherwise.
	DatabaseURL string `koanf:"database_url"`

	// OutputPath additionally writes the rendered table to a file.
	OutputPath string `koanf:"output_path"`

	// MetricsAddr serves Prometheus metrics while a run is in flight, e.g.
	// ":9091". Disabled when empty.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config with defaults.
func New() *Config {
	week, year := defaultEndDate(time.Now())
	return &Config{
		LogLevel:    "info",
		EndWeek:     week,
		EndYear:     year,
		WorkerCount: runtime.NumCPU() * 2,
		ShardCount:  8,
		WindowCap:   52,
		SnapshotDir: "snapshots",
		OutputPath:  "ranking.txt",
	}
}

// defaultEndDate resolves the ranking end to the Sunday closing the week of
// now, i.e. already after that week's events. ISO years carrying a 53rd week
// collapse onto the last grid column.
func defaultEndDate(now time.Time) (int, int) {
	days := (7 - int(now.Weekday())) % 7
	sunday := now.AddDate(0, 0, days)
	year, week := sunday.ISOWeek()
	if week > 52 {
		week = 52
	}
	return week, year
}
