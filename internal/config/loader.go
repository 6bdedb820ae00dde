package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ROLLRANK_CONFIG is set
//  3. env (prefix ROLLRANK_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("ROLLRANK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: ROLLRANK_END_WEEK, ROLLRANK_WORKER_COUNT, ...
	// Keys map to the koanf tags on the struct, underscores preserved.
	envProvider := env.Provider("ROLLRANK_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "rollrank_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.EndWeek < 1 || c.EndWeek > 52:
		return fmt.Errorf("%w: end_week %d not in 1..52", ErrInvalidConfig, c.EndWeek)
	case c.EndYear < 1:
		return fmt.Errorf("%w: end_year %d", ErrInvalidConfig, c.EndYear)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count %d", ErrInvalidConfig, c.WorkerCount)
	case c.ShardCount < 1:
		return fmt.Errorf("%w: shard_count %d", ErrInvalidConfig, c.ShardCount)
	case c.WindowCap < 1:
		return fmt.Errorf("%w: window_cap %d", ErrInvalidConfig, c.WindowCap)
	case c.SnapshotDir == "":
		return fmt.Errorf("%w: snapshot_dir must not be empty", ErrInvalidConfig)
	}
	return nil
}
