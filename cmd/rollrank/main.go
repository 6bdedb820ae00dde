package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rollrank/rollrank/internal/adapters/provider"
	"github.com/rollrank/rollrank/internal/adapters/store"
	service "github.com/rollrank/rollrank/internal/app"
	"github.com/rollrank/rollrank/internal/config"
	"github.com/rollrank/rollrank/pkg/logger"
	"github.com/rollrank/rollrank/pkg/metrics"
)

const (
	readHeaderTimeout = 5 * time.Second
	storeConnTimeout  = 10 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	// Initialize logging first; fall back to stderr while it is unavailable.
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "opening store failed", logger.Error(err))
		return 1
	}
	defer st.Close()

	// Expose /metrics for scrapes while the run is in flight.
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		}
		go func() {
			log.Info(ctx, "starting metrics server", logger.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error(ctx, "metrics server failed", logger.Error(err))
			}
		}()
		defer srv.Close()
	}

	out, closeOut, err := openOutput(cfg.OutputPath)
	if err != nil {
		log.Error(ctx, "opening output failed", logger.Error(err))
		return 1
	}
	defer closeOut()

	svc := service.New(
		service.WithLogger(log),
		service.WithEndDate(cfg.EndWeek, cfg.EndYear),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithShardCount(cfg.ShardCount),
		service.WithWindowCap(cfg.WindowCap),
		service.WithStore(st),
		service.WithProvider(provider.NewSnapshot(cfg.SnapshotDir)),
		service.WithOutput(out),
	)

	rep, err := svc.Run(ctx)
	if err != nil {
		log.Error(ctx, "ranking run failed", logger.Error(err))
		return 1
	}
	if rep.Degraded() {
		log.Warn(ctx, "ranking run degraded",
			logger.String("run", rep.RunID),
			logger.Int("failures", len(rep.Failures)),
		)
		return 1
	}
	return 0
}

// openStore picks Postgres when a DSN is configured and the in-memory
// store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		return store.NewMemory(), nil
	}
	connCtx, cancel := context.WithTimeout(ctx, storeConnTimeout)
	defer cancel()
	return store.NewPostgres(connCtx, cfg.DatabaseURL)
}

// openOutput tees the table to stdout and, when configured, a file.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return io.MultiWriter(os.Stdout, f), func() { _ = f.Close() }, nil
}
