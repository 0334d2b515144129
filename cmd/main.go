package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/punchlab/punchd/internal/adapters/http/api"
	"github.com/punchlab/punchd/internal/adapters/http/swagger"
	"github.com/punchlab/punchd/internal/adapters/repository"
	app "github.com/punchlab/punchd/internal/app"
	"github.com/punchlab/punchd/internal/config"
	"github.com/punchlab/punchd/internal/domain/judge"
	"github.com/punchlab/punchd/pkg/logger"
	"github.com/punchlab/punchd/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := buildStore(cfg)
	if err != nil {
		// A degraded file store still serves from memory.
		if !errors.Is(err, repository.ErrStorageUnavailable) {
			os.Stderr.WriteString("failed to open store: " + err.Error() + "\n")
			return
		}
		log.Warn(ctx, "store degraded to memory-only", logger.Error(err))
	}

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithJudge(buildJudge(cfg)),
		app.WithTopN(cfg.TopN),
		app.WithNameLimit(cfg.NameLimit),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(ctx, mux)

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc, cfg.MaxLeaderboardLimit)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildStore constructs the leaderboard store named by the configuration.
// The medium is fixed for the lifetime of the process.
func buildStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreKind {
	case config.StoreSQLite:
		return repository.NewSQLStore(cfg.SQLiteDSN,
			repository.WithSQLCapacity(cfg.Capacity),
			repository.WithOpTimeout(time.Duration(cfg.StoreOpTimeoutMS)*time.Millisecond),
		)
	default:
		return repository.NewFileStore(cfg.FilePath,
			repository.WithFileCapacity(cfg.Capacity),
		)
	}
}

// buildJudge constructs the punch judge named by the configuration.
func buildJudge(cfg *config.Config) judge.Judge {
	if cfg.JudgeKind == config.JudgeRemote {
		opts := []judge.RemoteOption{
			judge.WithModel(cfg.JudgeModel),
			judge.WithRequestTimeout(time.Duration(cfg.JudgeTimeoutMS) * time.Millisecond),
			judge.WithRateLimit(cfg.JudgeRateRPS, cfg.JudgeBurst),
		}
		if cfg.JudgeEndpoint != "" {
			opts = append(opts, judge.WithBaseURL(cfg.JudgeEndpoint))
		}
		return judge.NewRemoteJudge(cfg.JudgeAPIKey, opts...)
	}
	return judge.NewStaticJudge(
		judge.WithLatencyRange(
			time.Duration(cfg.JudgeLatencyMinMS)*time.Millisecond,
			time.Duration(cfg.JudgeLatencyMaxMS)*time.Millisecond,
		),
	)
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that refreshes service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats refreshes the leaderboard size gauge as a side effect.
			_ = svc.GetStats()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
