package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/lapedge/lapedge/internal/adapters/http/api"
	"github.com/lapedge/lapedge/internal/adapters/http/site"
	"github.com/lapedge/lapedge/internal/adapters/http/swagger"
	"github.com/lapedge/lapedge/internal/adapters/provider"
	"github.com/lapedge/lapedge/internal/adapters/records"
	app "github.com/lapedge/lapedge/internal/app"
	"github.com/lapedge/lapedge/internal/config"
	"github.com/lapedge/lapedge/pkg/logger"
	"github.com/lapedge/lapedge/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second

	systemMetricsInterval = 10 * time.Second
)

func main() {
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

	loggerInstance := logger.Get()

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
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	retry := provider.RetryPolicy{
		Attempts: cfg.RetryAttempts,
		Backoff:  cfg.RetryBackoff(),
	}

	isu := provider.NewISU(
		provider.WithISUBaseURL(cfg.ISUBaseURL),
		provider.WithISUTimeouts(cfg.UpstreamTimeout(), cfg.EnrichTimeout()),
		provider.WithISURetry(retry),
		provider.WithISUCompetitionsTTL(cfg.CompetitionsCacheTTL()),
	)
	schaatsen := provider.NewSchaatsen(
		provider.WithSchaatsenBaseURL(cfg.SchaatsenBaseURL),
		provider.WithSchaatsenTimeout(cfg.UpstreamTimeout()),
	)
	recordsSvc := records.New(
		records.WithResultsBaseURL(cfg.RecordsBaseURL),
		records.WithTimeout(cfg.EnrichTimeout()),
		records.WithCacheTTL(cfg.RecordsCacheTTL()),
	)

	// Create and start the aggregation service with configuration options
	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithISUAdapter(isu),
		app.WithSchaatsenAdapter(schaatsen),
		app.WithRecords(recordsSvc),
		app.WithFetchTimeout(cfg.FetchTimeout()),
		app.WithLiveCacheTTL(cfg.LiveCacheTTL()),
		app.WithMeerkampCacheTTL(cfg.MeerkampCacheTTL()),
		app.WithStandingsLimit(cfg.MaxStandingsLimit),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register the dashboard under / and the API reference docs.
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc)
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
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
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

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
