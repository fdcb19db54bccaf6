// Package main is the entry point for the Lens exposure analysis service.
// Lens keeps a mirror of the portfolio and its reference data, runs
// look-through exposure and overlap analysis over it, and serves the
// results over a REST API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/lens/internal/config"
	"github.com/aristath/lens/internal/di"
	"github.com/aristath/lens/internal/scheduler"
	"github.com/aristath/lens/internal/server"
	"github.com/aristath/lens/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	log.Info().Msg("Starting Lens")

	// Wire all dependencies: databases, repositories, clients, services, jobs
	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
	})
	srv.SetJobs(jobs.Refresh, jobs.Snapshot, jobs.Maintenance, jobs.Backup)

	// Register and start scheduled jobs
	sched := scheduler.New(log)

	schedules := []struct {
		spec string
		job  scheduler.Job
	}{
		{cfg.Schedules.Refresh, jobs.Refresh},
		{cfg.Schedules.Snapshot, jobs.Snapshot},
		{cfg.Schedules.Maintenance, jobs.Maintenance},
		{cfg.Schedules.Backup, jobs.Backup},
	}
	for _, s := range schedules {
		if s.job == nil {
			continue
		}
		if err := sched.AddJob(s.spec, s.job); err != nil {
			log.Fatal().Err(err).Str("job", s.job.Name()).Str("schedule", s.spec).Msg("Failed to register job")
		}
	}

	sched.Start()

	// Connect the live quote stream and subscribe to the held tickers
	if container.PricefeedClient != nil {
		if err := container.PricefeedClient.Start(); err != nil {
			log.Error().Err(err).Msg("Failed to start price feed, continuing without live quotes")
		} else if tickers, err := container.PortfolioService.Tickers(); err != nil {
			log.Warn().Err(err).Msg("Failed to list portfolio tickers for quote subscription")
		} else if len(tickers) > 0 {
			if err := container.PricefeedClient.Subscribe(tickers); err != nil {
				log.Warn().Err(err).Msg("Failed to subscribe to quotes")
			}
		}
	}

	// Start server in goroutine so shutdown handling below can run
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	// Stop taking new scheduled work, let running jobs drain
	sched.Stop()

	// Close the quote stream
	if container.PricefeedClient != nil {
		if err := container.PricefeedClient.Stop(); err != nil {
			log.Error().Err(err).Msg("Error stopping price feed")
		}
	}

	// Graceful shutdown of in-flight requests
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
