// Package main is the entry point for the candidate selection and
// budget allocation engine. It serves the HTTP API and runs the
// background stop-loss scan and cache pruning jobs.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/optionpilot/internal/config"
	"github.com/aristath/optionpilot/internal/di"
	"github.com/aristath/optionpilot/internal/scheduler"
	"github.com/aristath/optionpilot/internal/server"
	"github.com/aristath/optionpilot/pkg/logger"
)

func main() {
	// Load configuration first to get the log level
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
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting optionpilot")

	container, err := di.NewContainer(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close databases")
		}
	}()

	srv := server.New(server.Config{
		Port:        cfg.Port,
		Log:         log,
		ProposalsDB: container.Databases.ProposalsDB,
		CacheDB:     container.Databases.CacheDB,
		Config:      cfg,
		DevMode:     cfg.DevMode,
		Container:   container,
	})

	// Background jobs: stop-loss scan during market hours, hourly cache
	// pruning
	sched := scheduler.New(log)
	stopScan := scheduler.NewStopScanJob(container.PositionsService, cfg.Budget.StopLossPct, log)
	if err := sched.AddJob(cfg.Scheduler.StopScanSpec, stopScan); err != nil {
		log.Fatal().Err(err).Msg("Failed to register stop-loss scan job")
	}
	cachePrune := scheduler.NewCachePruneJob(container.ChainCache, log)
	if err := sched.AddJob(cfg.Scheduler.CachePruneSpec, cachePrune); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache prune job")
	}
	sched.Start()

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
