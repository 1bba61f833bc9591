// Package main implements the entry point for the HabitLink reset
// server, which reconciles recurring tasks across the fleet of teams:
// a daily scheduled sweep, per-team and fleet-wide manual triggers, and
// an immediate-reset hook for task completions.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/PJ2-group2/HabitLink-sub000/internal/api"
	"github.com/PJ2-group2/HabitLink-sub000/internal/config"
	"github.com/PJ2-group2/HabitLink-sub000/internal/events"
	"github.com/PJ2-group2/HabitLink-sub000/internal/platform/logger"
	"github.com/PJ2-group2/HabitLink-sub000/internal/platform/memory"
	"github.com/PJ2-group2/HabitLink-sub000/internal/platform/metrics"
	"github.com/PJ2-group2/HabitLink-sub000/internal/platform/postgres"
	"github.com/PJ2-group2/HabitLink-sub000/internal/reset"
	"github.com/PJ2-group2/HabitLink-sub000/internal/scheduler"
	"github.com/PJ2-group2/HabitLink-sub000/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run loads configuration, wires the stores, engine, scheduler, and HTTP
// surface together, and serves until SIGINT/SIGTERM.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"backend", cfg.Database.Backend)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	var (
		taskStore   store.TaskStore
		statusStore store.StatusStore
		teamDir     store.TeamDirectory
	)

	switch cfg.Database.Backend {
	case "postgres":
		db, err := setupDatabase(cfg, appLogger)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		taskStore = postgres.NewPostgresTaskStore(db, appLogger)
		statusStore = postgres.NewPostgresStatusStore(db, appLogger)
		teamDir = postgres.NewPostgresTeamDirectory(db, appLogger)
	case "memory":
		appLogger.Warn("using in-memory stores, all state is lost on restart")
		taskStore = memory.NewTaskStore()
		statusStore = memory.NewStatusStore()
		teamDir = memory.NewTeamDirectory()
	default:
		return fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}

	index := reset.NewTeamIndex()

	engine, err := reset.NewEngine(taskStore, statusStore, teamDir, index, m, appLogger)
	if err != nil {
		return fmt.Errorf("failed to build reset engine: %w", err)
	}

	resolver := reset.NewResolver(taskStore, teamDir, index, appLogger)

	emitter := events.NewInMemoryEventEmitter(appLogger)
	emitter.RegisterHandler(reset.NewCompletionHandler(engine, resolver, appLogger))

	sched, err := scheduler.New(engine, cfg.Scheduler, appLogger)
	if err != nil {
		return fmt.Errorf("failed to build scheduler: %w", err)
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	handler := api.NewResetHandler(sched, engine, emitter, appLogger)
	router := api.NewRouter(handler, registry)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		sched.Stop()
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("shutdown signal received")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	appLogger.Info("server stopped")
	return nil
}
