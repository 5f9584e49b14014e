// Command colonysim runs the colony simulation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/colony/internal/api"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/engine"
	"github.com/talgya/colony/internal/observability"
	"github.com/talgya/colony/internal/persistence"
	"github.com/talgya/colony/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config overlay")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.Env)

	// ── Event store ───────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.Persistence.Path != "" {
		if dir := filepath.Dir(cfg.Persistence.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				logger.Fatal().Err(err).Msg("create data directory failed")
			}
		}
		db, err = persistence.Open(cfg.Persistence.Path, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("open event store failed")
		}
		defer db.Close()
	}

	// ── Telemetry ─────────────────────────────────────────────────────
	out, err := telemetry.NewOutputManager(cfg.Telemetry.Dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("telemetry output failed")
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		logger.Warn().Err(err).Msg("write config copy failed")
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim, err := engine.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create simulation failed")
	}

	eng := engine.NewEngine(logger)
	eng.Interval = cfg.Tick.Interval
	eng.TicksPerDay = cfg.Tick.TicksPerDay
	eng.SetSpeed(cfg.Tick.Speed)

	// Events are flushed to the store and CSV once per sim-day.
	var flushed uint64
	flush := func() {
		events, next := sim.EventsSince(flushed)
		flushed = next
		if db != nil {
			if err := db.SaveSnapshot(sim, events); err != nil {
				logger.Error().Err(err).Msg("snapshot failed")
			}
		}
		if err := out.WriteEvents(events); err != nil {
			logger.Error().Err(err).Msg("telemetry events failed")
		}
	}

	eng.OnTick = sim.Tick
	eng.OnDay = func(tick uint64) {
		sim.TickDay(tick)
		st := sim.StatsSnapshot()
		if db != nil {
			if err := db.SaveDailyStats(st); err != nil {
				logger.Error().Err(err).Msg("daily stats save failed")
			}
		}
		if err := out.WriteDaily(telemetry.NewDailyRecord(st, cfg.Tick.TicksPerDay)); err != nil {
			logger.Error().Err(err).Msg("telemetry stats failed")
		}
		flush()
	}

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		eng.Run(gctx)
		return nil
	})
	if cfg.API.Addr != "" {
		if cfg.API.AdminKey == "" {
			logger.Warn().Msg("COLONY_ADMIN_KEY not set; command endpoints are disabled")
		}
		server := api.NewServer(sim, eng, db, cfg.API.AdminKey, logger)
		g.Go(func() error {
			return server.ListenAndServe(gctx, cfg.API.Addr)
		})
	}

	logger.Info().
		Int64("seed", sim.Seed()).
		Str("api", cfg.API.Addr).
		Msg("colony is running (Ctrl+C to stop)")

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("shutdown with error")
	}

	flush()
	logger.Info().Uint64("tick", eng.Tick()).Str("time", engine.SimTime(eng.Tick())).Msg("simulation stopped")
}
