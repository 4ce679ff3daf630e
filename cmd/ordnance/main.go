package main

import (
	"flag"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/pthm-cable/ordnance/config"
	"github.com/pthm-cable/ordnance/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	scenario := flag.String("scenario", "anti_armor", "Scenario to run")
	duration := flag.Float64("duration", 0, "Simulated seconds (0 = scenario duration)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Diagnostics.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if dsn := cfg.Diagnostics.SentryDSN; dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			slog.Error("failed to initialize sentry", "error", err)
		} else {
			defer sentry.Flush(5 * time.Second)
		}
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	s, err := sim.New(cfg, sim.Options{
		Seed:           rngSeed,
		Scenario:       *scenario,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
	})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}

	d := *duration
	if d <= 0 {
		d = s.Duration()
	}
	ticks := int32(math.Round(d / cfg.Physics.DT))
	if *maxTicks > 0 && int32(*maxTicks) < ticks {
		ticks = int32(*maxTicks)
	}

	slog.Info("starting simulation",
		"scenario", *scenario,
		"seed", rngSeed,
		"ticks", ticks,
		"stats_window", *statsWindow,
	)

	start := time.Now()
	for s.Tick() < ticks {
		s.Step()
	}

	tally := s.Tally()
	slog.Info("simulation finished",
		"tick", s.Tick(),
		"fired", s.Fired(),
		"hits", tally.Hits,
		"penetrated", tally.Penetrated,
		"detonations", len(s.Scene().Log.Detonations),
		"destroyed", len(s.Scene().Log.Destroyed),
		"elapsed", time.Since(start),
	)

	if err := s.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
		os.Exit(1)
	}
}
