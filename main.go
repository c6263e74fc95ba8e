package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/progeny/config"
	"github.com/pthm-cable/progeny/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in UT seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	rosterPath := flag.String("roster", "", "YAML roster saved on exit (empty = use config)")
	archivePath := flag.String("archive", "", "SQLite archive of living and deceased organisms (empty = use config)")
	resume := flag.Bool("resume", false, "Resume from the saved roster instead of founding a new colony")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = until extinction)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	g, err := game.NewGameWithOptions(game.Options{
		Seed:        rngSeed,
		LogStats:    *logStats,
		StatsWindow: *statsWindow,
		OutputDir:   *outputDir,
		RosterPath:  *rosterPath,
		ArchivePath: *archivePath,
		Resume:      *resume,
	})
	if err != nil {
		slog.Error("failed to start colony", "error", err)
		os.Exit(1)
	}

	slog.Info("starting colony",
		"seed", rngSeed,
		"ut", g.Now(),
		"max_ticks", *maxTicks,
		"resume", *resume,
	)

	for {
		g.Update()

		if g.Extinct() {
			slog.Info("colony extinct", "tick", g.Tick(), "ut", g.Now())
			break
		}
		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}

	if err := g.Unload(); err != nil {
		slog.Error("failed to save colony", "error", err)
		os.Exit(1)
	}
}
