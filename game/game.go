// Package game runs a colony headlessly: it advances time, decides when
// adults meet, and handles telemetry and persistence around the colony.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/progeny/config"
	"github.com/pthm-cable/progeny/population"
	"github.com/pthm-cable/progeny/store"
	"github.com/pthm-cable/progeny/telemetry"
	"github.com/pthm-cable/progeny/traits"
)

const (
	perfWindow      = 100 // Ticks step timing is averaged over
	bookmarkHistory = 10  // Stats windows the bookmark detector compares against
	hallOfFameSize  = 10  // Entries kept per gender
)

// Options configures a run.
type Options struct {
	Seed        int64
	LogStats    bool    // Log each stats window via slog
	StatsWindow float64 // UT seconds per stats window, 0 = use config
	OutputDir   string  // CSV and config output, empty = disabled
	RosterPath  string  // YAML roster saved on Unload, empty = use config
	ArchivePath string  // SQLite archive, empty = use config
	Resume      bool    // Start from the saved roster instead of founding
}

// Game holds the complete run state.
type Game struct {
	cfg *config.Config
	reg *traits.Registry
	rng *rand.Rand

	colony        *population.Colony
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	hallOfFame    *telemetry.HallOfFame
	outputManager *telemetry.OutputManager
	archive       *store.Archive
	rosterPath    string
	logStats      bool

	// State
	tick int32
	now  float64 // UT seconds
}

// NewGameWithOptions creates a run from the global config. The colony is
// restored from the roster when opts.Resume is set and one exists, otherwise
// founded from the configured characters.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	reg, err := traits.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("building trait registry: %w", err)
	}

	window := cfg.Telemetry.StatsWindow
	if opts.StatsWindow > 0 {
		window = opts.StatsWindow
	}

	g := &Game{
		cfg:        cfg,
		reg:        reg,
		rng:        rand.New(rand.NewSource(opts.Seed)),
		collector:  telemetry.NewCollector(window),
		perf:       telemetry.NewPerfCollector(perfWindow),
		bookmarks:  telemetry.NewBookmarkDetector(bookmarkHistory),
		hallOfFame: telemetry.NewHallOfFame(hallOfFameSize),
		rosterPath: firstNonEmpty(opts.RosterPath, cfg.Store.RosterPath),
		logStats:   opts.LogStats,
	}
	g.colony = population.NewColony(cfg, reg, g.rng, g.collector)

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	if path := firstNonEmpty(opts.ArchivePath, cfg.Store.ArchivePath); path != "" {
		if g.archive, err = store.OpenArchive(path); err != nil {
			g.outputManager.Close()
			return nil, err
		}
	}

	if opts.Resume {
		if err := g.resume(); err != nil {
			g.close()
			return nil, err
		}
	}
	if j, a := g.colony.Counts(); j+a == 0 {
		g.found()
	}

	return g, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resume restores the colony from the archive, or from the roster file when
// no archive is configured.
func (g *Game) resume() error {
	var (
		roster *population.Roster
		err    error
	)
	switch {
	case g.archive != nil:
		roster, err = g.archive.LoadRoster(context.Background())
	case g.rosterPath != "":
		roster, err = store.LoadRoster(g.rosterPath)
	default:
		return fmt.Errorf("resume: no roster path or archive configured")
	}
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}

	if err := g.colony.Restore(roster); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	g.now = roster.Time()
	g.collector.Start(g.now)
	g.seedHallOfFame()
	return nil
}

// seedHallOfFame refills the hall from earlier runs: from the archive's
// burials when one is configured, otherwise from the hall saved in the
// output directory.
func (g *Game) seedHallOfFame() {
	if g.archive == nil {
		hof, err := g.outputManager.LoadHallOfFame(hallOfFameSize)
		if err != nil {
			slog.Error("failed to load hall of fame", "error", err)
			return
		}
		if hof != nil {
			g.hallOfFame = hof
		}
		return
	}

	buried, err := g.archive.Deceased(context.Background())
	if err != nil {
		slog.Error("failed to load deceased", "error", err)
		return
	}
	for _, b := range buried {
		ev, err := g.colony.Obituary(b.Entry, b.UT)
		if err != nil {
			slog.Warn("obituary_skipped", "id", b.Entry.ID, "error", err)
			continue
		}
		g.hallOfFame.Consider(ev)
	}
}

// found adds an adult for each configured founder.
func (g *Game) found() {
	for _, f := range g.cfg.Colony.Founders {
		if _, err := g.colony.Found(f.Name, g.now); err != nil {
			slog.Warn("founder_skipped", "name", f.Name, "error", err)
		}
	}
}

// Update advances the run by one tick: lifecycle transitions, encounters,
// then telemetry.
func (g *Game) Update() {
	g.perf.StartTick()
	g.tick++
	g.now += g.cfg.Colony.Tick

	g.perf.StartPhase(telemetry.PhaseLifecycle)
	res := g.colony.Step(g.now)

	g.perf.StartPhase(telemetry.PhaseArchive)
	g.bury(res.Died)

	g.perf.StartPhase(telemetry.PhaseEncounters)
	g.encounters()

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.perf.EndTick()
}

// bury archives the final records of organisms that died this tick.
func (g *Game) bury(died []population.Death) {
	if g.archive == nil {
		return
	}
	for _, d := range died {
		if err := g.archive.Bury(context.Background(), d.Entry, d.UT); err != nil {
			slog.Error("failed to archive deceased", "id", d.Entry.ID, "error", err)
		}
	}
}

// Tick returns the number of updates run.
func (g *Game) Tick() int32 {
	return g.tick
}

// Now returns the current UT.
func (g *Game) Now() float64 {
	return g.now
}

// Colony returns the colony.
func (g *Game) Colony() *population.Colony {
	return g.colony
}

// Extinct reports whether no organisms remain.
func (g *Game) Extinct() bool {
	j, a := g.colony.Counts()
	return j+a == 0
}

// Unload saves the roster and releases all resources.
func (g *Game) Unload() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// Flush whatever the last partial window recorded
	g.writeEvents()
	keep(g.outputManager.WriteHallOfFame(g.hallOfFame))

	roster := g.colony.Snapshot(g.now)
	if g.rosterPath != "" {
		keep(store.SaveRoster(g.rosterPath, roster))
	}
	if g.archive != nil {
		keep(g.archive.SaveRoster(context.Background(), roster))
	}
	keep(g.close())

	slog.Info("run_saved",
		"tick", g.tick,
		"ut", g.now,
		"organisms", len(roster.Organisms),
		"roster", g.rosterPath,
	)
	return firstErr
}

// close releases the archive and output files without saving.
func (g *Game) close() error {
	var firstErr error
	if g.archive != nil {
		firstErr = g.archive.Close()
	}
	if err := g.outputManager.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
