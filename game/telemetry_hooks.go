package game

import "log/slog"

// flushTelemetry writes this tick's lifecycle events and, when the stats
// window has elapsed, closes it.
func (g *Game) flushTelemetry() {
	g.writeEvents()

	if !g.collector.ShouldFlush(g.now) {
		return
	}
	stats := g.colony.Flush(g.now)
	perf := g.perf.Stats()

	for _, b := range g.bookmarks.Check(stats) {
		b.LogBookmark()
	}

	if g.logStats {
		stats.LogStats()
		perf.LogStats()
	}
	if err := g.outputManager.WriteWindow(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perf.ToCSV(g.now)); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// writeEvents drains buffered lifecycle events to events.csv, ranking the
// deaths among them for the hall of fame.
func (g *Game) writeEvents() {
	evs := g.collector.Events()
	for _, ev := range evs {
		g.hallOfFame.Consider(ev)
	}
	if err := g.outputManager.WriteEvents(evs); err != nil {
		slog.Error("failed to write events", "error", err)
	}
}
