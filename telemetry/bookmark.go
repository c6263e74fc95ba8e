package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkBabyBoom      BookmarkType = "baby_boom"
	BookmarkColonyCrash   BookmarkType = "colony_crash"
	BookmarkNewGeneration BookmarkType = "new_generation"
	BookmarkStableColony  BookmarkType = "stable_colony"
)

const stableWindowsToTrigger = 5

// Bookmark marks a notable moment in the colony's history.
type Bookmark struct {
	Type        BookmarkType
	UT          float64
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"ut", b.UT,
		"description", b.Description,
	)
}

// BookmarkDetector watches window stats for notable moments.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	peakPopulation     int // highest living count since the last crash
	maxGeneration      int
	stableWindowsCount int // consecutive windows with a steady population
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 4 {
		historySize = 4
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	for _, check := range []func(WindowStats) *Bookmark{
		bd.checkBabyBoom,
		bd.checkColonyCrash,
		bd.checkNewGeneration,
		bd.checkStableColony,
	} {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	if n := population(stats); n > bd.peakPopulation {
		bd.peakPopulation = n
	}
	if stats.Generations > bd.maxGeneration {
		bd.maxGeneration = stats.Generations
	}
	return bookmarks
}

func population(stats WindowStats) int {
	return stats.Juveniles + stats.Adults
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	if n > count {
		n = count
	}
	out := make([]WindowStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

// checkBabyBoom fires when conceptions exceed twice the rolling average.
func (bd *BookmarkDetector) checkBabyBoom(stats WindowStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	total := 0
	for _, h := range history {
		total += h.Conceptions
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Conceptions) > avg*2 && stats.Conceptions >= 3 {
		return &Bookmark{
			Type:        BookmarkBabyBoom,
			UT:          stats.WindowEnd,
			Description: fmt.Sprintf("%d conceptions is %.1fx average (%.1f)", stats.Conceptions, float64(stats.Conceptions)/avg, avg),
		}
	}
	return nil
}

// checkColonyCrash fires when the living count drops over 30% from its peak.
func (bd *BookmarkDetector) checkColonyCrash(stats WindowStats) *Bookmark {
	if bd.peakPopulation == 0 {
		return nil
	}

	n := population(stats)
	drop := 1 - float64(n)/float64(bd.peakPopulation)
	if drop > 0.30 && n <= bd.peakPopulation-3 {
		oldPeak := bd.peakPopulation
		bd.peakPopulation = n

		return &Bookmark{
			Type:        BookmarkColonyCrash,
			UT:          stats.WindowEnd,
			Description: fmt.Sprintf("Colony fell %.0f%% from peak %d to %d", drop*100, oldPeak, n),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkNewGeneration(stats WindowStats) *Bookmark {
	if stats.Generations <= bd.maxGeneration {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkNewGeneration,
		UT:          stats.WindowEnd,
		Description: fmt.Sprintf("Generation %d born", stats.Generations),
	}
}

// checkStableColony fires once the living count has varied by under 20%
// over the last four windows for five consecutive windows.
func (bd *BookmarkDetector) checkStableColony(stats WindowStats) *Bookmark {
	if population(stats) < 4 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.recent(4)
	if len(history) < 4 {
		return nil
	}

	counts := make([]float64, len(history))
	for i, h := range history {
		counts[i] = float64(population(h))
	}
	mean, variance := stat.MeanVariance(counts, nil)
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == stableWindowsToTrigger {
		return &Bookmark{
			Type:        BookmarkStableColony,
			UT:          stats.WindowEnd,
			Description: fmt.Sprintf("Stable colony of %d over %d+ windows", population(stats), stableWindowsToTrigger),
		}
	}
	return nil
}
