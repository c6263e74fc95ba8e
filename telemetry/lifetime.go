package telemetry

import "github.com/google/uuid"

// LifetimeStats tracks per-organism statistics over its lifetime.
type LifetimeStats struct {
	Birth      float64
	Generation int

	// Reproduction
	Children int
	Matings  int
	Declines int
}

// LifetimeTracker manages per-organism lifetime statistics.
type LifetimeTracker struct {
	stats map[uuid.UUID]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uuid.UUID]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new organism.
func (lt *LifetimeTracker) Register(id uuid.UUID, birth float64, generation int) {
	lt.stats[id] = &LifetimeStats{
		Birth:      birth,
		Generation: generation,
	}
}

// Get returns the lifetime stats for an organism, or nil if not found.
func (lt *LifetimeTracker) Get(id uuid.UUID) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an organism's stats and returns them.
func (lt *LifetimeTracker) Remove(id uuid.UUID) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// RecordChild increments the children count.
func (lt *LifetimeTracker) RecordChild(parent uuid.UUID) {
	if s := lt.stats[parent]; s != nil {
		s.Children++
	}
}

// RecordMating increments the mating count.
func (lt *LifetimeTracker) RecordMating(id uuid.UUID) {
	if s := lt.stats[id]; s != nil {
		s.Matings++
	}
}

// RecordDecline increments the declined attempt count.
func (lt *LifetimeTracker) RecordDecline(id uuid.UUID) {
	if s := lt.stats[id]; s != nil {
		s.Declines++
	}
}

// Count returns the number of tracked organisms.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// MaxGeneration returns the highest generation among tracked organisms.
func (lt *LifetimeTracker) MaxGeneration() int {
	g := 0
	for _, s := range lt.stats {
		if s.Generation > g {
			g = s.Generation
		}
	}
	return g
}
