package telemetry

// Collector accumulates lifecycle events within time windows and produces
// WindowStats. Recorded events are also buffered until drained by Events.
type Collector struct {
	window      float64
	windowStart float64

	// Event counters for current window
	counts [eventTypeCount]int

	pending []LifeEvent
}

// NewCollector creates a new stats collector.
// window: how long each stats window lasts in UT seconds
func NewCollector(window float64) *Collector {
	return &Collector{window: window}
}

// Start begins the current window at now. Used when a colony resumes from a
// saved roster.
func (c *Collector) Start(now float64) {
	c.windowStart = now
}

// Record counts an event in the current window and buffers it.
func (c *Collector) Record(ev LifeEvent) {
	if c == nil {
		return
	}
	if ev.Type < eventTypeCount {
		c.counts[ev.Type]++
	}
	c.pending = append(c.pending, ev)
}

// Events returns the buffered events and clears the buffer.
func (c *Collector) Events() []LifeEvent {
	if c == nil {
		return nil
	}
	evs := c.pending
	c.pending = nil
	return evs
}

// Count returns how many events of the type were recorded this window.
func (c *Collector) Count(t EventType) int {
	if t >= eventTypeCount {
		return 0
	}
	return c.counts[t]
}

// ShouldFlush returns true if the window has elapsed at now.
func (c *Collector) ShouldFlush(now float64) bool {
	return now-c.windowStart >= c.window
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller must provide:
// - now: the current UT
// - juveniles, adults: current population counts
// - generations: highest generation alive
// - maturations, agings: lifecycle times of living juveniles and adults
// - interests: adult receptivity at now
func (c *Collector) Flush(
	now float64,
	juveniles, adults, generations int,
	maturations, agings, interests []float64,
) WindowStats {
	stats := WindowStats{
		WindowStart: c.windowStart,
		WindowEnd:   now,

		Juveniles:   juveniles,
		Adults:      adults,
		Generations: generations,

		Founders:    c.counts[EventFound],
		Conceptions: c.counts[EventConceive],
		Promotions:  c.counts[EventPromote],
		Deaths:      c.counts[EventDeath],
		Matings:     c.counts[EventMate],
		Declines:    c.counts[EventDecline],
	}
	stats.setMaturation(ComputeDistribution(maturations))
	stats.setAging(ComputeDistribution(agings))
	stats.setInterest(ComputeDistribution(interests))

	// Reset for next window
	c.windowStart = now
	c.counts = [eventTypeCount]int{}

	return stats
}

// Window returns the window duration in UT seconds.
func (c *Collector) Window() float64 {
	return c.window
}
