package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	counts       [eventTypeCount]int
	hits         int
	impactSpeeds []float64
	massLost     float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record counts an event in the current window.
func (c *Collector) Record(ev Event) {
	if ev.Type >= eventTypeCount {
		return
	}
	c.counts[ev.Type]++
	if ev.Impact {
		c.hits++
		c.impactSpeeds = append(c.impactSpeeds, ev.Speed)
	}
}

// RecordMassLoss adds eroded or ablated projectile mass.
func (c *Collector) RecordMassLoss(kg float64) {
	if kg > 0 {
		c.massLost += kg
	}
}

// Count returns how many events of a type the current window holds.
func (c *Collector) Count(typ EventType) int {
	if typ >= eventTypeCount {
		return 0
	}
	return c.counts[typ]
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// active is the number of projectiles in flight, exhausted the pool's
// running count of refused spawns.
func (c *Collector) Flush(currentTick int32, active, exhausted int) WindowStats {
	var penRate float64
	if c.hits > 0 {
		penRate = float64(c.counts[EventPenetration]) / float64(c.hits)
	}
	mean, p10, p50, p90 := Summarize(c.impactSpeeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Active:    active,
		Exhausted: exhausted,

		Shots:        c.counts[EventShot],
		Hits:         c.hits,
		Penetrations: c.counts[EventPenetration],
		Stops:        c.counts[EventStop],
		Ricochets:    c.counts[EventRicochet],
		SoftHits:     c.counts[EventSoftHit],
		Detonations:  c.counts[EventDetonation],
		Expired:      c.counts[EventExpire],
		Faults:       c.counts[EventFault],
		PenRate:      penRate,

		ImpactSpeedMean: mean,
		ImpactSpeedP10:  p10,
		ImpactSpeedP50:  p50,
		ImpactSpeedP90:  p90,

		MassLost: c.massLost,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.counts = [eventTypeCount]int{}
	c.hits = 0
	c.impactSpeeds = c.impactSpeeds[:0]
	c.massLost = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
