package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one stage of a simulation step.
type Phase int

const (
	PhaseSync Phase = iota
	PhaseFuze
	PhaseCollision
	PhaseIntegrate
	PhaseCleanup
	PhaseScene
	PhaseTelemetry
	phaseCount
)

var phaseNames = [phaseCount]string{
	"sync", "fuze", "collision", "integrate", "cleanup", "scene", "telemetry",
}

func (ph Phase) String() string {
	if ph < 0 || ph >= phaseCount {
		return "unknown"
	}
	return phaseNames[ph]
}

// tickCost is the wall time of one tick split by phase, with the number of
// projectiles each phase walked.
type tickCost struct {
	total time.Duration
	spent [phaseCount]time.Duration
	work  [phaseCount]int
}

// PerfCollector keeps the last N tick costs in a ring.
type PerfCollector struct {
	ring   []tickCost
	next   int
	filled int

	cur     tickCost
	started time.Time
	mark    time.Time
	open    Phase
	clock   func() time.Time
}

// NewPerfCollector creates a collector averaging over window ticks.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{
		ring:  make([]tickCost, window),
		open:  -1,
		clock: time.Now,
	}
}

// StartTick opens a new tick.
func (p *PerfCollector) StartTick() {
	p.cur = tickCost{}
	p.started = p.clock()
	p.open = -1
}

// StartPhase closes the running phase and opens ph, which will walk n
// projectiles.
func (p *PerfCollector) StartPhase(ph Phase, n int) {
	now := p.clock()
	p.closePhase(now)
	p.mark = now
	p.open = ph
	p.cur.work[ph] += n
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.open >= 0 {
		p.cur.spent[p.open] += now.Sub(p.mark)
	}
}

// EndTick closes the tick and pushes it into the ring.
func (p *PerfCollector) EndTick() {
	now := p.clock()
	p.closePhase(now)
	p.open = -1
	p.cur.total = now.Sub(p.started)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.filled < len(p.ring) {
		p.filled++
	}
}

// PhaseCost is one phase's share of the window.
type PhaseCost struct {
	Avg           time.Duration
	Pct           float64
	Projectiles   float64       // mean per tick
	PerProjectile time.Duration // 0 when the phase walked none
}

// PerfStats summarises the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64
	Phases          [phaseCount]PhaseCost
}

// Phase returns the cost of ph.
func (s PerfStats) Phase(ph Phase) PhaseCost {
	if ph < 0 || ph >= phaseCount {
		return PhaseCost{}
	}
	return s.Phases[ph]
}

// Stats aggregates the ticks currently in the ring.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p.filled == 0 {
		return s
	}

	var total time.Duration
	var spent [phaseCount]time.Duration
	var work [phaseCount]int
	for i, c := range p.ring[:p.filled] {
		total += c.total
		if i == 0 || c.total < s.MinTickDuration {
			s.MinTickDuration = c.total
		}
		s.MaxTickDuration = max(s.MaxTickDuration, c.total)
		for ph := range phaseCount {
			spent[ph] += c.spent[ph]
			work[ph] += c.work[ph]
		}
	}

	n := time.Duration(p.filled)
	s.AvgTickDuration = total / n
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	for ph := range phaseCount {
		pc := &s.Phases[ph]
		pc.Avg = spent[ph] / n
		pc.Projectiles = float64(work[ph]) / float64(p.filled)
		if total > 0 {
			pc.Pct = float64(spent[ph]) / float64(total) * 100
		}
		if work[ph] > 0 {
			pc.PerProjectile = spent[ph] / time.Duration(work[ph])
		}
	}
	return s
}

// LogStats logs the window at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer. Phases under 0.1% are left out.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	for ph := range phaseCount {
		pc := s.Phases[ph]
		if pc.Pct < 0.1 {
			continue
		}
		attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pc.Pct*10))/10))
		if pc.PerProjectile > 0 {
			attrs = append(attrs, slog.Int64(ph.String()+"_ns_per_round", pc.PerProjectile.Nanoseconds()))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	SyncPct      float64 `csv:"sync_pct"`
	FuzePct      float64 `csv:"fuze_pct"`
	CollisionPct float64 `csv:"collision_pct"`
	IntegratePct float64 `csv:"integrate_pct"`
	CleanupPct   float64 `csv:"cleanup_pct"`
	ScenePct     float64 `csv:"scene_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`

	FuzeRounds      float64 `csv:"fuze_rounds"`
	CollisionRounds float64 `csv:"collision_rounds"`
	IntegrateRounds float64 `csv:"integrate_rounds"`
	CollisionNSPer  int64   `csv:"collision_ns_per_round"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:       windowEnd,
		AvgTickUS:       s.AvgTickDuration.Microseconds(),
		MinTickUS:       s.MinTickDuration.Microseconds(),
		MaxTickUS:       s.MaxTickDuration.Microseconds(),
		TicksPerSec:     s.TicksPerSecond,
		SyncPct:         s.Phases[PhaseSync].Pct,
		FuzePct:         s.Phases[PhaseFuze].Pct,
		CollisionPct:    s.Phases[PhaseCollision].Pct,
		IntegratePct:    s.Phases[PhaseIntegrate].Pct,
		CleanupPct:      s.Phases[PhaseCleanup].Pct,
		ScenePct:        s.Phases[PhaseScene].Pct,
		TelemetryPct:    s.Phases[PhaseTelemetry].Pct,
		FuzeRounds:      s.Phases[PhaseFuze].Projectiles,
		CollisionRounds: s.Phases[PhaseCollision].Projectiles,
		IntegrateRounds: s.Phases[PhaseIntegrate].Projectiles,
		CollisionNSPer:  s.Phases[PhaseCollision].PerProjectile.Nanoseconds(),
	}
}
