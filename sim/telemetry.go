package sim

import (
	"log/slog"

	"github.com/pthm-cable/ordnance/components"
	"github.com/pthm-cable/ordnance/systems"
	"github.com/pthm-cable/ordnance/telemetry"
)

// recordHits turns the tally growth of one resolution pass into events.
func (s *Simulation) recordHits(p *components.Projectile, before systems.Tally, speed float64) {
	after := s.resolver.Tally
	for _, c := range []struct {
		typ telemetry.EventType
		n   int
	}{
		{telemetry.EventPenetration, after.Penetrated - before.Penetrated},
		{telemetry.EventStop, after.Stopped - before.Stopped},
		{telemetry.EventRicochet, after.Ricochets - before.Ricochets},
		{telemetry.EventSoftHit, after.SoftTargets - before.SoftTargets},
		{telemetry.EventDetonation, after.Detonations - before.Detonations},
	} {
		for i := 0; i < c.n; i++ {
			s.collector.Record(telemetry.NewImpactEvent(c.typ, s.tick, p.ID, speed))
			s.flights.RecordHit(p.ID, c.typ == telemetry.EventPenetration)
		}
	}
}

// flushTelemetry writes a stats window when one is complete.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}
	s.writeWindow()
}

func (s *Simulation) writeWindow() {
	stats := s.collector.Flush(s.tick, s.pool.Len(), s.pool.Exhausted)
	perfStats := s.perf.Stats()
	s.lastFlush = s.tick

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
