package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// steppedClock advances by the queued durations, one per call.
func steppedClock(pc *PerfCollector, steps ...time.Duration) {
	now := time.Unix(0, 0)
	i := 0
	pc.clock = func() time.Time {
		if i < len(steps) {
			now = now.Add(steps[i])
			i++
		}
		return now
	}
}

func TestPerfCollector_SplitsTickByPhase(t *testing.T) {
	pc := NewPerfCollector(10)
	// StartTick, fuze, collision, integrate, EndTick
	steppedClock(pc, 0, 0, 100*time.Microsecond, 300*time.Microsecond, 100*time.Microsecond)

	pc.StartTick()
	pc.StartPhase(PhaseFuze, 4)
	pc.StartPhase(PhaseCollision, 4)
	pc.StartPhase(PhaseIntegrate, 3)
	pc.EndTick()

	s := pc.Stats()
	assert.Equal(t, 500*time.Microsecond, s.AvgTickDuration)
	assert.InDelta(t, 2000, s.TicksPerSecond, 1e-9)

	fuze, coll, integ := s.Phase(PhaseFuze), s.Phase(PhaseCollision), s.Phase(PhaseIntegrate)
	assert.Equal(t, 100*time.Microsecond, fuze.Avg)
	assert.InDelta(t, 60, coll.Pct, 1e-9)
	assert.Equal(t, 75*time.Microsecond, coll.PerProjectile)
	assert.InDelta(t, 3, integ.Projectiles, 1e-12)
	assert.Zero(t, s.Phase(PhaseScene).PerProjectile)
}

func TestPerfCollector_RingKeepsLastWindow(t *testing.T) {
	pc := NewPerfCollector(2)
	var steps []time.Duration
	for _, d := range []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond} {
		// StartTick, one phase, EndTick
		steps = append(steps, 0, 0, d)
	}
	steppedClock(pc, steps...)

	for n := 1; n <= 3; n++ {
		pc.StartTick()
		pc.StartPhase(PhaseCollision, n)
		pc.EndTick()
	}

	// The first tick has been overwritten
	s := pc.Stats()
	assert.Equal(t, 2*time.Millisecond, s.MinTickDuration)
	assert.Equal(t, 4*time.Millisecond, s.MaxTickDuration)
	assert.Equal(t, 3*time.Millisecond, s.AvgTickDuration)
	assert.InDelta(t, 2.5, s.Phase(PhaseCollision).Projectiles, 1e-12)
	assert.Equal(t, 6*time.Millisecond/5, s.Phase(PhaseCollision).PerProjectile)
}

func TestPerfCollector_RealClock(t *testing.T) {
	pc := NewPerfCollector(0)
	for i := 0; i < 3; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseIntegrate, 1)
		time.Sleep(50 * time.Microsecond)
		pc.EndTick()
	}
	s := pc.Stats()
	assert.Positive(t, s.AvgTickDuration)
	assert.Positive(t, s.Phase(PhaseIntegrate).Avg)
}

func TestPerfCollector_Empty(t *testing.T) {
	s := NewPerfCollector(10).Stats()
	assert.Zero(t, s.AvgTickDuration)
	assert.Zero(t, s.TicksPerSecond)
	assert.Equal(t, PhaseCost{}, s.Phase(PhaseCollision))
	assert.Equal(t, PhaseCost{}, s.Phase(Phase(-1)))
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "collision", PhaseCollision.String())
	assert.Equal(t, "telemetry", PhaseTelemetry.String())
	assert.Equal(t, "unknown", phaseCount.String())
}

func TestPerfStats_ToCSV(t *testing.T) {
	var s PerfStats
	s.AvgTickDuration = 250 * time.Microsecond
	s.Phases[PhaseCollision] = PhaseCost{Pct: 60, Projectiles: 12, PerProjectile: 800 * time.Nanosecond}
	s.Phases[PhaseIntegrate] = PhaseCost{Pct: 30, Projectiles: 11}

	row := s.ToCSV(42)
	assert.Equal(t, int32(42), row.WindowEnd)
	assert.Equal(t, int64(250), row.AvgTickUS)
	assert.Equal(t, 60.0, row.CollisionPct)
	assert.Equal(t, 30.0, row.IntegratePct)
	assert.Zero(t, row.FuzePct)
	assert.Equal(t, 12.0, row.CollisionRounds)
	assert.Equal(t, 11.0, row.IntegrateRounds)
	assert.Equal(t, int64(800), row.CollisionNSPer)
}
