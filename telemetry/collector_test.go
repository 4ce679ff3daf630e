package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector_Window(t *testing.T) {
	c := NewCollector(1.0, 0.02)
	assert.Equal(t, int32(50), c.WindowDurationTicks())

	c.Record(NewShotEvent(0, 1, 1500))
	c.Record(NewShotEvent(0, 2, 1500))
	c.Record(NewImpactEvent(EventPenetration, 10, 1, 1400))
	c.Record(NewImpactEvent(EventStop, 12, 2, 1000))
	c.Record(NewImpactEvent(EventRicochet, 13, 2, 800))
	c.Record(NewDetonationEvent(20, 1))
	c.Record(NewExpireEvent(30, 2))
	c.RecordMassLoss(0.5)
	c.RecordMassLoss(-1)

	assert.False(t, c.ShouldFlush(49))
	assert.True(t, c.ShouldFlush(50))

	s := c.Flush(50, 3, 1)
	assert.Equal(t, int32(0), s.WindowStartTick)
	assert.Equal(t, int32(50), s.WindowEndTick)
	assert.InDelta(t, 1.0, s.SimTimeSec, 1e-12)
	assert.Equal(t, 3, s.Active)
	assert.Equal(t, 1, s.Exhausted)
	assert.Equal(t, 2, s.Shots)
	assert.Equal(t, 3, s.Hits)
	assert.Equal(t, 1, s.Penetrations)
	assert.Equal(t, 1, s.Stops)
	assert.Equal(t, 1, s.Ricochets)
	assert.Equal(t, 1, s.Detonations)
	assert.Equal(t, 1, s.Expired)
	assert.InDelta(t, 1.0/3, s.PenRate, 1e-12)
	assert.InDelta(t, 1066.6667, s.ImpactSpeedMean, 1e-3)
	assert.Equal(t, 1000.0, s.ImpactSpeedP50)
	assert.Equal(t, 0.5, s.MassLost)

	// Counters reset for the next window
	next := c.Flush(100, 0, 1)
	assert.Equal(t, int32(50), next.WindowStartTick)
	assert.Zero(t, next.Shots)
	assert.Zero(t, next.Hits)
	assert.Zero(t, next.PenRate)
	assert.Zero(t, next.ImpactSpeedMean)
}

func TestCollector_Count(t *testing.T) {
	c := NewCollector(0.001, 0.02)
	assert.Equal(t, int32(1), c.WindowDurationTicks())

	c.Record(NewFaultEvent(1, 7))
	c.Record(Event{Type: eventTypeCount})
	assert.Equal(t, 1, c.Count(EventFault))
	assert.Zero(t, c.Count(eventTypeCount))
}
